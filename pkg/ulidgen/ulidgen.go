// Package ulidgen generates lexicographically sortable identifiers for
// short-lived filesystem artifacts (the youtube-fast-path temp directory,
// in particular) the same way the teacher generates primary keys: a ULID
// seeded from crypto/rand, not math/rand.
package ulidgen

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string, suitable as a temp-directory suffix.
func New() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
