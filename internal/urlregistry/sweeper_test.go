package urlregistry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RemovesExpiredEntriesOnSchedule(t *testing.T) {
	r := New(10 * time.Millisecond)
	r.Add("https://cdn/old.mp4")

	s := NewSweeper(r, "", nil)
	require.NoError(t, s.Start("@every 20ms"))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return r.Size() == 0
	}, 500*time.Millisecond, 10*time.Millisecond)
}
