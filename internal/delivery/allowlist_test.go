package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSignedURLHost(t *testing.T) {
	assert.True(t, isSignedURLHost("rr1---sn-abc.googlevideo.com"))
	assert.True(t, isSignedURLHost("upos-sz-mirrorakam.akamaized.net"))
	assert.False(t, isSignedURLHost("evil.example.com"))
}

func TestIsThumbnailHost(t *testing.T) {
	assert.True(t, isThumbnailHost("scontent.cdninstagram.com"))
	assert.True(t, isThumbnailHost("i.pximg.net"))
	assert.False(t, isThumbnailHost("tracker.example.com"))
}
