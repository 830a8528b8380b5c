package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_RemovesIllegalAndControlChars(t *testing.T) {
	out := sanitize("weird/name:\x00<>*?\"|name", 40)
	assert.False(t, strings.ContainsAny(out, `/\:*?"<>|`))
}

func TestSanitize_CollapsesWhitespace(t *testing.T) {
	out := sanitize("hello   world\tthere", 40)
	assert.Equal(t, "hello_world_there", out)
}

func TestSanitize_PreservesUnicodeLetters(t *testing.T) {
	out := sanitize("café über", 40)
	assert.Contains(t, out, "café")
	assert.Contains(t, out, "über")
}

func TestSanitize_TruncatesToRuneBudget(t *testing.T) {
	out := sanitize(strings.Repeat("a", 100), 10)
	assert.Len(t, []rune(out), 10)
}

func TestSynthesizeFilename_SingleItem(t *testing.T) {
	name := SynthesizeFilename("Jane Doe", "video", "My Great Clip", 0, 1, "1080p", "mp4")
	assert.Equal(t, "Jane_Doe_video_My_Great_Clip_1080p.mp4", name)
}

func TestSynthesizeFilename_MultiItemIncludesIndex(t *testing.T) {
	name := SynthesizeFilename("Jane Doe", "image", "Gallery", 2, 5, "original", "jpg")
	assert.Equal(t, "Jane_Doe_image_Gallery_3_original.jpg", name)
}
