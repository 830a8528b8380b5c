package instagram

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortcodeRoundTrip(t *testing.T) {
	codes := []string{"B", "Cx", "CxYz123", "AAAAAAAAAAA", "a1B2c3", "---", "___"}

	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			id, ok := shortcodeToMediaID(code)
			require.True(t, ok)
			back := mediaIDToShortcode(id)

			// Re-decode the round-tripped code and confirm the numeric value
			// is preserved (mediaIDToShortcode may drop leading alphabet[0]
			// "zero" digits, matching how Instagram's own codes never carry
			// redundant leading zero digits).
			id2, ok := shortcodeToMediaID(back)
			require.True(t, ok)
			assert.Equal(t, 0, id.Cmp(id2))
		})
	}
}

func TestShortcodeToMediaID_InvalidChar(t *testing.T) {
	_, ok := shortcodeToMediaID("abc!def")
	assert.False(t, ok)
}

func TestMediaIDToShortcode_Zero(t *testing.T) {
	assert.Equal(t, "A", mediaIDToShortcode(big.NewInt(0)))
}
