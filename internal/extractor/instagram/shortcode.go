package instagram

import "math/big"

// alphabet is Instagram's base64-url-like shortcode alphabet: each character
// maps to one base-64 digit (invariant P2: the round-trip preserves the
// numeric value).
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var charIndex = func() map[byte]int64 {
	m := make(map[byte]int64, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		m[alphabet[i]] = int64(i)
	}
	return m
}()

// shortcodeToMediaID decodes an Instagram shortcode into its numeric media
// id by treating the shortcode as a base-64 big-endian digit string over
// the custom alphabet.
func shortcodeToMediaID(code string) (*big.Int, bool) {
	id := new(big.Int)
	base := big.NewInt(64)
	digit := new(big.Int)

	for i := 0; i < len(code); i++ {
		v, ok := charIndex[code[i]]
		if !ok {
			return nil, false
		}
		id.Mul(id, base)
		digit.SetInt64(v)
		id.Add(id, digit)
	}
	return id, true
}

// mediaIDToShortcode is the inverse of shortcodeToMediaID (P2). It returns
// the shortest shortcode for the id, so a shortcode with leading 'A' (zero)
// digits comes back without them; the numeric value is the same.
func mediaIDToShortcode(id *big.Int) string {
	if id.Sign() == 0 {
		return string(alphabet[0])
	}

	base := big.NewInt(64)
	n := new(big.Int).Set(id)
	mod := new(big.Int)
	var digits []byte

	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append([]byte{alphabet[mod.Int64()]}, digits...)
	}
	return string(digits)
}
