package fragment

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// namedEntities covers the handful of named HTML entities that actually show
// up in social-media markup and JSON-in-script blobs; this is not a full
// HTML5 entity table, deliberately — a bounded fragment parser has no need
// for the rest.
var namedEntities = map[string]rune{
	"amp":    '&',
	"lt":     '<',
	"gt":     '>',
	"quot":   '"',
	"apos":   '\'',
	"nbsp":   ' ',
	"hellip": '…',
	"mdash":  '—',
	"ndash":  '–',
	"lsquo":  '‘',
	"rsquo":  '’',
	"ldquo":  '“',
	"rdquo":  '”',
}

// DecodeHTMLEntities decodes named HTML entities, numeric entities
// (&#123; and &#x7B;), and JavaScript-style string escapes (\uXXXX, \xHH,
// \/) that commonly appear in inline JSON blobs extracted from <script>
// tags. Malformed escapes are left as-is rather than dropped.
func DecodeHTMLEntities(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]

		if c == '&' {
			if end := strings.IndexByte(s[i:], ';'); end > 0 && end <= 32 {
				entity := s[i+1 : i+end]
				if decoded, ok := decodeEntity(entity); ok {
					b.WriteRune(decoded)
					i += end + 1
					continue
				}
			}
			b.WriteByte(c)
			i++
			continue
		}

		if c == '\\' && i+1 < len(s) {
			if r, n, ok := decodeJSEscape(s[i:]); ok {
				b.WriteRune(r)
				i += n
				continue
			}
		}

		b.WriteByte(c)
		i++
	}

	return b.String()
}

func decodeEntity(entity string) (rune, bool) {
	if r, ok := namedEntities[entity]; ok {
		return r, true
	}

	if strings.HasPrefix(entity, "#x") || strings.HasPrefix(entity, "#X") {
		if v, err := strconv.ParseInt(entity[2:], 16, 32); err == nil {
			return rune(v), true
		}
		return 0, false
	}

	if strings.HasPrefix(entity, "#") {
		if v, err := strconv.ParseInt(entity[1:], 10, 32); err == nil {
			return rune(v), true
		}
	}

	return 0, false
}

// decodeJSEscape decodes a single JS-style escape sequence starting at s[0]
// == '\\'. Returns the decoded rune, the number of input bytes consumed, and
// whether the escape was recognized.
func decodeJSEscape(s string) (rune, int, bool) {
	if len(s) < 2 {
		return 0, 0, false
	}

	switch s[1] {
	case 'u':
		if len(s) >= 6 {
			if v, err := strconv.ParseInt(s[2:6], 16, 32); err == nil {
				r := rune(v)
				if !utf8.ValidRune(r) {
					r = utf8.RuneError
				}
				return r, 6, true
			}
		}
	case 'x':
		if len(s) >= 4 {
			if v, err := strconv.ParseInt(s[2:4], 16, 32); err == nil {
				return rune(v), 4, true
			}
		}
	case '/':
		return '/', 2, true
	case 'n':
		return '\n', 2, true
	case 't':
		return '\t', 2, true
	case 'r':
		return '\r', 2, true
	case '"':
		return '"', 2, true
	case '\\':
		return '\\', 2, true
	}

	return 0, 0, false
}
