package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// illegalChars matches characters that are unsafe in a filename on at
// least one of Windows/macOS/Linux: path separators, reserved Windows
// characters, and control characters (handled separately below since
// regexp's \x00-\x1f range duplicates unicode.IsControl but keeps the
// pattern self-contained for review).
var illegalChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// sanitize implements spec.md §4.6's filename-field rule: strip control
// and filesystem-illegal characters, collapse whitespace to a single
// underscore, preserve unicode letters, and truncate to budget runes (not
// bytes, so multi-byte characters aren't cut mid-codepoint).
func sanitize(s string, budget int) string {
	s = norm.NFC.String(s)
	s = illegalChars.ReplaceAllString(s, "")
	s = stripControl(s)
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	return truncateRunes(s, budget)
}

func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncateRunes(s string, budget int) string {
	if budget <= 0 || utf8.RuneCountInString(s) <= budget {
		return s
	}
	runes := []rune(s)
	return string(runes[:budget])
}

// authorBudget and titleBudget are the per-field rune budgets spec.md
// §4.6's filename formula names.
const (
	authorBudget = 20
	titleBudget  = 40
)

// SynthesizeFilename builds `sanitize(author,20)_contentType_sanitize(title,40)[_index]_quality.extension`.
// index is 1-based and only appended when itemCount > 1, matching the
// "(index+1) if items>1" clause.
func SynthesizeFilename(author, contentType, title string, index, itemCount int, quality, extension string) string {
	parts := []string{sanitize(author, authorBudget), contentType, sanitize(title, titleBudget)}
	if itemCount > 1 {
		parts = append(parts, fmt.Sprintf("%d", index+1))
	}
	if quality != "" {
		parts = append(parts, quality)
	}

	name := strings.Join(nonEmpty(parts), "_")
	if extension != "" {
		name += "." + extension
	}
	return name
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
