package fragment

import (
	"regexp"
	"strings"
)

// ExtractFragment returns the substring of html between start and end
// (exclusive of both markers). If end is "", it returns up to maxLen bytes
// after start instead. Returns "" if start is not found.
func ExtractFragment(html, start, end string, maxLen int) string {
	idx := strings.Index(html, start)
	if idx < 0 {
		return ""
	}
	from := idx + len(start)

	if end == "" {
		to := from + maxLen
		if to > len(html) || maxLen <= 0 {
			to = len(html)
		}
		return html[from:to]
	}

	rest := html[from:]
	endIdx := strings.Index(rest, end)
	if endIdx < 0 {
		return ""
	}
	return rest[:endIdx]
}

// scriptByIDPattern matches a <script> tag carrying the given id attribute.
func scriptByIDPattern(id string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<script[^>]*\bid=["']` + regexp.QuoteMeta(id) + `["'][^>]*>(.*?)</script>`)
}

// ExtractScriptContent locates a <script> tag identified either by its id
// attribute or by containing idOrPattern as plain text, and returns its
// inner text. Returns "" if no matching script is found.
func ExtractScriptContent(html, idOrPattern string) string {
	if m := scriptByIDPattern(idOrPattern).FindStringSubmatch(html); len(m) == 2 {
		return m[1]
	}

	re := regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	for _, m := range re.FindAllStringSubmatch(html, -1) {
		if len(m) == 2 && strings.Contains(m[1], idOrPattern) {
			return m[1]
		}
	}
	return ""
}

var (
	titlePattern   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	ogTitlePattern = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']*)["']`)
	ogDescPattern  = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:description["'][^>]+content=["']([^"']*)["']`)
	ogImagePattern = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']*)["']`)
	ogURLPattern   = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:url["'][^>]+content=["']([^"']*)["']`)
)

// MetaTags is the set of scoped-regex-scraped meta fields from §4.2.
type MetaTags struct {
	Title       string
	OGTitle     string
	OGDescription string
	OGImage     string
	OGURL       string
}

// ExtractMetaTags scans an HTML fragment for <title> and the og:* meta
// properties via scoped regex, never a full DOM parse.
func ExtractMetaTags(html string) MetaTags {
	var tags MetaTags
	if m := titlePattern.FindStringSubmatch(html); len(m) == 2 {
		tags.Title = strings.TrimSpace(m[1])
	}
	if m := ogTitlePattern.FindStringSubmatch(html); len(m) == 2 {
		tags.OGTitle = m[1]
	}
	if m := ogDescPattern.FindStringSubmatch(html); len(m) == 2 {
		tags.OGDescription = m[1]
	}
	if m := ogImagePattern.FindStringSubmatch(html); len(m) == 2 {
		tags.OGImage = m[1]
	}
	if m := ogURLPattern.FindStringSubmatch(html); len(m) == 2 {
		tags.OGURL = m[1]
	}
	return tags
}

// ExtractAll runs pattern over text and returns up to limit matches of the
// first capture group (or the whole match when the pattern has no group).
// A bounded regex sweep, never run over an unbounded document.
func ExtractAll(text string, pattern *regexp.Regexp, limit int) []string {
	matches := pattern.FindAllStringSubmatch(text, limit)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}
	return out
}

// ExtractJSON finds the first balanced {...} object in text, optionally
// starting the search after startMarker. Balance is tracked with a simple
// brace counter that respects string literals and escapes so braces inside
// JSON string values don't throw off the count.
func ExtractJSON(text, startMarker string) string {
	search := text
	offset := 0
	if startMarker != "" {
		idx := strings.Index(text, startMarker)
		if idx < 0 {
			return ""
		}
		offset = idx + len(startMarker)
		search = text[offset:]
	}

	start := strings.IndexByte(search, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(search); i++ {
		c := search[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return search[start : i+1]
			}
		}
	}
	return ""
}
