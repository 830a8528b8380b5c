package fragment

import (
	"regexp"
	"strings"
)

// urlPattern matches bare http(s) URLs inside a text/JSON fragment, stopping
// at whitespace or common JSON/HTML delimiters.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

// ExtractURLs returns every distinct http(s) URL found in text, in order of
// first appearance, trimmed of trailing punctuation that regex greediness
// tends to pick up (closing parens, commas, periods).
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		u := trimTrailingPunct(m)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// ExtractURLsForDomain is ExtractURLs filtered to URLs whose host contains
// domain, used to narrow a fragment sweep to a platform's own CDN hosts.
func ExtractURLsForDomain(text, domain string) []string {
	all := ExtractURLs(text)
	out := make([]string, 0, len(all))
	for _, u := range all {
		if strings.Contains(u, domain) {
			out = append(out, u)
		}
	}
	return out
}

func trimTrailingPunct(u string) string {
	for len(u) > 0 {
		last := u[len(u)-1]
		switch last {
		case ')', ']', '}', ',', '.', ';', ':', '"', '\'':
			u = u[:len(u)-1]
			continue
		}
		break
	}
	return u
}
