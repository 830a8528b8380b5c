package extractor

import (
	"encoding/json"
	"strings"
)

// jsonCookieExport is the shape produced by browser cookie-export
// extensions ("EditThisCookie" and similar): an array of {name, value}
// objects, possibly with extra fields we ignore.
type jsonCookieExport struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParseCookie normalizes any of the three accepted cookie input shapes into
// a single canonical "name=value; name2=value2" string (P6): a Netscape
// tab-delimited cookie-jar file, a JSON browser export, or an already-raw
// "name=value; ..." string. Pairs with an empty value are dropped; order of
// first occurrence is preserved and later duplicates overwrite earlier ones,
// matching how a browser's effective cookie jar behaves.
func ParseCookie(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var pairs []cookiePair
	switch {
	case looksLikeNetscape(raw):
		pairs = parseNetscapeCookies(raw)
	case looksLikeJSON(raw):
		if parsed, ok := parseJSONCookies(raw); ok {
			pairs = parsed
		} else {
			pairs = parseRawCookies(raw)
		}
	default:
		pairs = parseRawCookies(raw)
	}

	return joinCookiePairs(pairs)
}

type cookiePair struct {
	name  string
	value string
}

func looksLikeNetscape(s string) bool {
	return strings.HasPrefix(s, "# Netscape") || strings.Contains(s, "\tTRUE\t") || strings.Contains(s, "\tFALSE\t")
}

func looksLikeJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}

// parseNetscapeCookies parses the tab-delimited format:
// domain  flag  path  secure  expiration  name  value
func parseNetscapeCookies(raw string) []cookiePair {
	var pairs []cookiePair
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		name := strings.TrimSpace(fields[5])
		value := strings.TrimSpace(fields[6])
		if name == "" || value == "" {
			continue
		}
		pairs = append(pairs, cookiePair{name: name, value: value})
	}
	return pairs
}

// parseJSONCookies parses either a top-level array of {name,value} objects
// or a single such object.
func parseJSONCookies(raw string) ([]cookiePair, bool) {
	var arr []jsonCookieExport
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		pairs := make([]cookiePair, 0, len(arr))
		for _, c := range arr {
			if c.Name == "" || c.Value == "" {
				continue
			}
			pairs = append(pairs, cookiePair{name: c.Name, value: c.Value})
		}
		return pairs, true
	}

	var single jsonCookieExport
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single.Name != "" {
		if single.Value == "" {
			return nil, true
		}
		return []cookiePair{{name: single.Name, value: single.Value}}, true
	}

	return nil, false
}

// parseRawCookies parses a "name=value; name2=value2" string.
func parseRawCookies(raw string) []cookiePair {
	var pairs []cookiePair
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		value := strings.TrimSpace(part[eq+1:])
		if name == "" || value == "" {
			continue
		}
		pairs = append(pairs, cookiePair{name: name, value: value})
	}
	return pairs
}

// joinCookiePairs renders pairs into the canonical string, with later
// duplicates overwriting earlier values but the first-seen position kept.
func joinCookiePairs(pairs []cookiePair) string {
	if len(pairs) == 0 {
		return ""
	}

	order := make([]string, 0, len(pairs))
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, seen := values[p.name]; !seen {
			order = append(order, p.name)
		}
		values[p.name] = p.value
	}

	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, name+"="+values[name])
	}
	return strings.Join(parts, "; ")
}

// CSRFTokenFromCookie extracts a named token value (e.g. "csrftoken" for
// Instagram, "ct0" for Twitter) from a canonical cookie string, for use as
// an X-CSRFToken-style header on Tier B/C requests.
func CSRFTokenFromCookie(cookie, name string) string {
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(part[:eq]), name) {
			return strings.TrimSpace(part[eq+1:])
		}
	}
	return ""
}
