package gateway

import (
	"net/http"
	"net/url"
	"regexp"
)

// unfilteredQueryPaths legitimately receive long signed upstream URLs in
// their query string; filtering those as attack patterns would reject
// every real request they're meant to serve.
var unfilteredQueryPaths = map[string]bool{
	"/hls-stream": true,
	"/hls-proxy":  true,
	"/stream":     true,
	"/download":   true,
	"/merge":      true,
}

var (
	pathTraversalPattern = regexp.MustCompile(`\.\.[/\\]|%2e%2e|\x00|\r|\n`)
	shellMetaPattern     = regexp.MustCompile("`|\\$\\(|\\$\\{|;\\s*\\w+\\s*&&|\\|\\|")
	xssPattern           = regexp.MustCompile(`(?i)<script|javascript:|on\w+\s*=|<iframe|<object|<embed|expression\s*\(|data:text/html`)
	sqlInjectionPattern  = regexp.MustCompile(`(?i)(\bunion\b\s+\bselect\b)|(\bor\b\s+1\s*=\s*1)|(;\s*drop\s+table)|(--\s*$)`)
)

// maxDecodeLayers bounds the fully-decode-then-test loop so a client can't
// force unbounded work with a deeply nested %25... chain.
const maxDecodeLayers = 5

// decodeFully repeatedly URL-decodes s up to maxDecodeLayers times,
// stopping early once decoding stops changing the string.
func decodeFully(s string) string {
	for i := 0; i < maxDecodeLayers; i++ {
		decoded, err := url.QueryUnescape(s)
		if err != nil || decoded == s {
			return s
		}
		s = decoded
	}
	return s
}

// isAttackPattern reports whether s, after full decoding, matches any of
// the path-traversal, shell-injection, XSS, or SQL-injection pattern sets.
func isAttackPattern(s string) bool {
	decoded := decodeFully(s)
	return pathTraversalPattern.MatchString(decoded) ||
		shellMetaPattern.MatchString(decoded) ||
		xssPattern.MatchString(decoded) ||
		sqlInjectionPattern.MatchString(decoded)
}

// InputFilter rejects requests whose path or query parameters (except the
// signed-URL endpoints in unfilteredQueryPaths) match a known attack
// pattern, after decoding up to 5 layers of URL-encoding.
func InputFilter() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAttackPattern(r.URL.Path) {
				writeGatewayError(w, http.StatusForbidden, "FORBIDDEN", "This request is not permitted.")
				return
			}

			if !unfilteredQueryPaths[r.URL.Path] {
				for key, values := range r.URL.Query() {
					if isAttackPattern(key) {
						writeGatewayError(w, http.StatusForbidden, "FORBIDDEN", "This request is not permitted.")
						return
					}
					for _, v := range values {
						if isAttackPattern(v) {
							writeGatewayError(w, http.StatusForbidden, "FORBIDDEN", "This request is not permitted.")
							return
						}
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
