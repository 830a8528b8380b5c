package gateway

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
)

// publicRoutes bypasses the API-key/origin check entirely: these are the
// routes a browser or media player hits directly (often via a bare <img>/
// <video> tag or an HLS client) where neither a custom header nor a
// same-origin Referer can be expected.
var publicRoutes = map[string]bool{
	"/stream":      true,
	"/download":    true,
	"/thumbnail":   true,
	"/hls-proxy":   true,
	"/hls-stream":  true,
	"/merge":       true,
	"/events":      true,
	"/changelog":   true,
	"/extract":     true,
	"/health":      true,
	"/status":      true,
}

// AccessControlConfig names the callers allowed past the access-control
// middleware when a route isn't in publicRoutes.
type AccessControlConfig struct {
	APIKeys        []string
	AllowedOrigins []string
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	host := hostOf(origin)
	if host == "" {
		host = origin
	}
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "*" || strings.EqualFold(a, host) || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func apiKeyValid(key string, keys []string) bool {
	if key == "" {
		return false
	}
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
			return true
		}
	}
	return false
}

// AccessControl rejects requests to non-public routes unless the caller
// presents a valid API key (X-API-Key header) or an Origin/Referer that
// matches cfg.AllowedOrigins.
func AccessControl(cfg AccessControlConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicRoutes[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if apiKeyValid(r.Header.Get("X-API-Key"), cfg.APIKeys) {
				next.ServeHTTP(w, r)
				return
			}

			if originAllowed(r.Header.Get("Origin"), cfg.AllowedOrigins) ||
				originAllowed(r.Header.Get("Referer"), cfg.AllowedOrigins) {
				next.ServeHTTP(w, r)
				return
			}

			writeGatewayError(w, http.StatusForbidden, "FORBIDDEN", "A valid API key or allowed origin is required.")
		})
	}
}
