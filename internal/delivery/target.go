// Package delivery implements the C8 delivery proxy: the /stream,
// /download, /thumbnail, /hls-proxy, /hls-stream, /merge, and
// youtube-fast-path endpoints that relay upstream media bytes to the
// client. The raw byte-copy streaming loop in stream.go is grounded on
// internal/httpserver/handlers/relay_stream.go's streamRawDirectProxy.
package delivery

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/mediagate/mediagate/internal/extractor"
)

// Resolver is the narrow C7 dependency the delivery proxy needs: turning a
// fingerprint or a previously-registered URL back into its canonical form.
type Resolver interface {
	Lookup(urlOrKey string) (string, bool)
}

var youtubeWatchPattern = regexp.MustCompile(`(?i)^https?://(www\.|m\.)?(youtube\.com/watch\?|youtu\.be/)`)

// IsYouTubeWatchURL reports whether raw looks like a YouTube watch URL,
// eligible for the fast path inside /download.
func IsYouTubeWatchURL(raw string) bool {
	return youtubeWatchPattern.MatchString(raw)
}

// ResolveTarget implements spec.md's delivery target-resolution contract:
// h=<fingerprint> via the registry, url=<encoded> accepted only if
// registered or on the signed-URL allow-list, or (for endpoints that accept
// it) a raw watchUrl recognized by pattern.
func ResolveTarget(r *http.Request, registry Resolver) (string, *extractor.Error) {
	q := r.URL.Query()

	if h := q.Get("h"); h != "" {
		canonical, ok := registry.Lookup(h)
		if !ok {
			return "", extractor.NewError(extractor.CodeInvalidHash, "unknown or expired fingerprint")
		}
		return canonical, nil
	}

	if raw := q.Get("url"); raw != "" {
		if canonical, ok := registry.Lookup(raw); ok {
			return canonical, nil
		}
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return "", extractor.NewError(extractor.CodeInvalidURL, "malformed url parameter")
		}
		if isSignedURLHost(parsed.Hostname()) {
			return raw, nil
		}
		return "", extractor.NewError(extractor.CodeUnauthorizedURL, "url is not registered and not on the signed-url allow-list")
	}

	if watch := q.Get("watchUrl"); watch != "" && IsYouTubeWatchURL(watch) {
		return watch, nil
	}

	return "", extractor.NewError(extractor.CodeMissingParameter, "one of h, url, or watchUrl is required")
}
