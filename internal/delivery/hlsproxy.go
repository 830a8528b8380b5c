package delivery

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mediagate/mediagate/internal/extractor"
)

// ServeHLSProxy handles GET /hls-proxy?url=&type=manifest|segment. For a
// manifest it rewrites every URI-bearing line to loop back through this
// proxy as a segment request; for a segment it's a plain pass-through with
// an hour-long cache lifetime. This is what lets a browser play a
// third-party HLS stream without tripping its CORS policy.
func (h *Handler) ServeHLSProxy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		writeError(w, extractor.NewError(extractor.CodeMissingParameter, "url is required"))
		return
	}
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeError(w, extractor.NewError(extractor.CodeInvalidURL, "malformed url parameter"))
		return
	}

	headers := UpstreamHeaders(parsed.Hostname())
	resp, err := h.fetcher.FetchStream(r.Context(), target, headers)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeFetchFailed, err.Error()))
		return
	}
	defer resp.Body.Close()

	if q.Get("type") == "segment" {
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		copyStream(w, resp.Body, h.logger, target)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.WriteHeader(http.StatusOK)
	rewriteManifest(w, resp.Body, r, target)
}

// rewriteManifest streams src line by line, leaving comment/tag lines
// (starting with '#') untouched and rewriting every URI line to an
// absolute form wrapped in this proxy's own segment URL.
func rewriteManifest(w io.Writer, src io.Reader, r *http.Request, manifestURL string) {
	base := selfBaseURL(r)
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			fmt.Fprintln(w, line)
			continue
		}
		absolute := absolutizeURI(trimmed, manifestURL)
		fmt.Fprintf(w, "%s/hls-proxy?url=%s&type=segment\n", base, url.QueryEscape(absolute))
	}
}

// absolutizeURI turns an absolute, root-relative, or relative manifest URI
// into a fully-qualified URL against manifestURL's scheme+host(+path).
func absolutizeURI(uri, manifestURL string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	base, err := url.Parse(manifestURL)
	if err != nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}

// selfBaseURL reconstructs this server's own externally-visible base URL
// from the incoming request, honoring reverse-proxy forwarding headers.
func selfBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = fwdHost
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}
