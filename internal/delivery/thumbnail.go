package delivery

import (
	"net/http"
	"net/url"

	"github.com/mediagate/mediagate/internal/extractor"
)

// ServeThumbnail handles GET /thumbnail?h=|url=: a fingerprint- or
// URL-addressed image relay, restricted to a fixed CDN allow-list (never an
// open proxy for arbitrary hosts), with a day-long cache lifetime.
func (h *Handler) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	target, gwErr := ResolveTarget(r, h.registry)
	if gwErr != nil {
		writeError(w, gwErr)
		return
	}

	parsed, err := url.Parse(target)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()))
		return
	}
	if !isThumbnailHost(parsed.Hostname()) {
		writeError(w, extractor.NewError(extractor.CodeForbidden, "thumbnail host is not on the allow-list"))
		return
	}

	resp, err := h.fetcher.FetchStream(r.Context(), target, nil)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeFetchFailed, err.Error()))
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	copyStream(w, resp.Body, h.logger, target)
}
