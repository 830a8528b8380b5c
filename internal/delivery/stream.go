package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/normalizer"
)

// Streamer is the narrow C1 dependency the delivery proxy needs: a
// streaming GET whose response body the caller owns and copies directly,
// never buffered. internal/httpclient.Client satisfies this directly.
type Streamer interface {
	FetchStream(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
}

// Handler serves the raw byte-copy delivery endpoints (/stream, /download,
// /thumbnail), all grounded on relay_stream.go's streamRawDirectProxy: a
// 32KB-buffer read/write loop with an http.Flusher flush per chunk and a
// clean break on client disconnect or upstream EOF.
type Handler struct {
	fetcher  Streamer
	registry Resolver
	logger   *slog.Logger

	muxerBinary      string
	muxerMaxDuration time.Duration
}

// NewHandler constructs a delivery Handler. fetcher is typically an
// *internal/httpclient.Client configured for the "delivery" logical caller.
// configuredMuxerBinary is the delivery.muxer_binary config value (empty
// means auto-discover per internal/muxer.Discover); maxDuration bounds how
// long a single hls-stream/merge subprocess may run before being killed.
func NewHandler(fetcher Streamer, registry Resolver, logger *slog.Logger, configuredMuxerBinary string, maxDuration time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		fetcher:          fetcher,
		registry:         registry,
		logger:           logger,
		muxerBinary:      configuredMuxerBinary,
		muxerMaxDuration: maxDuration,
	}
}

// ServeStream handles GET /stream: relay upstream bytes verbatim, no
// Content-Disposition, range-aware.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "")
}

// ServeDownload handles GET /download: identical relay, plus a
// Content-Disposition header carrying the caller-supplied or synthesized
// filename.
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	if watch := r.URL.Query().Get("watchUrl"); watch != "" && IsYouTubeWatchURL(watch) {
		if h.tryYouTubeFastPath(w, r, watch) {
			return
		}
	}
	filename := r.URL.Query().Get("filename")
	h.serve(w, r, filename)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, downloadFilename string) {
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

	headers := UpstreamHeaders(parsed.Hostname())
	if headers == nil {
		headers = map[string]string{}
	}
	if rng := r.Header.Get("Range"); rng != "" {
		headers["Range"] = rng
	}

	resp, err := h.fetcher.FetchStream(r.Context(), target, headers)
	if err != nil {
		h.logger.Error("delivery upstream fetch failed", slog.String("url", target), slog.Any("error", err))
		writeError(w, extractor.NewError(extractor.CodeFetchFailed, err.Error()))
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		mimeInfo := normalizer.AnalyzeMime("", target)
		contentType = mimeInfo.MIME
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}

	if downloadFilename != "" {
		setContentDisposition(w, downloadFilename)
	}

	if resp.StatusCode == http.StatusPartialContent {
		if cr := resp.Header.Get("Content-Range"); cr != "" {
			w.Header().Set("Content-Range", cr)
		}
		w.Header().Set("Accept-Ranges", "bytes")
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.Header().Set("Cache-Control", "no-cache, no-store")
		w.WriteHeader(http.StatusOK)
	}

	copyStream(w, resp.Body, h.logger, target)
}

// copyStream is the raw 32KB-buffer byte-copy loop shared by every
// pass-through endpoint, adapted from streamRawDirectProxy: flush after
// every non-empty read so the client sees bytes as they arrive, and break
// cleanly on write failure (client disconnect) or upstream EOF.
func copyStream(w http.ResponseWriter, src io.Reader, logger *slog.Logger, logURL string) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				logger.Debug("client disconnected during proxy write", slog.String("url", logURL))
				break
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				logger.Debug("upstream read error", slog.String("url", logURL), slog.Any("error", readErr))
			}
			break
		}
	}
}

// setContentDisposition emits both the ASCII-safe filename= and the
// RFC-5987 filename*=UTF-8'' forms so clients that don't understand the
// extended form still get a usable fallback name.
func setContentDisposition(w http.ResponseWriter, filename string) {
	ascii := toASCIIFilename(filename)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(filename)))
}

func toASCIIFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r > 126 || r < 32 || r == '"' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "download"
	}
	return string(out)
}

func writeError(w http.ResponseWriter, gwErr *extractor.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(gwErr.HTTPStatus())
	fmt.Fprintf(w, `{"success":false,"error":{"code":%q,"message":%q}}`, gwErr.Code(), gwErr.Message())
}
