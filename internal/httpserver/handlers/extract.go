package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/normalizer"
	"github.com/mediagate/mediagate/internal/urlutil"
)

// PlatformRegistry is the C3 dependency ExtractHandler needs: match a URL to
// an extractor and apply the deployment-profile gate on the wrapper bridge.
type PlatformRegistry interface {
	Match(url string) extractor.Extractor
	IsSupported(url string) bool
	IsWrapperExtractor(e extractor.Extractor) bool
}

// SourceProber probes an already-extracted source URL for the Content-Type
// and Content-Length the normalizer's MIME/size analysis needs.
type SourceProber interface {
	ProbeHead(ctx context.Context, url string) (contentType, contentLength string)
}

// ExtractHandler serves POST /extract: C3 dispatch, C4/C5 extraction, and
// C6 normalization (which also registers every source URL with C7). It is a
// plain http.Handler rather than a huma operation because the success and
// failure envelopes diverge in shape and status code in ways huma's generic
// error model doesn't express.
type ExtractHandler struct {
	registry    PlatformRegistry
	prober      SourceProber
	urlRegistry normalizer.Registry
}

// NewExtractHandler builds an ExtractHandler. prober is used to fill in the
// Content-Type/-Length evidence the extractors themselves don't already
// carry on MediaSource.
func NewExtractHandler(registry PlatformRegistry, prober SourceProber, urlRegistry normalizer.Registry) *ExtractHandler {
	return &ExtractHandler{registry: registry, prober: prober, urlRegistry: urlRegistry}
}

type extractRequest struct {
	URL    string `json:"url"`
	Cookie string `json:"cookie,omitempty"`
}

func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeExtractError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()), started)
		return
	}
	if req.URL == "" {
		writeExtractError(w, extractor.NewError(extractor.CodeMissingParameter, "url"), started)
		return
	}

	h.extract(r.Context(), w, req, started)
}

func (h *ExtractHandler) extract(ctx context.Context, w http.ResponseWriter, req extractRequest, started time.Time) {
	if err := urlutil.ValidateURL(req.URL); err != nil {
		writeExtractError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()), started)
		return
	}

	if !h.registry.IsSupported(req.URL) {
		writeExtractError(w, extractor.NewError(extractor.CodeUnsupportedPlatform, req.URL), started)
		return
	}

	ext := h.registry.Match(req.URL)
	if ext == nil {
		writeExtractError(w, extractor.NewError(extractor.CodeUnsupportedPlatform, req.URL), started)
		return
	}

	// IsSupported already re-checked the profile for wrapper-backed
	// platforms, but a registry mutation between that call and this one
	// (a config reload) could still slip a disabled platform through
	// without a second check immediately before Extract.
	if h.registry.IsWrapperExtractor(ext) && !h.registry.IsSupported(req.URL) {
		writeExtractError(w, extractor.NewError(extractor.CodePlatformUnavailableOnDeployment, req.URL), started)
		return
	}

	result, gwErr := ext.Extract(ctx, req.URL, extractor.Options{Cookie: extractor.ParseCookie(req.Cookie)})
	if gwErr != nil {
		writeExtractError(w, gwErr, started)
		return
	}

	sourceInputs := h.probeSources(ctx, result)
	normalizer.Normalize(result, sourceInputs, h.urlRegistry, "public", started)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

// probeSources issues a HEAD probe for every distinct source URL in result
// so the normalizer can determine MIME type and size confidence.
func (h *ExtractHandler) probeSources(ctx context.Context, result *extractor.Result) map[string]normalizer.SourceInput {
	inputs := make(map[string]normalizer.SourceInput)
	for _, item := range result.Items {
		for _, src := range item.Sources {
			if _, done := inputs[src.URL]; done {
				continue
			}
			contentType, contentLength := h.prober.ProbeHead(ctx, src.URL)
			inputs[src.URL] = normalizer.SourceInput{
				ContentType:   contentType,
				ContentLength: contentLength,
			}
		}
	}
	return inputs
}

func writeExtractError(w http.ResponseWriter, gwErr extractor.GatewayError, started time.Time) {
	meta := extractor.ResponseMeta{
		ResponseTimeMs: time.Since(started).Milliseconds(),
		AccessMode:     "public",
		PublicContent:  true,
	}
	envelope := extractor.NewErrorEnvelope(gwErr, meta)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(gwErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(envelope)
}
