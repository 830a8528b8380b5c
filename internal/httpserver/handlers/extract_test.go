package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediagate/mediagate/internal/extractor"
)

type fakeExtractor struct {
	platform string
	result   *extractor.Result
	err      *extractor.Error
}

func (e *fakeExtractor) Platform() string                 { return e.platform }
func (e *fakeExtractor) Patterns() []*regexp.Regexp        { return nil }
func (e *fakeExtractor) Match(u string) bool               { return strings.Contains(u, e.platform) }
func (e *fakeExtractor) Extract(ctx context.Context, u string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	return e.result, e.err
}

type fakeRegistry struct {
	ext       extractor.Extractor
	supported bool
	isWrapper bool
}

func (r *fakeRegistry) Match(url string) extractor.Extractor { return r.ext }
func (r *fakeRegistry) IsSupported(url string) bool          { return r.supported }
func (r *fakeRegistry) IsWrapperExtractor(e extractor.Extractor) bool {
	return r.isWrapper
}

type fakeProber struct{}

func (fakeProber) ProbeHead(ctx context.Context, url string) (string, string) {
	return "video/mp4", "1024"
}

type fakeURLRegistry struct{}

func (fakeURLRegistry) Add(url string) string { return "deadbeefcafef00d" }

func TestExtractHandler_Success(t *testing.T) {
	fe := &fakeExtractor{
		platform: "tiktok",
		result: &extractor.Result{
			Success:  true,
			Platform: "tiktok",
			Items: []extractor.MediaItem{
				{Index: 0, Type: extractor.ContentVideo, Sources: []extractor.MediaSource{
					{Quality: "hd", URL: "https://cdn.example/video.mp4"},
				}},
			},
		},
	}
	reg := &fakeRegistry{ext: fe, supported: true}
	h := NewExtractHandler(reg, fakeProber{}, fakeURLRegistry{})

	req := httptest.NewRequest("POST", "/extract", strings.NewReader(`{"url":"https://tiktok.com/@a/video/1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body extractor.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tiktok", body.Platform)
	assert.Equal(t, "deadbeefcafef00d", body.Items[0].Sources[0].Hash)
	assert.Equal(t, "video/mp4", body.Items[0].Sources[0].MIME)
}

func TestExtractHandler_UnsupportedPlatform(t *testing.T) {
	reg := &fakeRegistry{supported: false}
	h := NewExtractHandler(reg, fakeProber{}, fakeURLRegistry{})

	req := httptest.NewRequest("POST", "/extract", strings.NewReader(`{"url":"https://example.com/video"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	var body extractor.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "UNSUPPORTED_PLATFORM", body.Error.Code)
}

func TestExtractHandler_MissingURL(t *testing.T) {
	reg := &fakeRegistry{}
	h := NewExtractHandler(reg, fakeProber{}, fakeURLRegistry{})

	req := httptest.NewRequest("POST", "/extract", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	var body extractor.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_PARAMETER", body.Error.Code)
}

func TestExtractHandler_WrapperDisabledOnProfile(t *testing.T) {
	fe := &fakeExtractor{platform: "wrapper"}
	// IsSupported reports false (profile disables the wrapper), so this
	// exercises the early gate check rather than the post-Match re-check.
	reg := &fakeRegistry{ext: fe, supported: false, isWrapper: true}
	h := NewExtractHandler(reg, fakeProber{}, fakeURLRegistry{})

	req := httptest.NewRequest("POST", "/extract", strings.NewReader(`{"url":"https://wrapper.example/x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	var body extractor.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNSUPPORTED_PLATFORM", body.Error.Code)
}

func TestExtractHandler_ExtractionFailure(t *testing.T) {
	fe := &fakeExtractor{
		platform: "tiktok",
		err:      extractor.NewError(extractor.CodeNoMediaFound, "no media"),
	}
	reg := &fakeRegistry{ext: fe, supported: true}
	h := NewExtractHandler(reg, fakeProber{}, fakeURLRegistry{})

	req := httptest.NewRequest("POST", "/extract", strings.NewReader(`{"url":"https://tiktok.com/@a/video/1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body extractor.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NO_MEDIA_FOUND", body.Error.Code)
}
