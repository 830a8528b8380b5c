package extractor

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	platform string
	pattern  *regexp.Regexp
}

func (s *stubExtractor) Platform() string           { return s.platform }
func (s *stubExtractor) Patterns() []*regexp.Regexp { return []*regexp.Regexp{s.pattern} }
func (s *stubExtractor) Match(u string) bool         { return s.pattern.MatchString(u) }
func (s *stubExtractor) Extract(ctx context.Context, u string, opts Options) (*Result, *Error) {
	return &Result{Success: true, Platform: s.platform}, nil
}

type stubMultiPlatformExtractor struct {
	stubExtractor
	platforms []string
}

func (s *stubMultiPlatformExtractor) Platforms() []string { return s.platforms }

func TestRegistry_Match_NativeWinsOverWrapper(t *testing.T) {
	native := &stubExtractor{platform: "facebook", pattern: regexp.MustCompile(`facebook\.com`)}
	wrap := &stubMultiPlatformExtractor{
		stubExtractor: stubExtractor{platform: "wrapper", pattern: regexp.MustCompile(`.*`)},
		platforms:     []string{"youtube", "reddit"},
	}

	r := NewRegistry(nil)
	r.Register(native)
	r.SetWrapper(wrap)

	assert.Equal(t, native, r.Match("https://facebook.com/u/videos/1"))
	assert.Equal(t, wrap, r.Match("https://youtube.com/watch?v=1"))
}

func TestRegistry_Match_Unsupported(t *testing.T) {
	r := NewRegistry(nil)
	assert.Nil(t, r.Match("https://example.com/nothing"))
}

func TestRegistry_IsSupported_ProfileGating(t *testing.T) {
	native := &stubExtractor{platform: "facebook", pattern: regexp.MustCompile(`facebook\.com`)}
	wrap := &stubExtractor{platform: "wrapper", pattern: regexp.MustCompile(`youtube\.com`)}

	vercel := true
	r := NewRegistry(func() bool { return vercel })
	r.Register(native)
	r.SetWrapper(wrap)

	assert.True(t, r.IsSupported("https://facebook.com/u/videos/1"))
	assert.False(t, r.IsSupported("https://youtube.com/watch?v=1"))

	vercel = false
	assert.True(t, r.IsSupported("https://youtube.com/watch?v=1"))
}

func TestRegistry_IsWrapperExtractor(t *testing.T) {
	native := &stubExtractor{platform: "facebook", pattern: regexp.MustCompile(`facebook\.com`)}
	wrap := &stubExtractor{platform: "wrapper", pattern: regexp.MustCompile(`youtube\.com`)}

	r := NewRegistry(nil)
	r.Register(native)
	r.SetWrapper(wrap)

	assert.True(t, r.IsWrapperExtractor(wrap))
	assert.False(t, r.IsWrapperExtractor(native))
	assert.False(t, r.IsWrapperExtractor(nil))
}

func TestRegistry_SupportedPlatforms(t *testing.T) {
	native := &stubExtractor{platform: "facebook", pattern: regexp.MustCompile(`facebook\.com`)}
	wrap := &stubMultiPlatformExtractor{
		stubExtractor: stubExtractor{platform: "wrapper", pattern: regexp.MustCompile(`.*`)},
		platforms:     []string{"youtube", "reddit"},
	}

	r := NewRegistry(nil)
	r.Register(native)
	r.SetWrapper(wrap)

	platforms := r.SupportedPlatforms()
	assert.Contains(t, platforms, "facebook")
	assert.Contains(t, platforms, "youtube")
	assert.Contains(t, platforms, "reddit")
}

func TestRegistry_SupportedPlatforms_VercelHidesWrapper(t *testing.T) {
	native := &stubExtractor{platform: "facebook", pattern: regexp.MustCompile(`facebook\.com`)}
	wrap := &stubExtractor{platform: "wrapper", pattern: regexp.MustCompile(`youtube\.com`)}

	r := NewRegistry(func() bool { return true })
	r.Register(native)
	r.SetWrapper(wrap)

	platforms := r.SupportedPlatforms()
	assert.Equal(t, []string{"facebook"}, platforms)
}

func TestRegistry_Extract_ViaMatchedExtractor(t *testing.T) {
	native := &stubExtractor{platform: "facebook", pattern: regexp.MustCompile(`facebook\.com`)}
	r := NewRegistry(nil)
	r.Register(native)

	e := r.Match("https://facebook.com/u/videos/1")
	require.NotNil(t, e)
	result, errv := e.Extract(context.Background(), "https://facebook.com/u/videos/1", Options{})
	require.Nil(t, errv)
	assert.Equal(t, "facebook", result.Platform)
}
