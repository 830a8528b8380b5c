// Package wrapper implements the C5 bridge to the sibling extractor
// service: the registry falls back to it whenever a URL matches a
// wrapper-backed platform (YouTube, BiliBili, SoundCloud, Reddit,
// Pinterest, ...) but no native scanner claims it. The bridge only
// forwards the request and validates the envelope it gets back; it never
// re-implements platform parsing itself.
package wrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/mediagate/mediagate/internal/extractor"
)

// DefaultAPIURL is used when neither PythonAPIURL nor its public variant
// resolves to a usable address.
const DefaultAPIURL = "http://127.0.0.1:5000"

// platformPatterns lists the URL shapes routed to the wrapper service. Any
// platform with a native extractor (Facebook, Instagram, TikTok, Twitter,
// Pixiv) is deliberately absent: the registry tries native extractors
// first, so a pattern here only matters for platforms with no C4 scanner.
var platformPatterns = []struct {
	platform string
	pattern  *regexp.Regexp
	nsfw     bool
}{
	{"youtube", regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?(?:youtube\.com/(?:watch|shorts/|embed/)|youtu\.be/)`), false},
	{"bilibili", regexp.MustCompile(`(?i)^https?://(?:www\.)?bilibili\.com/video/`), false},
	{"soundcloud", regexp.MustCompile(`(?i)^https?://(?:www\.)?soundcloud\.com/`), false},
	{"reddit", regexp.MustCompile(`(?i)^https?://(?:www\.|old\.)?reddit\.com/r/\w+/comments/`), true},
	{"pinterest", regexp.MustCompile(`(?i)^https?://(?:www\.)?pinterest\.[a-z.]+/pin/`), false},
}

// Fetcher is the narrowed httpclient dependency: a single JSON POST with a
// caller-controlled context deadline. The production implementation
// (NewHTTPFetcher) sends it once over a plain *http.Client, without C1's
// retry policy or circuit breaker.
type Fetcher interface {
	PostJSON(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, int, error)
}

// Extractor forwards matched URLs to the external wrapper service and
// validates the envelope it returns.
type Extractor struct {
	fetcher Fetcher
	apiURL  string
}

// New creates the wrapper bridge. apiURL is resolved at startup from
// PYTHON_API_URL, falling back to its public variant and then
// DefaultAPIURL, per spec.md §4.5.
func New(fetcher Fetcher, apiURL string) *Extractor {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Extractor{fetcher: fetcher, apiURL: apiURL}
}

// ResolveAPIURL picks PYTHON_API_URL, falling back to its "public" sibling
// variable and then DefaultAPIURL. Both lookups are plain strings so this
// has no dependency on how the caller loads configuration.
func ResolveAPIURL(pythonAPIURL, publicPythonAPIURL string) string {
	if pythonAPIURL != "" {
		return pythonAPIURL
	}
	if publicPythonAPIURL != "" {
		return publicPythonAPIURL
	}
	return DefaultAPIURL
}

func (e *Extractor) Platform() string { return "wrapper" }

// Patterns returns every wrapper-backed platform pattern; Platforms()
// returns their platform tags for the /status endpoint.
func (e *Extractor) Patterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(platformPatterns))
	for _, p := range platformPatterns {
		patterns = append(patterns, p.pattern)
	}
	return patterns
}

// Platforms lists the platform tags routed through this bridge.
func (e *Extractor) Platforms() []string {
	platforms := make([]string, 0, len(platformPatterns))
	for _, p := range platformPatterns {
		platforms = append(platforms, p.platform)
	}
	return platforms
}

func (e *Extractor) Match(u string) bool {
	for _, p := range platformPatterns {
		if p.pattern.MatchString(u) {
			return true
		}
	}
	return false
}

func detectPlatform(u string) (string, bool) {
	for _, p := range platformPatterns {
		if p.pattern.MatchString(u) {
			return p.platform, p.nsfw
		}
	}
	return "", false
}

// wrapperRequest is the body forwarded to POST /extract.
type wrapperRequest struct {
	URL    string `json:"url"`
	Cookie string `json:"cookie,omitempty"`
}

// wrapperEnvelope is the shared result shape (spec.md §6) the sibling
// service is expected to answer with. Only the fields the bridge itself
// needs to validate or stamp are modeled; everything else round-trips
// through RawItems untouched.
type wrapperEnvelope struct {
	Success     bool            `json:"success"`
	Platform    string          `json:"platform"`
	ContentType string          `json:"contentType"`
	SourceURL   string          `json:"sourceUrl"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	RawItems    json.RawMessage `json:"items"`
	Error       *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract forwards {url, cookie?} to the wrapper service's POST /extract
// and validates the returned envelope before stamping platform/isNsfw onto
// the normalized Result.
func (e *Extractor) Extract(ctx context.Context, targetURL string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	platform, nsfw := detectPlatform(targetURL)
	if platform == "" {
		return nil, extractor.NewError(extractor.CodeUnsupportedPlatform, "url does not match a wrapper-backed platform")
	}

	reqBody, err := json.Marshal(wrapperRequest{URL: targetURL, Cookie: opts.Cookie})
	if err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not encode wrapper request")
	}

	respBody, status, err := e.fetcher.PostJSON(ctx, e.apiURL+"/extract", reqBody, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	if status == http.StatusTooManyRequests {
		return nil, extractor.NewError(extractor.CodeRateLimited, "wrapper service is rate limiting")
	}
	if status >= 500 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("wrapper service status %d", status))
	}

	var env wrapperEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "wrapper envelope did not match the shared schema")
	}
	if env.Error != nil {
		return nil, extractor.NewError(extractor.Code(env.Error.Code), env.Error.Message)
	}
	if !env.Success {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "wrapper reported failure without an error code")
	}

	var items []extractor.MediaItem
	if len(env.RawItems) > 0 {
		if err := json.Unmarshal(env.RawItems, &items); err != nil {
			return nil, extractor.NewError(extractor.CodeExtractionFailed, "wrapper items did not match the shared schema")
		}
	}
	if len(items) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "wrapper returned no media")
	}

	result := &extractor.Result{
		Success:      true,
		Platform:     platform,
		ContentType:  extractor.ContentType(env.ContentType),
		SourceURL:    targetURL,
		Title:        env.Title,
		Author:       env.Author,
		ID:           env.ID,
		Description:  env.Description,
		Items:        items,
		CookieSource: cookieSourceFor(opts.Cookie),
		UsedCookie:   opts.Cookie != "",
		IsNsfw:       nsfw,
	}
	return result, nil
}

func cookieSourceFor(cookie string) extractor.CookieSource {
	if cookie == "" {
		return extractor.CookieNone
	}
	return extractor.CookieClient
}

// httpFetcher is a minimal *http.Client-backed Fetcher and the one
// production wiring uses; the wrapper package depends only on the Fetcher
// interface so its tests run against a fake.
type httpFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPFetcher builds the production Fetcher used by cmd/mediagate's
// wiring, without importing internal/httpclient: requests go straight
// through the given *http.Client, with no circuit breaker or retry.
func NewHTTPFetcher(client *http.Client, timeout time.Duration) Fetcher {
	return &httpFetcher{client: client, timeout: timeout}
}

func (f *httpFetcher) PostJSON(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, int, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, resp.StatusCode, err
	}
	return buf.Bytes(), resp.StatusCode, nil
}
