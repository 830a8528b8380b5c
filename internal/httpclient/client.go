// Package httpclient provides the spec-level outbound HTTP operations used
// by every extractor and by the delivery proxy: text/stream fetches with a
// bounded read, manual single-hop redirect resolution that captures the
// final URL, and HEAD-based size probing. It is a thin operation layer over
// the resilient transport in pkg/httpclient — the retry/circuit-breaker/
// decompression machinery lives there; this package owns the call shapes the
// gateway domain actually needs.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mediagate/mediagate/pkg/httpclient"
)

// DefaultUserAgent is used when a caller doesn't set one explicitly.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Fetcher is the operation set extractors and the delivery proxy depend on.
// Defined as an interface so extractor tests can supply a fake.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error)
	FetchStream(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
	ResolveURL(ctx context.Context, url string) (string, error)
	FileSize(ctx context.Context, url string) (int64, bool, error)
	FileSizes(ctx context.Context, urls []string) map[string]int64
}

// Client adapts a registry of named pkg/httpclient.Client instances (one per
// logical caller, e.g. "extractor.tiktok", "delivery") to the
// Fetcher operations.
type Client struct {
	registry   *httpclient.Registry
	factory    *httpclient.ClientFactory
	name       string
	userAgent  string
	maxBodyLen int64
}

// New creates a named Client backed by registry/factory, creating the
// underlying pkg/httpclient.Client for name on first use if it doesn't
// already exist.
func New(registry *httpclient.Registry, factory *httpclient.ClientFactory, name string) *Client {
	c := registry.Get(name)
	if c == nil {
		c = factory.CreateClientForService(name)
		registry.Register(name, c)
	}
	return &Client{
		registry:   registry,
		factory:    factory,
		name:       name,
		userAgent:  DefaultUserAgent,
		maxBodyLen: 8 * 1024 * 1024,
	}
}

// WithUserAgent returns a shallow copy of c using the given default User-Agent
// for requests that don't already carry one.
func (c *Client) WithUserAgent(ua string) *Client {
	clone := *c
	clone.userAgent = ua
	return &clone
}

func (c *Client) client() *httpclient.Client {
	return c.registry.Get(c.name)
}

func (c *Client) newRequest(ctx context.Context, method, url string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// FetchText issues a GET and returns the response body (bounded to
// maxBodyLen), decompressed transparently, plus the upstream status code.
func (c *Client) FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, headers)
	if err != nil {
		return "", 0, err
	}

	resp, err := c.client().DoWithContext(ctx, req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyLen))
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(body), resp.StatusCode, nil
}

// FetchStream issues a GET and returns the raw *http.Response for the caller
// to stream from directly (delivery proxy paths never buffer the body).
// The caller owns closing resp.Body.
func (c *Client) FetchStream(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, headers)
	if err != nil {
		return nil, err
	}
	return c.client().DoWithContext(ctx, req)
}

// ResolveURL follows exactly one redirect hop manually and returns the
// resolved final URL. The named client follows redirects on its own, so the
// HEAD is sent through a client whose CheckRedirect stops at the first
// response, and the Location header is read from it; this one request does
// not go through the named client's retry or circuit breaker. If the
// response is not a redirect, url is returned unchanged.
func (c *Client) ResolveURL(ctx context.Context, url string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}

	noFollow := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := noFollow.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		if loc := resp.Header.Get("Location"); loc != "" {
			return loc, nil
		}
	}
	return url, nil
}

// FileSize issues a HEAD request and returns the Content-Length, if the
// upstream reports one. The bool return indicates whether a size was
// available at all (ok=false means "unknown", not an error).
func (c *Client) FileSize(ctx context.Context, url string) (int64, bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false, err
	}

	resp, err := c.client().DoWithContext(ctx, req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return 0, false, nil
	}
	size, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return size, true, nil
}

// FileSizes probes FileSize for every url concurrently and returns only the
// ones that resolved; callers treat a missing key as SizeUnknown per the
// normalizer's size-confidence rules.
func (c *Client) FileSizes(ctx context.Context, urls []string) map[string]int64 {
	type result struct {
		url  string
		size int64
		ok   bool
	}

	results := make(chan result, len(urls))
	for _, u := range urls {
		go func(u string) {
			size, ok, err := c.FileSize(ctx, u)
			results <- result{url: u, size: size, ok: ok && err == nil}
		}(u)
	}

	out := make(map[string]int64, len(urls))
	for range urls {
		r := <-results
		if r.ok {
			out[r.url] = r.size
		}
	}
	return out
}

// ProbeHead issues a HEAD request and returns the raw Content-Type and
// Content-Length header values the upstream reports, for the normalizer's
// MIME/size analysis. Either may come back empty; that's "unknown", not an
// error — a HEAD failure here should never block an otherwise successful
// extraction.
func (c *Client) ProbeHead(ctx context.Context, url string) (contentType, contentLength string) {
	req, err := c.newRequest(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", ""
	}

	resp, err := c.client().DoWithContext(ctx, req)
	if err != nil {
		return "", ""
	}
	defer resp.Body.Close()

	return resp.Header.Get("Content-Type"), resp.Header.Get("Content-Length")
}

// Stats reports the underlying circuit breaker's state for this client. No
// handler calls it; the circuit-breaker routes read breakers from the manager.
func (c *Client) Stats() (state string, failures int) {
	for _, s := range c.registry.GetCircuitBreakerStatuses() {
		if s.Name == c.name {
			return s.State, s.Failures
		}
	}
	return "unknown", 0
}

// AllStats reports every registered client's circuit breaker status. The
// /api/v1/circuit-breakers endpoints do not call it; they use the manager.
func AllStats(registry *httpclient.Registry) []httpclient.CircuitBreakerStatus {
	return registry.GetCircuitBreakerStatuses()
}

// ErrNotFound is a sentinel for a missing resource. No method of Client
// returns it; a 404 reaches callers as a status code (FetchText), as the
// response itself (FetchStream), or as headers read off the 404 response
// (FileSize, ProbeHead).
var ErrNotFound = fmt.Errorf("resource not found")
