package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, Max: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("1.2.3.4")
		assert.True(t, allowed)
	}
}

func TestRateLimiter_BlocksOverMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, Max: 2, Window: time.Minute})

	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	allowed, retryAfter := rl.Allow("1.2.3.4")

	assert.False(t, allowed)
	assert.GreaterOrEqual(t, retryAfter, 1)
}

func TestRateLimiter_ResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, Max: 1, Window: 10 * time.Millisecond})

	allowed, _ := rl.Allow("1.2.3.4")
	require.True(t, allowed)

	time.Sleep(20 * time.Millisecond)

	allowed, _ = rl.Allow("1.2.3.4")
	assert.True(t, allowed)
}

func TestRateLimiter_DisabledAlwaysAllows(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: false, Max: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("1.2.3.4")
		assert.True(t, allowed)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, Max: 1, Window: 10 * time.Millisecond})
	rl.Allow("1.2.3.4")
	time.Sleep(20 * time.Millisecond)

	removed := rl.Sweep()
	assert.Equal(t, 1, removed)
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/stream", nil)
	r.Header.Set("X-Forwarded-For", "9.9.9.9, 1.1.1.1")
	r.RemoteAddr = "127.0.0.1:12345"

	assert.Equal(t, "9.9.9.9", clientIP(r))
}

func TestClientIP_FallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/stream", nil)
	r.RemoteAddr = "203.0.113.5:54321"

	assert.Equal(t, "203.0.113.5", clientIP(r))
}

func TestRateLimit_Middleware_BlocksBreach(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, Max: 1, Window: time.Minute})
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r1 := httptest.NewRequest(http.MethodGet, "/stream", nil)
	r1.RemoteAddr = "5.5.5.5:1111"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, r1)
	require.Equal(t, http.StatusOK, w1.Code)

	r2 := httptest.NewRequest(http.MethodGet, "/stream", nil)
	r2.RemoteAddr = "5.5.5.5:2222"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, r2)

	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("Retry-After"))
}
