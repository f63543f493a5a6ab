package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, rate int, window time.Duration, trustProxy bool) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(rate, window, trustProxy, setupTestLogger())
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("within limit then denied", func(t *testing.T) {
		rl := newTestLimiter(t, 3, time.Minute, false)

		for i := 0; i < 3; i++ {
			allowed, _ := rl.Allow("10.0.0.1")
			assert.True(t, allowed, "request %d should be allowed", i+1)
		}

		allowed, retryAfter := rl.Allow("10.0.0.1")
		assert.False(t, allowed)
		assert.Greater(t, retryAfter, time.Duration(0))
		assert.LessOrEqual(t, retryAfter, time.Minute)
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := newTestLimiter(t, 1, time.Minute, false)

		allowed, _ := rl.Allow("a")
		assert.True(t, allowed)
		allowed, _ = rl.Allow("a")
		assert.False(t, allowed)
		allowed, _ = rl.Allow("b")
		assert.True(t, allowed)
	})

	t.Run("window reset", func(t *testing.T) {
		rl := newTestLimiter(t, 1, time.Minute, false)
		now := time.Now()
		rl.now = func() time.Time { return now }

		allowed, _ := rl.Allow("a")
		assert.True(t, allowed)
		allowed, _ = rl.Allow("a")
		assert.False(t, allowed)

		now = now.Add(time.Minute)
		allowed, _ = rl.Allow("a")
		assert.True(t, allowed, "tokens should be refilled")
	})
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := newTestLimiter(t, 10, time.Minute, false)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.Allow("same"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), allowed.Load())
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newTestLimiter(t, 2, time.Minute, false)

	var calls int
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:1000" + string(rune('0'+i))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Другой порт, тот же адрес
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.168.1.1:20000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, decodeError(t, w).Message, "too many requests")
	assert.Equal(t, 2, calls)
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute, false)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(3 * time.Minute)
	rl.Allow("fresh")

	rl.cleanupOldBuckets()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "old")
	assert.Contains(t, rl.buckets, "fresh")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, false, setupTestLogger())
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		expectedIP string
		trustProxy bool
	}{
		{name: "remote addr without port", remoteAddr: "192.168.3.1:54321", expectedIP: "192.168.3.1"},
		{name: "ipv6 remote addr", remoteAddr: "[::1]:54321", expectedIP: "::1"},
		{name: "unparsable remote addr kept", remoteAddr: "pipe", expectedIP: "pipe"},
		{name: "proxy headers ignored by default", remoteAddr: "10.0.0.1:1", xff: "192.168.1.1", expectedIP: "10.0.0.1"},
		{name: "X-Forwarded-For first hop", remoteAddr: "10.0.0.1:1", xff: "192.168.1.1, 10.0.0.2", trustProxy: true, expectedIP: "192.168.1.1"},
		{name: "X-Real-IP", remoteAddr: "10.0.0.1:1", xRealIP: "192.168.2.1", trustProxy: true, expectedIP: "192.168.2.1"},
		{name: "X-Forwarded-For wins", remoteAddr: "10.0.0.1:1", xff: "192.168.1.1", xRealIP: "192.168.2.1", trustProxy: true, expectedIP: "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := newTestLimiter(t, 1, time.Minute, tt.trustProxy)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, rl.clientIP(req))
		})
	}
}
