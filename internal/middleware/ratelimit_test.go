package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitGeneralBucket(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitAuthBucket(t *testing.T) {
	handler := NewRateLimitMiddleware(100, 1).Handler(okHandler())

	paths := []string{
		"/api/v1/users/login",
		"/api/v1/users/register",
		"/api/v1/users/forgot-password",
		"/api/v1/users/reset-password",
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, paths[0], nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range paths {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, path)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "other routes use the general bucket")
}

func TestRateLimitIsPerClient(t *testing.T) {
	handler := NewRateLimitMiddleware(100, 1).Handler(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

func TestRateLimitDefaults(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0)
	assert.Equal(t, 100, mw.generalRPM)
	assert.Equal(t, 5, mw.authRPM)
}

func TestClientIPIgnoresForwardingHeadersFromUntrustedPeers(t *testing.T) {
	handler := ClientIP(nil)(NewRateLimitMiddleware(100, 2).Handler(okHandler()))

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
		req.RemoteAddr = "198.51.100.20:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 18, limited)
}

func TestResolveClientIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "192.0.2.7", resolveClientIP(req, trusted), "headers from an untrusted peer are ignored")
	assert.Equal(t, "192.0.2.7", resolveClientIP(req, nil))

	req.RemoteAddr = "10.0.0.5:4321"
	req.Header.Set("X-Forwarded-For", "1.1.1.1, 203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", resolveClientIP(req, trusted), "the nearest untrusted hop wins")

	req.Header.Set("X-Forwarded-For", "garbage, 203.0.113.9")
	assert.Equal(t, "203.0.113.9", resolveClientIP(req, trusted))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "198.51.100.2", resolveClientIP(req, trusted))

	req.Header.Del("X-Real-IP")
	assert.Equal(t, "10.0.0.5", resolveClientIP(req, trusted))
}
