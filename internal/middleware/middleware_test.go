package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/model"
)

type stubAuthenticator struct {
	token  string
	claims model.AuthClaims
}

func (s stubAuthenticator) Authenticate(raw string) (model.AuthClaims, error) {
	if raw != s.token {
		return model.AuthClaims{}, model.ErrTokenInvalid
	}
	return s.claims, nil
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSessionCookieAttributes(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		c := NewSessionCookie("accessToken", ".example.com", true, 15*time.Minute)

		set := httptest.NewRecorder()
		c.Set(set, "tok")
		cleared := httptest.NewRecorder()
		c.Clear(cleared)

		a, b := findCookie(t, set, "accessToken"), findCookie(t, cleared, "accessToken")
		assert.Equal(t, "tok", a.Value)
		assert.Equal(t, 900, a.MaxAge)
		assert.True(t, a.HttpOnly)
		assert.True(t, a.Secure)
		assert.Equal(t, http.SameSiteNoneMode, a.SameSite)
		assert.Equal(t, "example.com", a.Domain)

		assert.Empty(t, b.Value)
		assert.Negative(t, b.MaxAge)
		assert.Equal(t, a.Domain, b.Domain)
		assert.Equal(t, a.Path, b.Path)
		assert.Equal(t, a.SameSite, b.SameSite)
		assert.Equal(t, a.Secure, b.Secure)
		assert.Equal(t, a.HttpOnly, b.HttpOnly)
	})

	t.Run("development", func(t *testing.T) {
		c := NewSessionCookie("accessToken", ".example.com", false, time.Minute)
		rec := httptest.NewRecorder()
		c.Set(rec, "tok")

		got := findCookie(t, rec, "accessToken")
		assert.False(t, got.Secure)
		assert.Equal(t, http.SameSiteLaxMode, got.SameSite)
		assert.Empty(t, got.Domain)
	})

	t.Run("read", func(t *testing.T) {
		c := NewSessionCookie("accessToken", "", false, time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, c.Read(req))
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "abc"})
		assert.Equal(t, "abc", c.Read(req))
	})
}

func TestRequireAuth(t *testing.T) {
	cookie := NewSessionCookie("accessToken", "", false, time.Minute)
	claims := model.AuthClaims{UserID: "u1", Role: model.RoleUser}
	mw := NewAuthMiddleware(stubAuthenticator{token: "good", claims: claims}, cookie)

	var seen model.AuthClaims
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bad bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: "good"}) }, http.StatusNoContent},
		{"cookie wins over header", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "accessToken", Value: "good"})
			r.Header.Set("Authorization", "Bearer nope")
		}, http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = model.AuthClaims{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusNoContent {
				assert.Equal(t, "u1", seen.UserID)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	mw := NewAuthMiddleware(stubAuthenticator{}, SessionCookie{Name: "accessToken"})
	handler := mw.RequireRoles(model.RoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithClaims(req.Context(), model.AuthClaims{Role: model.RoleUser})))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithClaims(req.Context(), model.AuthClaims{Role: model.RoleAdmin})))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	handler := Logging(Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLoggingKeepsRequestID(t *testing.T) {
	var fromCtx string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", fromCtx)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecurityHeaders(false)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORSAllowsCredentials(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsUseRoutePattern(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(metrics.Handler)
	r.Get("/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", metrics.Exposition())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",route="/projects/{id}",status="418"} 1`), body)
}

func TestTimeout(t *testing.T) {
	handler := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_TIMEOUT")
}
