package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(method, path string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, path, body)
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLogInternalServerErrors_RecoversPanics(t *testing.T) {
	handler := LogInternalServerErrors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(handler, newRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode[ErrorResponse](t, rec).Error)
}

func TestStatusResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	srw := wrapStatusWriter(rec)
	assert.Same(t, srw, wrapStatusWriter(srw))

	_, err := srw.Write([]byte("ok"))
	require.NoError(t, err)
	srw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, srw.status)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	server := newTestServer(t, map[string]string{"ACCEPTED_ORIGINS": "https://site.example, http://localhost:3000"})

	t.Run("allowed preflight", func(t *testing.T) {
		req := newRequest(http.MethodOptions, "/api/projects", nil)
		req.Header.Set("Origin", "https://site.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := serve(server.handler, req)

		assert.Less(t, rec.Code, 300)
		assert.Equal(t, "https://site.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("blocked preflight", func(t *testing.T) {
		req := newRequest(http.MethodOptions, "/api/projects", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := serve(server.handler, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "request blocked by CORS policy", decode[ErrorResponse](t, rec).Error)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request from an allowed origin", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(server.handler, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	server := newTestServer(t, map[string]string{"RATE_LIMIT_REQUESTS": "3"})

	for i := 0; i < 3; i++ {
		rec := server.do(http.MethodGet, "/api/health", nil, "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := server.do(http.MethodGet, "/api/health", nil, "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", decode[ErrorResponse](t, rec).Error)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	t.Run("other clients keep their budget", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		assert.Equal(t, http.StatusOK, serve(server.handler, req).Code)
	})

	t.Run("forwarded address is used", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		assert.Equal(t, http.StatusOK, serve(server.handler, req).Code)
	})

	t.Run("pages outside the api are not limited", func(t *testing.T) {
		rec := server.do(http.MethodGet, "/admin", nil, "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestIPRateLimiter_Refill(t *testing.T) {
	limiter := newIPRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("a"))
	assert.True(t, limiter.allow("a"))
	assert.False(t, limiter.allow("a"))

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.allow("a"))
	assert.False(t, limiter.allow("a"))

	limiter.allow("b")
	now = now.Add(2 * time.Minute)
	limiter.allow("a")
	assert.NotContains(t, limiter.visitors, "b")
	assert.Contains(t, limiter.visitors, "a")
}
