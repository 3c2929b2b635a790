package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(5, 60)(handler)
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(1, 60)(handler)

		// First request should succeed
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		// Second request should be rate limited
		w = httptest.NewRecorder()
		handlerCalled = false
		rateLimitHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("window slides", func(t *testing.T) {
		now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
		m := NewRateLimitMiddleware()
		m.now = func() time.Time { return now }

		ok, _ := m.allow("10.0.0.1", 1, time.Minute)
		assert.True(t, ok)
		ok, _ = m.allow("10.0.0.1", 1, time.Minute)
		assert.False(t, ok)

		now = now.Add(61 * time.Second)
		ok, _ = m.allow("10.0.0.1", 1, time.Minute)
		assert.True(t, ok)
	})

	t.Run("idle clients are forgotten", func(t *testing.T) {
		now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
		m := NewRateLimitMiddleware()
		m.now = func() time.Time { return now }

		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			ok, _ := m.allow(ip, 5, time.Minute)
			assert.True(t, ok)
		}
		assert.Len(t, m.requests, 3)

		now = now.Add(30 * time.Second)
		m.allow("10.0.0.1", 5, time.Minute)
		assert.Len(t, m.requests, 3, "no sweep within the window")

		now = now.Add(45 * time.Second)
		ok, _ := m.allow("10.0.0.4", 5, time.Minute)
		assert.True(t, ok)
		assert.Len(t, m.requests, 2)
		assert.Contains(t, m.requests, "10.0.0.1")
		assert.Contains(t, m.requests, "10.0.0.4")
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:1", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1", "198.51.100.7"},
		{"remote addr", nil, "192.168.1.9:5555", "192.168.1.9"},
		{"ipv6 remote addr", nil, "[::1]:5555", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestLogging(t *testing.T) {
	var seenID string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/groups/G1/drivers", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/insights", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/insights", nil))
	assert.True(t, called)
}
