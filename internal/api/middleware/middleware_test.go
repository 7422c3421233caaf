package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string

	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("propagates client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})

	t.Run("generates when missing or unsafe", func(t *testing.T) {
		for _, header := range []string{"", "has space", strings.Repeat("x", maxRequestIDLength+1)} {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if header != "" {
				req.Header.Set(requestIDHeader, header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.NotEqual(t, header, seen)
			assert.Len(t, seen, 36)
			assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
		}
	})
}

func TestAuth(t *testing.T) {
	h := Auth("secret")(okHandler)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer secret", http.StatusOK},
		{"case-insensitive scheme", "bearer secret", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"empty key", "Bearer ", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/marketing/roas", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}

	t.Run("unset server key rejects everything", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/x", nil)
		req.Header.Set("Authorization", "Bearer anything")

		rec := httptest.NewRecorder()
		Auth("")(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type tooLargeRecorder struct{ calls int }

func (r *tooLargeRecorder) RecordRequestBodyTooLarge(context.Context) { r.calls++ }

func TestMaxBody(t *testing.T) {
	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			if assert.ErrorAs(t, err, &maxErr) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)

				return
			}
		}

		w.WriteHeader(http.StatusOK)
	})

	t.Run("under limit passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		recorder := &tooLargeRecorder{}
		MaxBody(10, recorder)(readAll).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, recorder.calls)
	})

	t.Run("over limit is reported once", func(t *testing.T) {
		rec := httptest.NewRecorder()
		recorder := &tooLargeRecorder{}
		body := strings.NewReader(strings.Repeat("x", 100))
		MaxBody(10, recorder)(readAll).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", body))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, 1, recorder.calls)
	})

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(strings.Repeat("x", 100))
		MaxBody(0, nil)(readAll).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", body))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type recordedRequest struct {
	method, route, class string
}

type fakeHTTPMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeHTTPMetrics) RecordRequest(_ context.Context, method, route, class string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, route, class})
}

func (f *fakeHTTPMetrics) RecordRequestBodyTooLarge(context.Context) {}

func TestMetrics(t *testing.T) {
	metrics := &fakeHTTPMetrics{}
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte("ok"))

			return
		}

		http.NotFound(w, r)
	})

	h := Metrics(metrics, "/health")(notFound)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/123", nil))

	require.Len(t, metrics.requests, 2)
	assert.Equal(t, recordedRequest{"GET", "/health", "2xx"}, metrics.requests[0])
	assert.Equal(t, recordedRequest{"GET", otherRoute, "4xx"}, metrics.requests[1])

	assert.Equal(t, "unknown", statusToClass(0))
	assert.Equal(t, "5xx", statusToClass(503))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(rate.NewLimiter(rate.Every(time.Hour), 2))(okHandler)

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/assistant/ask", nil))
		codes[i] = rec.Code

		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	t.Run("nil limiter disables", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RateLimit(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogging_PassesStatusThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
