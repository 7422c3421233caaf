package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

// RequestBodyTooLargeRecorder records requests rejected for exceeding the body limit.
type RequestBodyTooLargeRecorder interface {
	RecordRequestBodyTooLarge(ctx context.Context)
}

// MaxBody caps request bodies at maxBytes. Reads past the limit fail with *http.MaxBytesError,
// which handlers turn into 413. recorder may be nil; it is called at most once per request.
// maxBytes <= 0 disables the limit.
func MaxBody(maxBytes int64, recorder RequestBodyTooLargeRecorder) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)

				return
			}

			body := &limitedBody{ReadCloser: http.MaxBytesReader(w, r.Body, maxBytes)}
			if recorder != nil {
				ctx := r.Context()
				body.onExceeded = func() { recorder.RecordRequestBodyTooLarge(ctx) }
			}

			r.Body = body
			next.ServeHTTP(w, r)
		})
	}
}

type limitedBody struct {
	io.ReadCloser

	once       sync.Once
	onExceeded func()
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)

	var maxBytesErr *http.MaxBytesError
	if err != nil && b.onExceeded != nil && errors.As(err, &maxBytesErr) {
		b.once.Do(b.onExceeded)
	}

	//nolint:wrapcheck // io.Reader contract: io.EOF must be returned unwrapped
	return n, err
}
