package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
)

// deadlineWriter guards the real writer so that exactly one of the handler
// and the timeout gets to answer.
type deadlineWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	expired  bool
	answered bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired || dw.answered {
		return
	}
	dw.answered = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	dw.answered = true
	return dw.ResponseWriter.Write(b)
}

// expire reports whether the timeout may still write the response.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return !dw.answered
}

// RequestTimeout cancels the request context after timeout and answers 503
// unless the handler already started its response.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			var panicked any
			go func() {
				defer close(done)
				defer func() { panicked = recover() }()
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				// hand the panic back to Recovery on the serving goroutine
				if panicked != nil {
					panic(panicked)
				}
			case <-ctx.Done():
				if dw.expire() {
					_ = httputil.WriteError(w, apperrors.New("REQUEST_TIMEOUT", "Request timed out", http.StatusServiceUnavailable))
				}
			}
		})
	}
}
