package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rahilsk203/islamicai-sub002/pkg/api/response"
)

// Timeout returns a middleware that enforces a request timeout.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					response.Error(w,
						http.StatusGatewayTimeout,
						response.ErrCodeGatewayTimeout,
						"Request timeout exceeded",
						GetRequestID(r.Context()),
					)
				}
			}
		})
	}
}
