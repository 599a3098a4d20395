package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/rahilsk203/islamicai-sub002/pkg/api/response"
)

// RateLimit returns a middleware that throttles requests through a shared
// token bucket. Intended for expensive endpoints such as maintenance.
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				response.Error(w,
					http.StatusTooManyRequests,
					response.ErrCodeRateLimited,
					"Too many requests",
					GetRequestID(r.Context()),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
