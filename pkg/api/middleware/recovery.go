package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rahilsk203/islamicai-sub002/pkg/api/response"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					requestID := GetRequestID(r.Context())
					if requestID == "" {
						requestID = "unknown"
					}

					response.Error(w,
						http.StatusInternalServerError,
						response.ErrCodeInternalServer,
						fmt.Sprintf("Internal server error: %v", err),
						requestID,
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
