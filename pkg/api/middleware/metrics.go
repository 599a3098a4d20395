package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MetricsRecorder records HTTP request metrics.
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	IncActiveConnections()
	DecActiveConnections()
}

// Metrics returns a middleware that records request metrics.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			recorder.IncActiveConnections()
			defer recorder.DecActiveConnections()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			recorder.RecordHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(wrapped.statusCode),
				time.Since(start),
			)
		})
	}
}

// normalizePath collapses path parameters to keep metric cardinality bounded.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i > 0 && isParamSegment(parts[i-1]) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isParamSegment(prev string) bool {
	switch prev {
	case "sessions", "users":
		return true
	}
	return false
}
