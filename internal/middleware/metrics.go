package middleware

import (
	"net/http"
	"strconv"
	"time"

	"shiptrack-graphql/internal/observability"
)

// MetricsMiddleware records request counts and latency per path.
func MetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	if metrics == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			metrics.RequestsTotal.WithLabelValues(path, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		})
	}
}
