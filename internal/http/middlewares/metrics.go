package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deungsanlog/gateway/internal/metrics"
)

// WithMetrics instruments requests with the prometheus collectors
// (counter, latency histogram, inflight gauge).
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			pathLabel := metrics.NormalizePath(r.URL.Path)

			metrics.HTTPInflight.WithLabelValues(method, pathLabel).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				metrics.HTTPInflight.WithLabelValues(method, pathLabel).Dec()
				metrics.HTTPRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

				status := rec.status
				if status == 0 {
					status = http.StatusOK
				}
				metrics.HTTPRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
