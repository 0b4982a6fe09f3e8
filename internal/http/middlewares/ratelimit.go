package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/deungsanlog/gateway/internal/http/errors"
	"github.com/deungsanlog/gateway/internal/observability/logger"
	"github.com/deungsanlog/gateway/internal/rate"
)

// WithLoginRateLimit caps login attempts per client IP. Limiter errors
// fail open: a broken Redis must not lock every user out.
func WithLoginRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), "login:"+ClientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryIn.Seconds())))
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
