package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/deungsanlog/gateway/internal/gateway"
	httperrors "github.com/deungsanlog/gateway/internal/http/errors"
	"github.com/deungsanlog/gateway/internal/metrics"
	"github.com/deungsanlog/gateway/internal/observability/logger"
	"github.com/deungsanlog/gateway/internal/token"
)

// HeaderAuthToken carries the raw session JWT, no Bearer prefix.
const HeaderAuthToken = "X-AUTH-TOKEN"

// Identity headers asserted by the gateway toward upstream services.
// Upstreams must only trust them on the gateway-internal network.
const (
	HeaderUserEmail = "X-USER-EMAIL"
	HeaderUserRole  = "X-USER-ROLE"
	HeaderUserID    = "X-USER-ID"
)

// WithAuth is the edge authentication filter. Public paths pass through
// with no token inspection. Protected paths require a valid session
// token in X-AUTH-TOKEN; the decoded identity is injected as trusted
// headers before the request continues toward the upstream.
//
// Inbound X-USER-* headers are dropped on every request, public or not.
// Most proxied service prefixes are public, so stripping only on the
// protected branch would let a client assert an identity to upstreams.
func WithAuth(policy *gateway.Policy, tokens *token.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(HeaderUserEmail)
			r.Header.Del(HeaderUserRole)
			r.Header.Del(HeaderUserID)

			if policy.IsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.From(r.Context()).With(logger.Layer("middleware"), logger.Op("WithAuth"))

			raw := strings.TrimSpace(r.Header.Get(HeaderAuthToken))
			if raw == "" {
				metrics.TokenValidations.WithLabelValues("missing").Inc()
				log.Warn("missing auth token", logger.Path(r.URL.Path))
				httperrors.WriteError(w, httperrors.ErrAuthFailed.WithMessage("missing authentication token"))
				return
			}

			if !tokens.Validate(raw) {
				metrics.TokenValidations.WithLabelValues("invalid").Inc()
				log.Warn("invalid auth token", logger.Path(r.URL.Path))
				httperrors.WriteError(w, httperrors.ErrAuthFailed.WithMessage("invalid or expired token"))
				return
			}

			claims, err := tokens.Decode(raw)
			if err != nil {
				metrics.TokenValidations.WithLabelValues("invalid").Inc()
				log.Warn("token claims undecodable", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrAuthFailed.WithMessage("invalid or expired token"))
				return
			}
			metrics.TokenValidations.WithLabelValues("ok").Inc()

			r.Header.Set(HeaderUserEmail, claims.Subject)
			r.Header.Set(HeaderUserRole, claims.Role)
			if claims.HasUserID {
				r.Header.Set(HeaderUserID, strconv.FormatInt(claims.UserID, 10))
			} else {
				log.Info("token carries no user id", logger.Email(claims.Subject))
			}

			next.ServeHTTP(w, r)
		})
	}
}
