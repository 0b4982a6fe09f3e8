// Package router assembles the chi router: middleware chain, gateway
// endpoints, and the proxied service routes. Route registration and the
// auth filter consume the same policy table.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deungsanlog/gateway/internal/gateway"
	"github.com/deungsanlog/gateway/internal/http/controllers"
	httperrors "github.com/deungsanlog/gateway/internal/http/errors"
	"github.com/deungsanlog/gateway/internal/http/middlewares"
	"github.com/deungsanlog/gateway/internal/rate"
	"github.com/deungsanlog/gateway/internal/token"
)

// Deps carries everything the router mounts.
type Deps struct {
	Auth     *controllers.AuthController
	Health   *controllers.HealthController
	Fallback *controllers.FallbackController

	Policy  *gateway.Policy
	Proxies *gateway.ProxySet
	Tokens  *token.Service

	LoginLimiter rate.Limiter
	Metrics      http.Handler

	CORSAllowedOrigins []string
}

// New builds the gateway handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/verify", d.Auth.Verify)

		limited := r.With(middlewares.WithLoginRateLimit(d.LoginLimiter))
		limited.Get("/{provider}", d.Auth.Start)
		limited.Get("/{provider}/callback", d.Auth.Callback)
	})

	r.Get("/fallback/{service}", d.Fallback.Serve)

	// Anything the gateway endpoints do not claim is resolved against the
	// proxy route table, first match wins. Unrouted paths get the JSON 404.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if _, handler, ok := d.Proxies.Match(req.URL.Path); ok {
			handler.ServeHTTP(w, req)
			return
		}
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithRecover(),
		middlewares.WithCORS(d.CORSAllowedOrigins),
		middlewares.WithMetrics(),
		middlewares.WithAuth(d.Policy, d.Tokens),
	)
}
