package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/gateway"
	httperrors "github.com/deungsanlog/gateway/internal/http/errors"
)

// FallbackController serves the circuit-breaker fallback responses for
// the routed services.
type FallbackController struct {
	services map[string]struct{}
}

func NewFallbackController(routes []config.Route) *FallbackController {
	services := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		services[r.Name] = struct{}{}
	}
	return &FallbackController{services: services}
}

// Serve handles GET /fallback/{service}.
func (c *FallbackController) Serve(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	if _, ok := c.services[service]; !ok {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithMessage("unknown service"))
		return
	}
	gateway.FallbackHandler(service)(w, r)
}
