package controllers

import (
	"net/http"

	"github.com/deungsanlog/gateway/internal/cache"
	"github.com/deungsanlog/gateway/internal/http/helpers"
)

// HealthController serves liveness and readiness.
type HealthController struct {
	states cache.Client
}

func NewHealthController(states cache.Client) *HealthController {
	return &HealthController{states: states}
}

// Healthz reports process liveness.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness, including the state store backing login.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := c.states.Ping(r.Context()); err != nil {
		helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"cache":  "unreachable",
		})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
