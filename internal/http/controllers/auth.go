// Package controllers holds the gateway-local HTTP endpoints.
package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/deungsanlog/gateway/internal/http/errors"
	"github.com/deungsanlog/gateway/internal/http/helpers"
	"github.com/deungsanlog/gateway/internal/http/middlewares"
	svc "github.com/deungsanlog/gateway/internal/http/services/auth"
	"github.com/deungsanlog/gateway/internal/identity"
	"github.com/deungsanlog/gateway/internal/observability/logger"
)

// AuthController exposes the social login endpoints.
type AuthController struct {
	service     svc.Service
	frontendURI string
}

func NewAuthController(service svc.Service, frontendURI string) *AuthController {
	return &AuthController{service: service, frontendURI: frontendURI}
}

// Start handles GET /auth/{provider} and redirects the browser to the
// provider's consent page.
func (c *AuthController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Start"))

	provider, err := identity.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		log.Warn("unknown provider", logger.String("provider", chi.URLParam(r, "provider")))
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("unknown provider"))
		return
	}

	consentURL, err := c.service.Start(ctx, provider)
	if err != nil {
		log.Error("login start failed", logger.Provider(string(provider)), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal.WithMessage("could not start login"))
		return
	}

	helpers.Redirect(w, r, consentURL)
}

// Callback handles GET /auth/{provider}/callback. Whatever happens, the
// browser ends up back at the front-end: with ?token= on success, with
// ?error= on any failure.
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Callback"))

	provider, err := identity.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		c.redirectError(w, r, "unknown provider")
		return
	}

	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		// The provider itself reported a consent failure.
		log.Warn("provider returned error", logger.Provider(string(provider)), logger.String("provider_error", errCode))
		c.redirectError(w, r, "login was cancelled or rejected")
		return
	}

	jwt, err := c.service.Callback(ctx, provider, q.Get("code"), q.Get("state"))
	if err != nil {
		log.Warn("login callback failed", logger.Provider(string(provider)), logger.Err(err))
		c.redirectError(w, r, err.Error())
		return
	}

	helpers.Redirect(w, r, c.frontendURI+"?token="+url.QueryEscape(jwt))
}

// Verify handles GET /auth/verify. It answers 200 with the asserted
// identity for a valid X-AUTH-TOKEN and 401 otherwise.
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.Header.Get(middlewares.HeaderAuthToken))

	user, err := c.service.Verify(raw)
	if err != nil {
		helpers.WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"valid":   false,
			"message": "invalid or expired token",
		})
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  user,
	})
}

func (c *AuthController) redirectError(w http.ResponseWriter, r *http.Request, msg string) {
	helpers.Redirect(w, r, c.frontendURI+"?error="+url.QueryEscape(msg))
}
