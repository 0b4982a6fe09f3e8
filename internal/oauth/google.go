package oauth

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/identity"
)

var googleEndpoints = Endpoints{
	AuthURL:    "https://accounts.google.com/o/oauth2/auth",
	TokenURL:   "https://oauth2.googleapis.com/token",
	ProfileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
}

// NewGoogle builds the Google client. Google takes the redirect URI
// verbatim and a space-separated scope encoded as %20.
func NewGoogle(cfg config.ProviderConfig) *Client {
	c := newClient(identity.ProviderGoogle, cfg, googleEndpoints)
	c.authQuery = func(c *Client, _ string) string {
		return "client_id=" + c.cfg.ClientID +
			"&redirect_uri=" + c.cfg.RedirectURI +
			"&scope=email%20profile" +
			"&response_type=code" +
			"&access_type=offline"
	}
	c.tokenForm = func(c *Client, code, _ string) url.Values {
		form := url.Values{}
		form.Set("client_id", c.cfg.ClientID)
		form.Set("client_secret", c.cfg.ClientSecret)
		form.Set("code", code)
		form.Set("grant_type", "authorization_code")
		form.Set("redirect_uri", c.cfg.RedirectURI)
		return form
	}
	c.checkProfile = checkGoogleProfile
	return c
}

func checkGoogleProfile(raw []byte) error {
	var p struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.New("malformed profile body")
	}
	if p.ID == "" {
		return errors.New("profile missing id")
	}
	if p.Email == "" {
		return errors.New("profile missing email")
	}
	return nil
}
