package oauth

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/identity"
)

var naverEndpoints = Endpoints{
	AuthURL:    "https://nid.naver.com/oauth2.0/authorize",
	TokenURL:   "https://nid.naver.com/oauth2.0/token",
	ProfileURL: "https://openapi.naver.com/v1/nid/me",
}

// NewNaver builds the Naver client. Naver is the one provider that carries
// the state parameter through the whole flow: it goes into the consent URL
// and must be echoed back in the token exchange form. The token form has no
// redirect_uri.
func NewNaver(cfg config.ProviderConfig) *Client {
	c := newClient(identity.ProviderNaver, cfg, naverEndpoints)
	c.authQuery = func(c *Client, state string) string {
		return "client_id=" + c.cfg.ClientID +
			"&redirect_uri=" + c.cfg.RedirectURI +
			"&scope=name%20email" +
			"&response_type=code" +
			"&state=" + url.QueryEscape(state) +
			"&auth_type=reprompt"
	}
	c.tokenForm = func(c *Client, code, state string) url.Values {
		form := url.Values{}
		form.Set("client_id", c.cfg.ClientID)
		form.Set("client_secret", c.cfg.ClientSecret)
		form.Set("code", code)
		form.Set("state", state)
		form.Set("grant_type", "authorization_code")
		return form
	}
	c.checkProfile = checkNaverProfile
	return c
}

func checkNaverProfile(raw []byte) error {
	var p struct {
		Response struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"response"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.New("malformed profile body")
	}
	if p.Response.ID == "" {
		return errors.New("profile missing response.id")
	}
	if p.Response.Email == "" {
		return errors.New("profile missing response.email")
	}
	return nil
}
