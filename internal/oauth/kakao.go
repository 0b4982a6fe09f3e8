package oauth

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/identity"
)

var kakaoEndpoints = Endpoints{
	AuthURL:    "https://kauth.kakao.com/oauth/authorize",
	TokenURL:   "https://kauth.kakao.com/oauth/token",
	ProfileURL: "https://kapi.kakao.com/v2/user/me",
}

// NewKakao builds the Kakao client. Kakao requires the redirect URI
// percent-encoded in the consent URL and no scope parameter; email comes
// back inside kakao_account and is optional.
func NewKakao(cfg config.ProviderConfig) *Client {
	c := newClient(identity.ProviderKakao, cfg, kakaoEndpoints)
	c.authQuery = func(c *Client, _ string) string {
		return "client_id=" + c.cfg.ClientID +
			"&redirect_uri=" + url.QueryEscape(c.cfg.RedirectURI) +
			"&response_type=code" +
			"&prompt=login"
	}
	c.tokenForm = func(c *Client, code, _ string) url.Values {
		form := url.Values{}
		form.Set("grant_type", "authorization_code")
		form.Set("client_id", c.cfg.ClientID)
		form.Set("client_secret", c.cfg.ClientSecret)
		form.Set("redirect_uri", c.cfg.RedirectURI)
		form.Set("code", code)
		return form
	}
	c.checkProfile = checkKakaoProfile
	return c
}

func checkKakaoProfile(raw []byte) error {
	var p struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.New("malformed profile body")
	}
	if p.ID.String() == "" {
		return errors.New("profile missing id")
	}
	return nil
}
