// Package oauth performs the two-step OAuth2 code exchange against the
// identity providers. One generic client is parameterized per provider by
// endpoint URLs, auth-query and token-form builders, and a profile check —
// the providers differ only in those details.
package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/identity"
)

// Endpoints are the provider's three URLs. Exported so tests can point a
// client at a local mock server.
type Endpoints struct {
	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// Client drives the login flow against one provider. Zero shared mutable
// state: safe for concurrent flows.
type Client struct {
	Endpoints Endpoints
	HTTP      *http.Client

	provider  identity.Provider
	cfg       config.ProviderConfig
	authQuery func(c *Client, state string) string
	tokenForm func(c *Client, code, state string) url.Values
	// checkProfile enforces the provider's required fields on the raw
	// user-info body; everything optional degrades later, in normalization.
	checkProfile func(raw []byte) error
}

func newClient(p identity.Provider, cfg config.ProviderConfig, eps Endpoints) *Client {
	return &Client{
		Endpoints: eps,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		provider:  p,
		cfg:       cfg,
	}
}

// Name returns the provider this client talks to.
func (c *Client) Name() identity.Provider { return c.provider }

// AuthCodeURL builds the consent URL the browser is redirected to. The
// query string is assembled per provider: scopes carry a literal %20 and
// only Kakao percent-encodes its redirect URI, matching what each provider
// console was registered with.
func (c *Client) AuthCodeURL(state string) string {
	return c.Endpoints.AuthURL + "?" + c.authQuery(c, state)
}

type tokenEnvelope struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCode POSTs the authorization code to the token endpoint and
// returns the provider access token. The token is used once, to fetch the
// profile, and then discarded.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (string, error) {
	form := c.tokenForm(c, code, state)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoints.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ExchangeError{Provider: c.provider, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &ExchangeError{Provider: c.provider, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ExchangeError{Provider: c.provider, Status: resp.StatusCode, Reason: "read body", Err: err}
	}

	var env tokenEnvelope
	if resp.StatusCode/100 != 2 {
		_ = json.Unmarshal(body, &env) // best effort: surface the provider's reason
		reason := strings.TrimSpace(env.Error + " " + env.ErrorDescription)
		if reason == "" {
			reason = "token endpoint rejected the code"
		}
		return "", &ExchangeError{Provider: c.provider, Status: resp.StatusCode, Reason: reason}
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", &ExchangeError{Provider: c.provider, Status: resp.StatusCode, Reason: "malformed token response", Err: err}
	}
	if env.AccessToken == "" {
		return "", &ExchangeError{Provider: c.provider, Status: resp.StatusCode, Reason: "token response missing access_token"}
	}
	return env.AccessToken, nil
}

// FetchProfile GETs the user-info endpoint with the access token and
// returns the raw JSON body after checking the provider's required fields.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoints.ProfileURL, nil)
	if err != nil {
		return nil, &ProfileError{Provider: c.provider, Reason: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &ProfileError{Provider: c.provider, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ProfileError{Provider: c.provider, Status: resp.StatusCode, Reason: "read body", Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return nil, &ProfileError{Provider: c.provider, Status: resp.StatusCode, Reason: "user-info endpoint rejected the token"}
	}
	if c.checkProfile != nil {
		if err := c.checkProfile(body); err != nil {
			return nil, &ProfileError{Provider: c.provider, Status: resp.StatusCode, Reason: err.Error()}
		}
	}
	return body, nil
}
