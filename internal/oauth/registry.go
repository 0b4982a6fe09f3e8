package oauth

import (
	"fmt"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/identity"
)

// Registry holds the configured provider clients. Built once at startup;
// read-only afterwards.
type Registry struct {
	clients map[identity.Provider]*Client
}

// NewRegistry wires one client per supported provider from config.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{clients: map[identity.Provider]*Client{
		identity.ProviderGoogle: NewGoogle(cfg.Providers.Google),
		identity.ProviderNaver:  NewNaver(cfg.Providers.Naver),
		identity.ProviderKakao:  NewKakao(cfg.Providers.Kakao),
	}}
}

// Get returns the client for a provider.
func (r *Registry) Get(p identity.Provider) (*Client, error) {
	c, ok := r.clients[p]
	if !ok {
		return nil, fmt.Errorf("oauth: provider not configured: %s", p)
	}
	return c, nil
}

// Replace swaps a provider client. Test hook for pointing a provider at
// mock endpoints.
func (r *Registry) Replace(p identity.Provider, c *Client) {
	r.clients[p] = c
}
