// Package identity normalizes heterogeneous provider profiles into one
// canonical federated identity record.
package identity

import (
	"errors"
	"fmt"
)

// Provider is one of the supported OAuth2 identity providers.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderNaver  Provider = "naver"
	ProviderKakao  Provider = "kakao"
)

// ErrUnknownProvider is returned for any provider name outside the
// supported set.
var ErrUnknownProvider = errors.New("identity: unknown provider")

// ParseProvider validates a provider name taken from a request path.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGoogle, ProviderNaver, ProviderKakao:
		return Provider(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Identity is the canonical identity tuple produced from a raw provider
// profile. It lives only for the duration of one login callback; the user
// directory owns persistence.
//
// Email and DisplayName are never empty: providers that withhold them get
// deterministic placeholders (see Normalize). AvatarURL may be empty.
type Identity struct {
	Provider    Provider
	ExternalID  string
	Email       string
	DisplayName string
	AvatarURL   string
}
