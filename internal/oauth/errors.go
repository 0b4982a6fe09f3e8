package oauth

import (
	"fmt"

	"github.com/deungsanlog/gateway/internal/identity"
)

// ExchangeError covers failures of the authorization-code -> access-token
// step: provider outage, rejected code, malformed token response.
type ExchangeError struct {
	Provider identity.Provider
	Status   int // HTTP status from the token endpoint, 0 for transport errors
	Reason   string
	Err      error
}

func (e *ExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s token exchange failed: http %d: %s", e.Provider, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s token exchange failed: %s", e.Provider, e.Reason)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// ProfileError covers failures of the access-token -> user-info step:
// expired token, provider outage, or a body missing required fields.
type ProfileError struct {
	Provider identity.Provider
	Status   int
	Reason   string
	Err      error
}

func (e *ProfileError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s profile fetch failed: http %d: %s", e.Provider, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s profile fetch failed: %s", e.Provider, e.Reason)
}

func (e *ProfileError) Unwrap() error { return e.Err }
