// Package auth contains the login orchestrator: the service driving the
// social login flow from consent redirect to issued session token.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/deungsanlog/gateway/internal/cache"
	"github.com/deungsanlog/gateway/internal/directory"
	"github.com/deungsanlog/gateway/internal/identity"
	"github.com/deungsanlog/gateway/internal/oauth"
	"github.com/deungsanlog/gateway/internal/token"
)

var (
	ErrUnknownProvider = errors.New("auth: unknown provider")
	ErrMissingCode     = errors.New("auth: missing authorization code")
	// ErrBadState covers a missing, expired, or replayed state nonce.
	ErrBadState = errors.New("auth: state verification failed")
)

// DefaultRole is the single role granted on social login.
const DefaultRole = "ROLE_USER"

// VerifiedUser is the identity reported by Verify.
type VerifiedUser struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Service drives the login flow.
type Service interface {
	// Start returns the provider consent URL the browser is redirected to.
	Start(ctx context.Context, provider identity.Provider) (string, error)
	// Callback runs the full exchange chain and returns the session JWT.
	Callback(ctx context.Context, provider identity.Provider, code, state string) (string, error)
	// Verify checks a session token and reports the identity it asserts.
	Verify(raw string) (VerifiedUser, error)
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Providers *oauth.Registry
	Tokens    *token.Service
	Directory *directory.Client
	// States stores the per-flow nonce between Start and Callback.
	States   cache.Client
	StateTTL time.Duration
}

type service struct {
	providers *oauth.Registry
	tokens    *token.Service
	directory *directory.Client
	states    cache.Client
	stateTTL  time.Duration
}

func NewService(d Deps) Service {
	ttl := d.StateTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		providers: d.Providers,
		tokens:    d.Tokens,
		directory: d.Directory,
		states:    d.States,
		stateTTL:  ttl,
	}
}
