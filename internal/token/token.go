// Package token owns the gateway's JWT signing secret and expiry policy.
// It issues session tokens at login and validates them on every request.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/deungsanlog/gateway/internal/identity"
)

// DefaultValidity is the token lifetime when none is configured. Tokens are
// never renewed; expiry forces a re-login.
const DefaultValidity = 24 * time.Hour

var (
	// ErrClaimDecode is returned by Decode for tokens that do not parse.
	// Decode is a caller contract: it is meant to run after Validate.
	ErrClaimDecode = errors.New("token: claim decode failed")

	// ErrNoRoles is returned by Issue when the role list is empty; every
	// session carries at least one role.
	ErrNoRoles = errors.New("token: at least one role required")
)

// SessionClaims is the typed view of the JWT payload. The wire format is a
// dynamic claim map; we decode into this struct once, at the boundary.
type SessionClaims struct {
	Subject   string // user email
	Role      string // roles[0], kept for single-role consumers
	Roles     []string
	UserID    int64
	HasUserID bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs and validates session JWTs (HMAC-SHA256). The secret is
// injected explicitly so tests can run with per-case secrets.
type Service struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewService(secret string, validity time.Duration) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Service{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}
}

// Issue builds a session JWT for a freshly logged-in user: sub=email,
// role=roles[0], the full roles list, the directory-assigned user id, and
// iat/exp per the configured validity.
func (s *Service) Issue(id identity.Identity, userID int64, roles []string) (string, error) {
	if len(roles) == 0 {
		return "", ErrNoRoles
	}
	now := s.now().UTC()
	claims := jwtv5.MapClaims{
		"sub":    id.Email,
		"role":   roles[0],
		"roles":  roles,
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.validity).Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Validate reports whether the token has a valid signature, structure and
// expiry. It never returns an error: any parse problem means false.
func (s *Service) Validate(token string) bool {
	_, err := s.parse(token)
	return err == nil
}

// Decode parses the token into typed SessionClaims. Call after Validate;
// an invalid token yields ErrClaimDecode.
func (s *Service) Decode(token string) (SessionClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrClaimDecode, err)
	}

	out := SessionClaims{
		Subject: stringClaim(claims, "sub"),
		Role:    stringClaim(claims, "role"),
		Roles:   stringSliceClaim(claims, "roles"),
	}
	if uid, ok := ExtractUserID(claims); ok {
		out.UserID = uid
		out.HasUserID = true
	}
	if iat, ok := numericClaim(claims, "iat"); ok {
		out.IssuedAt = time.Unix(iat, 0)
	}
	if exp, ok := numericClaim(claims, "exp"); ok {
		out.ExpiresAt = time.Unix(exp, 0)
	}
	return out, nil
}

func (s *Service) parse(token string) (jwtv5.MapClaims, error) {
	tok, err := jwtv5.Parse(token,
		func(t *jwtv5.Token) (any, error) { return s.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid_jwt")
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, errors.New("claims_type")
	}
	return claims, nil
}

func stringClaim(m jwtv5.MapClaims, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSliceClaim(m jwtv5.MapClaims, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func numericClaim(m jwtv5.MapClaims, key string) (int64, bool) {
	if f, ok := m[key].(float64); ok {
		return int64(f), true
	}
	return 0, false
}
