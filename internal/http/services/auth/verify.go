package auth

import "errors"

// ErrInvalidToken is returned by Verify for any token that fails
// validation or decoding.
var ErrInvalidToken = errors.New("auth: invalid token")

func (s *service) Verify(raw string) (VerifiedUser, error) {
	if raw == "" || !s.tokens.Validate(raw) {
		return VerifiedUser{}, ErrInvalidToken
	}
	claims, err := s.tokens.Decode(raw)
	if err != nil {
		return VerifiedUser{}, ErrInvalidToken
	}
	u := VerifiedUser{Email: claims.Subject, Role: claims.Role}
	if claims.HasUserID {
		u.ID = claims.UserID
	}
	return u, nil
}
