package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingExternalID is the only hard failure of normalization: a profile
// without the provider's unique user id is unusable.
var ErrMissingExternalID = errors.New("identity: profile has no external id")

// Normalize converts a raw provider user-info payload into an Identity.
// Every missing optional field degrades to a deterministic default; only a
// missing external id fails.
func Normalize(p Provider, raw []byte) (Identity, error) {
	switch p {
	case ProviderGoogle:
		return normalizeGoogle(raw)
	case ProviderNaver:
		return normalizeNaver(raw)
	case ProviderKakao:
		return normalizeKakao(raw)
	}
	return Identity{}, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
}

type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func normalizeGoogle(raw []byte) (Identity, error) {
	var p googleProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Identity{}, fmt.Errorf("identity: google profile: %w", err)
	}
	if p.ID == "" {
		return Identity{}, ErrMissingExternalID
	}
	return Identity{
		Provider:    ProviderGoogle,
		ExternalID:  p.ID,
		Email:       p.Email,
		DisplayName: p.Name,
		AvatarURL:   p.Picture,
	}, nil
}

type naverProfile struct {
	Response struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Name         string `json:"name"`
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

func normalizeNaver(raw []byte) (Identity, error) {
	var p naverProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Identity{}, fmt.Errorf("identity: naver profile: %w", err)
	}
	r := p.Response
	if r.ID == "" {
		return Identity{}, ErrMissingExternalID
	}
	// Naver exposes both nickname and legal name; nickname wins.
	name := r.Nickname
	if name == "" {
		name = r.Name
	}
	return Identity{
		Provider:    ProviderNaver,
		ExternalID:  r.ID,
		Email:       r.Email,
		DisplayName: name,
		AvatarURL:   r.ProfileImage,
	}, nil
}

type kakaoProfile struct {
	ID      json.Number `json:"id"`
	Account struct {
		Email               string `json:"email"`
		EmailNeedsAgreement *bool  `json:"email_needs_agreement"`
		IsEmailValid        *bool  `json:"is_email_valid"`
		IsEmailVerified     *bool  `json:"is_email_verified"`
		Profile             struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func normalizeKakao(raw []byte) (Identity, error) {
	var p kakaoProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Identity{}, fmt.Errorf("identity: kakao profile: %w", err)
	}
	id := p.ID.String()
	if id == "" || id == "0" {
		return Identity{}, ErrMissingExternalID
	}

	email := p.Account.Email
	if !kakaoEmailUsable(p) {
		// Deterministic placeholder so the directory key stays stable for
		// accounts that never expose a verified email.
		email = "kakao_" + id + "@kakao.local"
	}

	name := strings.TrimSpace(p.Account.Profile.Nickname)
	if name == "" {
		name = "카카오사용자_" + id
	}

	return Identity{
		Provider:    ProviderKakao,
		ExternalID:  id,
		Email:       email,
		DisplayName: name,
		AvatarURL:   p.Account.Profile.ProfileImageURL,
	}, nil
}

// kakaoEmailUsable reports whether the Kakao account email can be trusted:
// present, consented, valid and verified. Absent flags count as consent
// (Kakao omits them for accounts created before the consent flow existed).
func kakaoEmailUsable(p kakaoProfile) bool {
	if strings.TrimSpace(p.Account.Email) == "" {
		return false
	}
	if p.Account.EmailNeedsAgreement != nil && *p.Account.EmailNeedsAgreement {
		return false
	}
	if p.Account.IsEmailValid != nil && !*p.Account.IsEmailValid {
		return false
	}
	if p.Account.IsEmailVerified != nil && !*p.Account.IsEmailVerified {
		return false
	}
	return true
}
