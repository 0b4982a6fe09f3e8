package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/deungsanlog/gateway/internal/cache"
	"github.com/deungsanlog/gateway/internal/identity"
	"github.com/deungsanlog/gateway/internal/metrics"
	"github.com/deungsanlog/gateway/internal/observability/logger"
)

const stateKeyPrefix = "oauth:state:"

// statefulProvider reports whether the provider's flow carries a state
// parameter that must round-trip through the consent redirect.
func statefulProvider(p identity.Provider) bool {
	return p == identity.ProviderNaver
}

func (s *service) Start(ctx context.Context, provider identity.Provider) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.Start"), logger.Provider(string(provider)))

	client, err := s.providers.Get(provider)
	if err != nil {
		return "", ErrUnknownProvider
	}

	var state string
	if statefulProvider(provider) {
		state = uuid.NewString()
		if err := s.states.Set(ctx, stateKeyPrefix+state, string(provider), s.stateTTL); err != nil {
			log.Error("state store unavailable", logger.Err(err))
			return "", err
		}
	}

	url := client.AuthCodeURL(state)
	log.Info("login started")
	return url, nil
}

func (s *service) Callback(ctx context.Context, provider identity.Provider, code, state string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.Callback"), logger.Provider(string(provider)))

	client, err := s.providers.Get(provider)
	if err != nil {
		return "", ErrUnknownProvider
	}
	if code == "" {
		return "", ErrMissingCode
	}

	if statefulProvider(provider) {
		if err := s.consumeState(ctx, provider, state); err != nil {
			metrics.LoginAttempts.WithLabelValues(string(provider), "bad_state").Inc()
			log.Warn("state verification failed", logger.Err(err))
			return "", ErrBadState
		}
	}

	accessToken, err := client.ExchangeCode(ctx, code, state)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(provider), "exchange_failed").Inc()
		log.Warn("code exchange failed", logger.Err(err))
		return "", err
	}

	raw, err := client.FetchProfile(ctx, accessToken)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(provider), "profile_failed").Inc()
		log.Warn("profile fetch failed", logger.Err(err))
		return "", err
	}

	id, err := identity.Normalize(provider, raw)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(provider), "normalize_failed").Inc()
		log.Warn("profile normalization failed", logger.Err(err))
		return "", err
	}

	user, err := s.directory.Upsert(ctx, id)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(provider), "upsert_failed").Inc()
		log.Warn("directory upsert failed", logger.Err(err))
		return "", err
	}

	jwt, err := s.tokens.Issue(id, user.ID, []string{DefaultRole})
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(provider), "issue_failed").Inc()
		log.Error("token issue failed", logger.Err(err))
		return "", err
	}

	metrics.LoginAttempts.WithLabelValues(string(provider), "issued").Inc()
	log.Info("login completed", logger.Email(id.Email), logger.UserID(user.ID))
	return jwt, nil
}

// consumeState verifies the nonce exists, belongs to the provider, and
// removes it so a replayed callback fails.
func (s *service) consumeState(ctx context.Context, provider identity.Provider, state string) error {
	if state == "" {
		return ErrBadState
	}
	stored, err := cache.TakeOnce(ctx, s.states, stateKeyPrefix+state)
	if err != nil {
		return err
	}
	if stored != string(provider) {
		return ErrBadState
	}
	return nil
}
