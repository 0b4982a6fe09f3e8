package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deungsanlog/gateway/internal/cache"
	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/directory"
	"github.com/deungsanlog/gateway/internal/identity"
	"github.com/deungsanlog/gateway/internal/oauth"
	"github.com/deungsanlog/gateway/internal/token"
)

// loginFixture wires the orchestrator against mock provider and directory
// servers.
type loginFixture struct {
	svc    Service
	tokens *token.Service
	states cache.Client

	tokenCalls     int
	profileCalls   int
	directoryCalls int
}

func newLoginFixture(t *testing.T, tokenStatus int, profileBody string) *loginFixture {
	t.Helper()
	f := &loginFixture{}

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.tokenCalls++
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok1"}`))
	}))
	t.Cleanup(tokenSrv.Close)

	profileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.profileCalls++
		_, _ = w.Write([]byte(profileBody))
	}))
	t.Cleanup(profileSrv.Close)

	dirSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.directoryCalls++
		var req directory.UpsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(directory.User{
			ID:       42,
			Email:    req.Email,
			Nickname: req.Nickname,
		})
	}))
	t.Cleanup(dirSrv.Close)

	cfg := &config.Config{}
	for _, p := range []*config.ProviderConfig{&cfg.Providers.Google, &cfg.Providers.Naver, &cfg.Providers.Kakao} {
		p.ClientID = "cid"
		p.ClientSecret = "csec"
		p.RedirectURI = "http://localhost:8080/auth/cb"
	}

	registry := oauth.NewRegistry(cfg)
	for _, p := range []identity.Provider{identity.ProviderGoogle, identity.ProviderNaver, identity.ProviderKakao} {
		client, err := registry.Get(p)
		require.NoError(t, err)
		client.Endpoints.TokenURL = tokenSrv.URL
		client.Endpoints.ProfileURL = profileSrv.URL
	}

	f.tokens = token.NewService("login-test-secret", time.Hour)
	f.states = cache.NewMemory(time.Minute)
	f.svc = NewService(Deps{
		Providers: registry,
		Tokens:    f.tokens,
		Directory: directory.NewClient(dirSrv.URL, 2*time.Second),
		States:    f.states,
		StateTTL:  time.Minute,
	})
	return f
}

func TestCallbackGoogleEndToEnd(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"id":"g1","email":"a@x.com","name":"Alice"}`)

	jwt, err := f.svc.Callback(context.Background(), identity.ProviderGoogle, "abc123", "")
	require.NoError(t, err)

	claims, err := f.tokens.Decode(jwt)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "ROLE_USER", claims.Role)
	assert.True(t, claims.HasUserID)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestCallbackExchangeFailureStopsChain(t *testing.T) {
	f := newLoginFixture(t, http.StatusBadRequest, `{"id":"g1","email":"a@x.com"}`)

	_, err := f.svc.Callback(context.Background(), identity.ProviderGoogle, "stale", "")

	var xerr *oauth.ExchangeError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, 1, f.tokenCalls)
	assert.Zero(t, f.profileCalls, "profile endpoint must not be called after a failed exchange")
	assert.Zero(t, f.directoryCalls, "directory must not be called after a failed exchange")
}

func TestCallbackMissingCode(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"id":"g1","email":"a@x.com"}`)

	_, err := f.svc.Callback(context.Background(), identity.ProviderGoogle, "", "")
	assert.ErrorIs(t, err, ErrMissingCode)
	assert.Zero(t, f.tokenCalls)
}

func TestCallbackUnknownProvider(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{}`)

	_, err := f.svc.Callback(context.Background(), identity.Provider("github"), "abc", "")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestStartGoogleBuildsConsentURL(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{}`)

	consentURL, err := f.svc.Start(context.Background(), identity.ProviderGoogle)
	require.NoError(t, err)
	assert.Contains(t, consentURL, "accounts.google.com")
	assert.Contains(t, consentURL, "client_id=cid")
}

func TestNaverStateRoundTrip(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK,
		`{"response":{"id":"n1","email":"b@naver.com","nickname":"chulsoo"}}`)
	ctx := context.Background()

	consentURL, err := f.svc.Start(ctx, identity.ProviderNaver)
	require.NoError(t, err)

	parsed, err := url.Parse(consentURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state, "naver consent URL must carry a per-flow state")

	jwt, err := f.svc.Callback(ctx, identity.ProviderNaver, "code-1", state)
	require.NoError(t, err)

	claims, err := f.tokens.Decode(jwt)
	require.NoError(t, err)
	assert.Equal(t, "b@naver.com", claims.Subject)
}

func TestNaverStateRejectedWhenWrong(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"response":{"id":"n1","email":"b@naver.com"}}`)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, identity.ProviderNaver)
	require.NoError(t, err)

	_, err = f.svc.Callback(ctx, identity.ProviderNaver, "code-1", "forged-state")
	assert.ErrorIs(t, err, ErrBadState)
	assert.Zero(t, f.tokenCalls, "exchange must not run on a bad state")
}

func TestNaverStateNotReplayable(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"response":{"id":"n1","email":"b@naver.com"}}`)
	ctx := context.Background()

	consentURL, err := f.svc.Start(ctx, identity.ProviderNaver)
	require.NoError(t, err)
	parsed, _ := url.Parse(consentURL)
	state := parsed.Query().Get("state")

	_, err = f.svc.Callback(ctx, identity.ProviderNaver, "code-1", state)
	require.NoError(t, err)

	_, err = f.svc.Callback(ctx, identity.ProviderNaver, "code-2", state)
	assert.ErrorIs(t, err, ErrBadState, "a consumed state must not be accepted again")
}

func TestNaverStateMissing(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"response":{"id":"n1","email":"b@naver.com"}}`)

	_, err := f.svc.Callback(context.Background(), identity.ProviderNaver, "code-1", "")
	assert.ErrorIs(t, err, ErrBadState)
}

func TestCallbackKakaoSynthesizedEmail(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"id":9001,"kakao_account":{"profile":{"nickname":""}}}`)

	jwt, err := f.svc.Callback(context.Background(), identity.ProviderKakao, "code-k", "")
	require.NoError(t, err)

	claims, err := f.tokens.Decode(jwt)
	require.NoError(t, err)
	assert.Equal(t, "kakao_9001@kakao.local", claims.Subject)
}

func TestVerify(t *testing.T) {
	f := newLoginFixture(t, http.StatusOK, `{"id":"g1","email":"a@x.com","name":"Alice"}`)

	jwt, err := f.svc.Callback(context.Background(), identity.ProviderGoogle, "abc123", "")
	require.NoError(t, err)

	user, err := f.svc.Verify(jwt)
	require.NoError(t, err)
	assert.Equal(t, VerifiedUser{ID: 42, Email: "a@x.com", Role: "ROLE_USER"}, user)

	_, err = f.svc.Verify("broken")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = f.svc.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
