package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deungsanlog/gateway/internal/config"
)

func testProviderConfig() config.ProviderConfig {
	return config.ProviderConfig{
		ClientID:     "cid",
		ClientSecret: "csec",
		RedirectURI:  "http://localhost:8080/auth/cb",
	}
}

func TestGoogleAuthCodeURL(t *testing.T) {
	c := NewGoogle(testProviderConfig())
	got := c.AuthCodeURL("")

	if !strings.HasPrefix(got, "https://accounts.google.com/o/oauth2/auth?") {
		t.Errorf("unexpected base: %s", got)
	}
	for _, part := range []string{
		"client_id=cid",
		"redirect_uri=http://localhost:8080/auth/cb",
		"scope=email%20profile",
		"response_type=code",
		"access_type=offline",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("URL %q missing %q", got, part)
		}
	}
}

func TestNaverAuthCodeURLCarriesState(t *testing.T) {
	c := NewNaver(testProviderConfig())
	got := c.AuthCodeURL("st-123")

	for _, part := range []string{"state=st-123", "auth_type=reprompt", "scope=name%20email"} {
		if !strings.Contains(got, part) {
			t.Errorf("URL %q missing %q", got, part)
		}
	}
}

func TestKakaoAuthCodeURLEncodesRedirect(t *testing.T) {
	c := NewKakao(testProviderConfig())
	got := c.AuthCodeURL("")

	if !strings.Contains(got, "redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fauth%2Fcb") {
		t.Errorf("redirect_uri not percent-encoded: %s", got)
	}
	if !strings.Contains(got, "prompt=login") {
		t.Errorf("URL %q missing prompt=login", got)
	}
	if strings.Contains(got, "scope=") {
		t.Errorf("kakao consent URL must not carry a scope: %s", got)
	}
}

func TestExchangeCodeSuccess(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"client_id":  r.PostFormValue("client_id"),
			"code":       r.PostFormValue("code"),
			"grant_type": r.PostFormValue("grant_type"),
			"state":      r.PostFormValue("state"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok1","token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := NewNaver(testProviderConfig())
	c.Endpoints.TokenURL = srv.URL

	tok, err := c.ExchangeCode(context.Background(), "abc123", "st-1")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tok != "tok1" {
		t.Errorf("token = %q, want tok1", tok)
	}
	if gotForm["code"] != "abc123" || gotForm["state"] != "st-1" || gotForm["grant_type"] != "authorization_code" {
		t.Errorf("form = %v", gotForm)
	}
}

func TestExchangeCodeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer srv.Close()

	c := NewGoogle(testProviderConfig())
	c.Endpoints.TokenURL = srv.URL

	_, err := c.ExchangeCode(context.Background(), "stale", "")
	var xerr *ExchangeError
	if !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *ExchangeError", err)
	}
	if xerr.Status != http.StatusBadRequest || !strings.Contains(xerr.Reason, "invalid_grant") {
		t.Errorf("exchange error = %+v", xerr)
	}
}

func TestExchangeCodeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewGoogle(testProviderConfig())
	c.Endpoints.TokenURL = srv.URL

	var xerr *ExchangeError
	if _, err := c.ExchangeCode(context.Background(), "abc", ""); !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *ExchangeError", err)
	}
}

func TestExchangeCodeMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := NewKakao(testProviderConfig())
	c.Endpoints.TokenURL = srv.URL

	var xerr *ExchangeError
	if _, err := c.ExchangeCode(context.Background(), "abc", ""); !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *ExchangeError", err)
	}
}

func TestFetchProfileSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok1" {
			t.Errorf("Authorization = %q, want Bearer tok1", got)
		}
		_, _ = w.Write([]byte(`{"id":"g1","email":"a@x.com","name":"Alice"}`))
	}))
	defer srv.Close()

	c := NewGoogle(testProviderConfig())
	c.Endpoints.ProfileURL = srv.URL

	raw, err := c.FetchProfile(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if !strings.Contains(string(raw), `"a@x.com"`) {
		t.Errorf("raw = %s", raw)
	}
}

func TestFetchProfileRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewGoogle(testProviderConfig())
	c.Endpoints.ProfileURL = srv.URL

	var perr *ProfileError
	if _, err := c.FetchProfile(context.Background(), "bad"); !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProfileError", err)
	}
	if perr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", perr.Status)
	}
}

func TestFetchProfileMissingRequiredField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"g1"}`))
	}))
	defer srv.Close()

	c := NewGoogle(testProviderConfig())
	c.Endpoints.ProfileURL = srv.URL

	var perr *ProfileError
	if _, err := c.FetchProfile(context.Background(), "tok1"); !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProfileError", err)
	}
	if !strings.Contains(perr.Reason, "email") {
		t.Errorf("reason = %q, want mention of email", perr.Reason)
	}
}
