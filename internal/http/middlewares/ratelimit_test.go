package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deungsanlog/gateway/internal/rate"
)

type fakeLimiter struct {
	result rate.Result
	err    error
	gotKey string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (rate.Result, error) {
	f.gotKey = key
	return f.result, f.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoginRateLimitAllows(t *testing.T) {
	lim := &fakeLimiter{result: rate.Result{Allowed: true, Remaining: 3}}
	h := WithLoginRateLimit(lim)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if lim.gotKey != "login:10.0.0.9" {
		t.Errorf("key = %q", lim.gotKey)
	}
}

func TestLoginRateLimitDenies(t *testing.T) {
	lim := &fakeLimiter{result: rate.Result{Allowed: false, RetryIn: 30 * time.Second}}
	h := WithLoginRateLimit(lim)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q, want 30", got)
	}
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	lim := &fakeLimiter{err: errors.New("redis down")}
	h := WithLoginRateLimit(lim)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: limiter failures must not block logins", rec.Code)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP = %q, want 203.0.113.7", got)
	}

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	if got := ClientIP(req); got != "198.51.100.2" {
		t.Errorf("ClientIP = %q, want 198.51.100.2", got)
	}

	req.Header.Del("X-Real-IP")
	if got := ClientIP(req); got != "127.0.0.1" {
		t.Errorf("ClientIP = %q, want 127.0.0.1", got)
	}
}
