package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deungsanlog/gateway/internal/config"
)

func TestProxySetForwards(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream-Path", r.URL.Path)
		_, _ = w.Write([]byte("upstream ok"))
	}))
	defer upstream.Close()

	ps, err := NewProxySet([]config.Route{
		{Name: "user", Prefix: "/user-service", Target: upstream.URL},
	})
	if err != nil {
		t.Fatalf("NewProxySet: %v", err)
	}

	route, handler, ok := ps.Match("/user-service/api/users/1")
	if !ok || route.Name != "user" {
		t.Fatalf("Match = (%+v, %v)", route, ok)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user-service/api/users/1", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Upstream-Path"); got != "/user-service/api/users/1" {
		t.Errorf("upstream path = %q", got)
	}
}

func TestProxySetDeadUpstreamServesFallback(t *testing.T) {
	ps, err := NewProxySet([]config.Route{
		// A closed port: the dial fails immediately.
		{Name: "record", Prefix: "/record-service", Target: "http://127.0.0.1:1"},
	})
	if err != nil {
		t.Fatalf("NewProxySet: %v", err)
	}

	_, handler, ok := ps.Match("/record-service/api/records")
	if !ok {
		t.Fatal("route did not match")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/record-service/api/records", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "record") {
		t.Errorf("body = %q", body)
	}
}

func TestProxySetRejectsInvalidTarget(t *testing.T) {
	if _, err := NewProxySet([]config.Route{{Name: "bad", Prefix: "/x", Target: "://nope"}}); err == nil {
		t.Error("want error for invalid target URL")
	}
}

func TestFallbackHandlerBody(t *testing.T) {
	rec := httptest.NewRecorder()
	FallbackHandler("meeting")(rec, httptest.NewRequest(http.MethodGet, "/fallback/meeting", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "meeting is temporarily unavailable. Please try again later." {
		t.Errorf("body = %q", got)
	}
}

func TestProxySetMatchMiss(t *testing.T) {
	ps, err := NewProxySet(nil)
	if err != nil {
		t.Fatalf("NewProxySet: %v", err)
	}
	if _, _, ok := ps.Match("/unrouted"); ok {
		t.Error("Match should miss on an empty table")
	}
}
