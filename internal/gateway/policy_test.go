package gateway

import (
	"testing"

	"github.com/deungsanlog/gateway/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Routes = []config.Route{
		{Name: "user", Prefix: "/user-service", Target: "http://localhost:8081"},
		{Name: "mountain", Prefix: "/mountain-service", Target: "http://localhost:8083"},
	}
	cfg.PublicPaths = []string{"/docs"}
	return cfg
}

func TestPolicyPublicPaths(t *testing.T) {
	p := NewPolicy(testConfig())

	public := []string{
		"/auth/google",
		"/auth/naver/callback",
		"/healthz",
		"/readyz",
		"/metrics",
		"/fallback/user",
		"/user-service/api/users/1",
		"/mountain-service/api/mountains",
		"/docs/index.html",
	}
	for _, path := range public {
		if !p.IsPublic(path) {
			t.Errorf("IsPublic(%q) = false, want true", path)
		}
	}

	protected := []string{
		"/",
		"/admin/anything",
		"/Auth/google", // case-sensitive
		"/authx",
		"/record-service/api/records", // not in this route table
	}
	for _, path := range protected {
		if p.IsPublic(path) {
			t.Errorf("IsPublic(%q) = true, want false", path)
		}
	}
}

func TestPolicyIgnoresInvalidExtraPaths(t *testing.T) {
	cfg := testConfig()
	cfg.PublicPaths = append(cfg.PublicPaths, "", "no-leading-slash")
	p := NewPolicy(cfg)

	if p.IsPublic("no-leading-slash") {
		t.Error("malformed extra path should not be registered")
	}
}
