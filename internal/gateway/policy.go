// Package gateway holds the path policy and the reverse proxy to the
// downstream services. The policy table built here is the only
// public-path list in the process; the auth filter, the router, and the
// fallback registration all consume it.
package gateway

import (
	"strings"

	"github.com/deungsanlog/gateway/internal/config"
)

// localPublicPrefixes are the gateway's own endpoints that never require
// a session token.
var localPublicPrefixes = []string{
	"/auth/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/fallback/",
}

// Policy is an ordered prefix allow-list evaluated first-match-wins,
// case-sensitive. Built once at startup; read-only afterwards.
type Policy struct {
	prefixes []string
}

// NewPolicy assembles the allow-list from the gateway-local endpoints,
// the configured route prefixes, and any extra public paths from config.
// Most service paths are public at the gateway layer; downstream
// services re-check the injected identity headers when they need
// enforcement.
func NewPolicy(cfg *config.Config) *Policy {
	p := &Policy{}
	p.prefixes = append(p.prefixes, localPublicPrefixes...)
	for _, r := range cfg.Routes {
		p.prefixes = append(p.prefixes, r.Prefix)
	}
	for _, extra := range cfg.PublicPaths {
		if extra != "" && strings.HasPrefix(extra, "/") {
			p.prefixes = append(p.prefixes, extra)
		}
	}
	return p
}

// IsPublic reports whether the path may pass the edge without a token.
func (p *Policy) IsPublic(path string) bool {
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Prefixes returns a copy of the table, in evaluation order.
func (p *Policy) Prefixes() []string {
	out := make([]string, len(p.prefixes))
	copy(out, p.prefixes)
	return out
}
