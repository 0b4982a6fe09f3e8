package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/metrics"
	"github.com/deungsanlog/gateway/internal/observability/logger"
)

// ProxySet holds one reverse proxy per configured route.
type ProxySet struct {
	routes []proxiedRoute
}

type proxiedRoute struct {
	route config.Route
	proxy *httputil.ReverseProxy
}

// NewProxySet builds a reverse proxy for each route in the table.
// Requests keep their full path on the way upstream; the downstream
// services are mounted under their own prefix.
func NewProxySet(routes []config.Route) (*ProxySet, error) {
	ps := &ProxySet{}
	for _, r := range routes {
		target, err := url.Parse(r.Target)
		if err != nil {
			return nil, fmt.Errorf("gateway: route %q has invalid target %q: %w", r.Name, r.Target, err)
		}

		rp := httputil.NewSingleHostReverseProxy(target)

		name := r.Name
		rp.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
			logger.From(req.Context()).Warn("upstream unreachable",
				logger.Route(name), logger.Path(req.URL.Path), logger.Err(err))
			metrics.ProxyErrors.WithLabelValues(name).Inc()
			serveFallback(w, name)
		}

		ps.routes = append(ps.routes, proxiedRoute{route: r, proxy: rp})
	}
	return ps, nil
}

// Match resolves a request path to its route, first-match-wins over the
// table order. The router sends every path its own endpoints do not
// claim through here.
func (ps *ProxySet) Match(path string) (config.Route, http.Handler, bool) {
	for _, pr := range ps.routes {
		if strings.HasPrefix(path, pr.route.Prefix) {
			return pr.route, pr.proxy, true
		}
	}
	return config.Route{}, nil, false
}

// serveFallback writes the same plain-text body the /fallback/{service}
// endpoints serve, so a dead upstream and an explicit fallback call look
// identical to the client.
func serveFallback(w http.ResponseWriter, service string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintf(w, "%s is temporarily unavailable. Please try again later.", service)
}

// FallbackHandler serves the explicit circuit-breaker fallback endpoint
// for one routed service.
func FallbackHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		serveFallback(w, service)
	}
}
