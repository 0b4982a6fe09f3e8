// Package metrics holds the prometheus collectors and the /metrics
// handler.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight requests by method and path",
	}, []string{"method", "path"})

	// result: issued|bad_state|exchange_failed|profile_failed|normalize_failed|upsert_failed|issue_failed
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_login_attempts_total",
		Help: "Login flow outcomes by provider",
	}, []string{"provider", "result"})

	// result: ok|missing|invalid
	TokenValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_token_validations_total",
		Help: "Session token validations at the edge",
	}, []string{"result"})

	ProxyErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_proxy_errors_total",
		Help: "Upstream proxy failures by service",
	}, []string{"service"})
)

// Register installs all collectors on the registry and returns the
// /metrics handler. Re-registration is tolerated so tests can call it
// more than once.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		HTTPRequestsTotal, HTTPRequestDuration, HTTPInflight,
		LoginAttempts, TokenValidations, ProxyErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, err
		}
	}
	return promhttp.Handler(), nil
}

var (
	uuidSegmentRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// NormalizePath collapses dynamic path segments so metric label
// cardinality stays bounded.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" || clean == "/" {
		return "/"
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
