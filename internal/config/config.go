package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds the OAuth2 credentials for one identity provider.
type ProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

// Route maps a downstream service to its upstream base URL. The Prefix is
// the public path the gateway exposes (e.g. /mountain-service) and Target
// is where requests are proxied to.
type Route struct {
	Name   string `yaml:"name"`   // e.g. "mountain"
	Prefix string `yaml:"prefix"` // e.g. "/mountain-service"
	Target string `yaml:"target"` // e.g. "http://mountain-service:8083"
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
	} `yaml:"server"`

	JWT struct {
		Secret   string `yaml:"secret"`
		Validity string `yaml:"validity"` // duration string, default 24h
	} `yaml:"jwt"`

	Frontend struct {
		// Browser is redirected here after the callback, with ?token= or ?error=.
		RedirectURI string `yaml:"redirect_uri"`
	} `yaml:"frontend"`

	Providers struct {
		Google ProviderConfig `yaml:"google"`
		Naver  ProviderConfig `yaml:"naver"`
		Kakao  ProviderConfig `yaml:"kakao"`
		// TTL for the per-flow state nonce stored between start and callback.
		StateTTL string `yaml:"state_ttl"`
	} `yaml:"providers"`

	UserService struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"user_service"`

	Routes []Route `yaml:"routes"`

	// Extra public path prefixes on top of the gateway-local ones and the
	// route prefixes. The effective allow-list is built in internal/gateway.
	PublicPaths []string `yaml:"public_paths"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the YAML config at path, applies defaults and env overrides,
// and validates the result. Path may be empty: then only defaults + env apply.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.JWT.Validity == "" {
		c.JWT.Validity = "24h"
	}
	if c.Providers.StateTTL == "" {
		c.Providers.StateTTL = "10m"
	}
	if c.UserService.URL == "" {
		c.UserService.URL = "http://localhost:8081"
	}
	if c.UserService.Timeout == "" {
		c.UserService.Timeout = "10s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "10m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Frontend.RedirectURI == "" {
		c.Frontend.RedirectURI = "http://localhost:3000/oauth/callback"
	}
	if len(c.Routes) == 0 {
		c.Routes = defaultRoutes()
	}

	c.applyEnvOverrides()

	// validate duration strings up-front so a bad config fails at startup
	for _, d := range []string{
		c.Server.ReadTimeout, c.Server.WriteTimeout, c.JWT.Validity,
		c.Providers.StateTTL, c.UserService.Timeout, c.Cache.Memory.DefaultTTL,
		c.Rate.Login.Window,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, fmt.Errorf("config: invalid duration %q: %w", d, err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	// HS256 with a short secret is as good as no secret.
	if c.App.Env == "prod" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("config: jwt.secret must be at least 32 bytes in prod")
	}
	for _, r := range c.Routes {
		if r.Prefix == "" || !strings.HasPrefix(r.Prefix, "/") {
			return fmt.Errorf("config: route %q has invalid prefix %q", r.Name, r.Prefix)
		}
	}
	return nil
}

// applyEnvOverrides lets deployment environments override the YAML without
// shipping a new file. Env wins over file.
func (c *Config) applyEnvOverrides() {
	if v := getEnv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getEnv("APP_ENV"); v != "" {
		c.App.Env = v
	}
	if v := getEnv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := getEnv("JWT_VALIDITY"); v != "" {
		c.JWT.Validity = v
	}
	if v := getEnv("FRONTEND_REDIRECT_URI"); v != "" {
		c.Frontend.RedirectURI = v
	}
	if v := getEnv("USER_SERVICE_URL"); v != "" {
		c.UserService.URL = v
	}
	if v := getEnv("CACHE_KIND"); v != "" {
		c.Cache.Kind = v
	}
	if v := getEnv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getEnv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v := getEnv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}

	overrideProvider("GOOGLE", &c.Providers.Google)
	overrideProvider("NAVER", &c.Providers.Naver)
	overrideProvider("KAKAO", &c.Providers.Kakao)
}

func overrideProvider(prefix string, p *ProviderConfig) {
	if v := getEnv(prefix + "_CLIENT_ID"); v != "" {
		p.ClientID = v
	}
	if v := getEnv(prefix + "_CLIENT_SECRET"); v != "" {
		p.ClientSecret = v
	}
	if v := getEnv(prefix + "_REDIRECT_URI"); v != "" {
		p.RedirectURI = v
	}
}

// defaultRoutes reflects the deployed service topology. Deployments override
// the targets via YAML; the prefixes are part of the public API.
func defaultRoutes() []Route {
	return []Route{
		{Name: "user", Prefix: "/user-service", Target: "http://localhost:8081"},
		{Name: "record", Prefix: "/record-service", Target: "http://localhost:8082"},
		{Name: "mountain", Prefix: "/mountain-service", Target: "http://localhost:8083"},
		{Name: "community", Prefix: "/community-service", Target: "http://localhost:8084"},
		{Name: "meeting", Prefix: "/meeting-service", Target: "http://localhost:8085"},
		{Name: "notification", Prefix: "/notification-service", Target: "http://localhost:8086"},
		{Name: "ormie", Prefix: "/ormie-service", Target: "http://localhost:8087"},
	}
}

// Duration parses a duration string that was already validated by Load.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvInt(key string) (int, bool) {
	v := getEnv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getEnvBool(key string) (bool, bool) {
	v := strings.ToLower(getEnv(key))
	switch v {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
