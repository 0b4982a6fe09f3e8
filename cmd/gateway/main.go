package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deungsanlog/gateway/internal/cache"
	"github.com/deungsanlog/gateway/internal/config"
	"github.com/deungsanlog/gateway/internal/directory"
	"github.com/deungsanlog/gateway/internal/gateway"
	"github.com/deungsanlog/gateway/internal/http/controllers"
	"github.com/deungsanlog/gateway/internal/http/router"
	authsvc "github.com/deungsanlog/gateway/internal/http/services/auth"
	"github.com/deungsanlog/gateway/internal/metrics"
	"github.com/deungsanlog/gateway/internal/oauth"
	"github.com/deungsanlog/gateway/internal/observability/logger"
	"github.com/deungsanlog/gateway/internal/rate"
	"github.com/deungsanlog/gateway/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "gateway",
	})
	defer logger.Sync()
	lg := logger.L()

	states, err := buildStateStore(cfg)
	if err != nil {
		lg.Fatal("state store", logger.Err(err))
	}
	defer states.Close()

	limiter := buildLoginLimiter(cfg, states, lg)

	tokens := token.NewService(cfg.JWT.Secret, config.Duration(cfg.JWT.Validity))
	providers := oauth.NewRegistry(cfg)
	users := directory.NewClient(cfg.UserService.URL, config.Duration(cfg.UserService.Timeout))

	login := authsvc.NewService(authsvc.Deps{
		Providers: providers,
		Tokens:    tokens,
		Directory: users,
		States:    states,
		StateTTL:  config.Duration(cfg.Providers.StateTTL),
	})

	policy := gateway.NewPolicy(cfg)
	proxies, err := gateway.NewProxySet(cfg.Routes)
	if err != nil {
		lg.Fatal("proxy routes", logger.Err(err))
	}

	metricsHandler, err := metrics.Register(nil)
	if err != nil {
		lg.Fatal("metrics", logger.Err(err))
	}

	handler := router.New(router.Deps{
		Auth:               controllers.NewAuthController(login, cfg.Frontend.RedirectURI),
		Health:             controllers.NewHealthController(states),
		Fallback:           controllers.NewFallbackController(cfg.Routes),
		Policy:             policy,
		Proxies:            proxies,
		Tokens:             tokens,
		LoginLimiter:       limiter,
		Metrics:            metricsHandler,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("gateway listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Fatal("gateway stopped", logger.Err(err))
	}
	lg.Info("gateway stopped cleanly")
}

func buildStateStore(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Kind == "redis" {
		return cache.NewRedis(cache.Config{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	}
	return cache.NewMemory(config.Duration(cfg.Cache.Memory.DefaultTTL)), nil
}

// buildLoginLimiter enables the shared limiter only when the state store
// is Redis-backed. In-process counting would reset on every deploy and
// diverge across instances, so anything else runs unlimited.
func buildLoginLimiter(cfg *config.Config, states cache.Client, lg *zap.Logger) rate.Limiter {
	if !cfg.Rate.Enabled {
		return rate.NoopLimiter{}
	}
	rc, ok := states.(interface{ Redis() *redis.Client })
	if !ok {
		lg.Warn("rate limiting enabled without redis cache, running unlimited")
		return rate.NoopLimiter{}
	}
	return rate.NewRedisLimiter(
		rc.Redis(),
		cfg.Cache.Redis.Prefix,
		cfg.Rate.Login.Limit,
		config.Duration(cfg.Rate.Login.Window),
	)
}
