// Package rate implements the fixed-window limiter protecting the login
// endpoints.
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result reports one limiter decision.
type Result struct {
	Allowed   bool
	Remaining int
	RetryIn   time.Duration
}

// Limiter decides whether a key may perform another attempt in the
// current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter counts attempts per key in Redis using INCR plus a window
// expiry. Counting is shared across gateway instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := fmt.Sprintf("%s:rate:%s", l.prefix, key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	// The first hit of a window owns the expiry.
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Result{}, err
		}
	}

	if n > int64(l.limit) {
		ttl, err := l.client.TTL(ctx, k).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return Result{Allowed: false, Remaining: 0, RetryIn: ttl}, nil
	}
	return Result{Allowed: true, Remaining: l.limit - int(n)}, nil
}

// NoopLimiter allows everything. Used when rate limiting is disabled or
// no Redis backend is configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Remaining: 1}, nil
}
