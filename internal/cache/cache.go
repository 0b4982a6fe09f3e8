// Package cache provides the small TTL store the login flow uses for
// per-flow state nonces. Two backends: Redis for multi-instance
// deployments, in-process memory for single-node and tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or already expired.
var ErrNotFound = errors.New("cache: key not found")

// Client is a minimal TTL key-value store.
type Client interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping reports backend health for the readiness endpoint.
	Ping(ctx context.Context) error
	Close() error
}

// TakeOnce reads and deletes the key in one logical step, so a state nonce
// can be consumed exactly once.
func TakeOnce(ctx context.Context, c Client, key string) (string, error) {
	v, err := c.Get(ctx, key)
	if err != nil {
		return "", err
	}
	_ = c.Delete(ctx, key)
	return v, nil
}
