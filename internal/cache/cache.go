// Package cache is the read-through cache behind the profile endpoint.
// The default backend is a no-op so nothing depends on a cache being present.
package cache

import (
	"context"
	"fmt"
	"time"
)

type Cache interface {
	// Get reports ok=false on a miss. A miss is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

func ProfileKey(userID string) string {
	return "user:profile:" + userID
}

// New builds the backend named by driver.
func New(ctx context.Context, driver string, redisURL string) (Cache, error) {
	switch driver {
	case "", "none":
		return Nop{}, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(ctx, redisURL)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}

type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Nop) Delete(context.Context, ...string) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
