package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RedisBackend  = "redis"
	MemoryBackend = "memory"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Cache is a typed key/value store with per-entry TTL. Zero ttl means no expiration.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New picks a backend. client is only used by the redis backend.
func New[V any](backend string, client *redis.Client, prefix string) (Cache[V], error) {
	switch backend {
	case RedisBackend:
		if client == nil {
			return nil, errors.New("cache: redis backend requires a client")
		}
		return NewRedisCache[V](client, prefix), nil
	case MemoryBackend, "":
		return NewMemoryCache[V](time.Minute), nil
	}
	return nil, errors.New("cache: unknown backend " + backend)
}
