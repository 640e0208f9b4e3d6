package app

import (
	"context"
	"fmt"

	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/deps"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"github.com/joefazee/veilbet/internal/security"
	"github.com/joefazee/veilbet/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewContainer builds the shared infrastructure. The returned func releases it.
func NewContainer(ctx context.Context, cfg *Config, db *gorm.DB, log logger.Logger) (*deps.Container, func(), error) {
	tokenMaker, err := security.NewPasetoMaker(cfg.Auth.SymmetricKey)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	var client *redis.Client
	if cfg.CacheBackend == cache.RedisBackend || cfg.LockBackend == cache.RedisBackend {
		client = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("cannot reach redis: %w", err)
		}
	}

	challenges, err := cache.New[string](cfg.CacheBackend, client, "veilbet:challenge:")
	if err != nil {
		return nil, nil, err
	}
	results, err := cache.New[[]uint64](cfg.CacheBackend, client, "veilbet:results:")
	if err != nil {
		return nil, nil, err
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.LockBackend == cache.RedisBackend {
		locker = lock.NewRedisLocker(client, lock.RedisOptions{TTL: cfg.LockTTL, Prefix: "veilbet:lock:"})
	}

	c := deps.NewContainer(db, tokenMaker, sanitizer.NewHTMLStripper(), log)
	c.Locker = locker
	c.FHE = fhe.NewLocalService(fhe.LocalOptions{Latency: cfg.FHELatency})
	c.Rail = rail.NewLedgerRail(db, models.Address{})
	c.Challenges = challenges
	c.Results = results

	cleanup := func() {
		for _, v := range []interface{}{challenges, results} {
			if s, ok := v.(interface{ Stop() }); ok {
				s.Stop()
			}
		}
		if client != nil {
			if err := client.Close(); err != nil {
				log.Error(err, map[string]interface{}{"component": "redis"})
			}
		}
	}

	log.Info("infrastructure ready", map[string]interface{}{
		"cache_backend": cfg.CacheBackend,
		"lock_backend":  cfg.LockBackend,
	})

	return c, cleanup, nil
}
