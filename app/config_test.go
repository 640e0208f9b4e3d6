package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/joefazee/veilbet/app/database"
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := testConfig()
	cfg.DB = database.Config{Driver: database.DriverSQLite, SQLitePath: "veilbet.db"}
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		errText string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero lock ttl", mutate: func(c *Config) { c.LockTTL = 0 }, wantErr: models.ErrInvalidLockTTL},
		{name: "bad fee cap", mutate: func(c *Config) { c.Markets.MaxFeeBps = 20000 }, wantErr: models.ErrInvalidFeeBps},
		{name: "redis without addr", mutate: func(c *Config) { c.LockBackend = cache.RedisBackend }, errText: "REDIS_ADDR"},
		{name: "unknown backend", mutate: func(c *Config) { c.CacheBackend = "memcached" }, errText: "unknown backend"},
		{name: "faucet outside development", mutate: func(c *Config) { c.Env = "staging" }, errText: "faucet"},
		{
			name: "default key in production",
			mutate: func(c *Config) {
				c.Env = EnvProduction
				c.Wallet.FaucetEnabled = false
			},
			wantErr: models.ErrInvalidSymmetricKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				assert.ErrorContains(t, err, tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_DRIVER", database.DriverSQLite)
	t.Setenv("MARKET_MAX_FEE_BPS", "250")
	t.Setenv("SETTLEMENT_REVEAL_ON_SETTLE", "false")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Addr())
	assert.Equal(t, 250, cfg.Markets.MaxFeeBps)
	assert.Equal(t, 500, cfg.Markets.MaxQuestionLength)
	assert.False(t, cfg.Settlement.RevealOnSettle)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, cache.MemoryBackend, cfg.CacheBackend)
	assert.False(t, cfg.IsProduction())
}

func TestNewContainerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := validConfig()
	cfg.CacheBackend = cache.RedisBackend
	cfg.LockBackend = cache.RedisBackend
	cfg.Redis.Addr = mr.Addr()

	c, cleanup, err := NewContainer(context.Background(), cfg, nil, logger.NewNullLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &lock.RedisLocker{}, c.Locker)

	require.NoError(t, c.Challenges.Set(context.Background(), "k", "v", time.Minute))
	assert.True(t, mr.Exists("veilbet:challenge:k"))

	release, err := c.Locker.Acquire(context.Background(), lock.MarketKey(1))
	require.NoError(t, err)
	assert.True(t, mr.Exists("veilbet:lock:"+lock.MarketKey(1)))
	release()
}

func TestNewContainerFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := validConfig()
	cfg.CacheBackend = cache.RedisBackend
	cfg.Redis.Addr = addr

	_, _, err := NewContainer(context.Background(), cfg, nil, logger.NewNullLogger())
	assert.ErrorContains(t, err, "cannot reach redis")
}
