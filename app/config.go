package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/app/database"
	"github.com/joefazee/veilbet/app/gateway"
	"github.com/joefazee/veilbet/app/ledger"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/app/settlement"
	"github.com/joefazee/veilbet/app/wallet"
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/nexus"
	"github.com/joefazee/veilbet/models"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type Config struct {
	DB         database.Config
	Redis      RedisConfig
	Auth       auth.Config
	Markets    markets.Config
	Ledger     ledger.Config
	Gateway    gateway.Config
	Settlement settlement.Config
	Wallet     wallet.Config

	AppHost         string        `env:"APP_HOST" env-default:"localhost"`
	AppPort         string        `env:"APP_PORT" env-default:"8080"`
	Env             string        `env:"APP_ENV" env-default:"development"`
	Version         string        `env:"APP_VERSION" env-default:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" env-default:"15s"`

	// CacheBackend and LockBackend are "memory" or "redis".
	CacheBackend string        `env:"CACHE_BACKEND" env-default:"memory"`
	LockBackend  string        `env:"LOCK_BACKEND" env-default:"memory"`
	LockTTL      time.Duration `env:"LOCK_TTL" env-default:"30s"`

	// FHELatency is how long the local confidential-compute service keeps decryptions pending.
	FHELatency time.Duration `env:"FHE_LATENCY" env-default:"2s"`
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// Validate checks cross-module settings. Each module validates its own block again on Init.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.DB, &c.Auth, &c.Markets, &c.Ledger, &c.Gateway, &c.Settlement, &c.Wallet,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	for _, backend := range []string{c.CacheBackend, c.LockBackend} {
		switch backend {
		case cache.MemoryBackend:
		case cache.RedisBackend:
			if c.Redis.Addr == "" {
				return errors.New("redis backend requires REDIS_ADDR")
			}
		default:
			return fmt.Errorf("unknown backend %q", backend)
		}
	}

	if c.LockTTL <= 0 {
		return models.ErrInvalidLockTTL
	}

	if c.Wallet.FaucetEnabled && c.Env != EnvDevelopment {
		return errors.New("the wallet faucet is only available in development")
	}

	if c.IsProduction() && c.Auth.SymmetricKey == auth.GetDefaultConfig().SymmetricKey {
		return models.ErrInvalidSymmetricKey
	}

	return nil
}

// DefaultConfig fills settings that have no env-default.
func DefaultConfig() *Config {
	settlementDefaults := settlement.GetDefaultConfig()
	// mergo cannot tell an explicit false from unset
	settlementDefaults.RevealOnSettle = false

	return &Config{
		Auth:       *auth.GetDefaultConfig(),
		Markets:    *markets.GetDefaultConfig(),
		Ledger:     *ledger.GetDefaultConfig(),
		Gateway:    *gateway.GetDefaultConfig(),
		Settlement: *settlementDefaults,
		Wallet:     *wallet.GetDefaultConfig(),
	}
}

// LoadConfig loads the application configuration from .env, an optional CONFIG_FILE and the environment.
func LoadConfig(configFile string) (*Config, error) {
	opts := []nexus.LoaderOption{nexus.WithDefaults(DefaultConfig())}
	if configFile != "" {
		opts = append(opts, nexus.WithFileName(configFile))
	}

	c := &Config{}
	err := nexus.NewLoader(opts...).Load(c)
	return c, err
}
