package auth

import (
	"time"

	"github.com/joefazee/veilbet/models"
	"golang.org/x/crypto/chacha20poly1305"
)

// Config holds session settings
type Config struct {
	SymmetricKey  string        `env:"AUTH_SYMMETRIC_KEY"`
	TokenDuration time.Duration `env:"AUTH_TOKEN_DURATION" env-default:"24h"`
	ChallengeTTL  time.Duration `env:"AUTH_CHALLENGE_TTL" env-default:"5m"`
}

// Validate validates the auth configuration
func (c *Config) Validate() error {
	if len(c.SymmetricKey) != chacha20poly1305.KeySize {
		return models.ErrInvalidSymmetricKey
	}
	if c.TokenDuration <= 0 || c.ChallengeTTL <= 0 {
		return models.ErrInvalidTokenDuration
	}
	return nil
}

// GetDefaultConfig returns default auth configuration. The key is for local development only.
func GetDefaultConfig() *Config {
	return &Config{
		SymmetricKey:  "veilbet-local-development-key-32",
		TokenDuration: 24 * time.Hour,
		ChallengeTTL:  5 * time.Minute,
	}
}
