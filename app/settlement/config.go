package settlement

import (
	"errors"
	"time"
)

// Config holds settlement settings
type Config struct {
	// RevealOnSettle submits outcome reveals for every bet right after settlement.
	RevealOnSettle bool          `env:"SETTLEMENT_REVEAL_ON_SETTLE" env-default:"true"`
	PayoutTimeout  time.Duration `env:"SETTLEMENT_PAYOUT_TIMEOUT" env-default:"30s"`
}

// Validate validates the settlement configuration
func (c *Config) Validate() error {
	if c.PayoutTimeout <= 0 {
		return errors.New("settlement payout timeout must be positive")
	}
	return nil
}

// GetDefaultConfig returns default settlement configuration
func GetDefaultConfig() *Config {
	return &Config{
		RevealOnSettle: true,
		PayoutTimeout:  30 * time.Second,
	}
}
