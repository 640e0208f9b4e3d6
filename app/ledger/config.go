package ledger

import (
	"errors"
	"time"
)

// Config holds bet ledger settings
type Config struct {
	DefaultPerPage int           `env:"LEDGER_DEFAULT_PER_PAGE" env-default:"50"`
	RefundTimeout  time.Duration `env:"LEDGER_REFUND_TIMEOUT" env-default:"30s"`
}

// Validate validates the ledger configuration
func (c *Config) Validate() error {
	if c.DefaultPerPage < 1 || c.DefaultPerPage > 200 {
		return errors.New("ledger default page size must be between 1 and 200")
	}
	if c.RefundTimeout <= 0 {
		return errors.New("ledger refund timeout must be positive")
	}
	return nil
}

// GetDefaultConfig returns default ledger configuration
func GetDefaultConfig() *Config {
	return &Config{
		DefaultPerPage: 50,
		RefundTimeout:  30 * time.Second,
	}
}
