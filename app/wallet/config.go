package wallet

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidFaucetLimit = errors.New("faucet limit must be a positive integer")

// Config holds wallet module settings
type Config struct {
	FaucetEnabled bool   `env:"WALLET_FAUCET_ENABLED"`
	FaucetLimit   string `env:"WALLET_FAUCET_LIMIT" env-default:"10000000000000000000"`
	HistoryLimit  int    `env:"WALLET_HISTORY_LIMIT" env-default:"50"`
}

// Validate validates the wallet configuration
func (c *Config) Validate() error {
	limit, err := decimal.NewFromString(c.FaucetLimit)
	if err != nil || !limit.IsPositive() || !limit.IsInteger() {
		return ErrInvalidFaucetLimit
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	return nil
}

// Limit is the largest single faucet credit in wei
func (c *Config) Limit() decimal.Decimal {
	return decimal.RequireFromString(c.FaucetLimit)
}

// GetDefaultConfig returns default wallet configuration
func GetDefaultConfig() *Config {
	return &Config{
		FaucetEnabled: false,
		FaucetLimit:   "10000000000000000000",
		HistoryLimit:  50,
	}
}
