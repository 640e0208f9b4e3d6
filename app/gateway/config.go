package gateway

import (
	"errors"

	"github.com/joefazee/veilbet/models"
)

// Config holds decryption gateway settings
type Config struct {
	// PollRate caps outbound polls to the confidential-compute service, per second.
	PollRate       float64 `env:"GATEWAY_POLL_RATE" env-default:"20"`
	PollBurst      int     `env:"GATEWAY_POLL_BURST" env-default:"5"`
	RevealFanOut   int     `env:"GATEWAY_REVEAL_FAN_OUT" env-default:"8"`
	EncryptHelper  bool    `env:"GATEWAY_ENCRYPT_HELPER" env-default:"false"`
	RetryAfterSecs int     `env:"GATEWAY_RETRY_AFTER" env-default:"5"`
}

// Validate validates the gateway configuration
func (c *Config) Validate() error {
	if c.PollRate <= 0 || c.PollBurst < 1 {
		return models.ErrInvalidPollRate
	}
	if c.RevealFanOut < 1 {
		return models.ErrInvalidRevealFanOut
	}
	if c.RetryAfterSecs < 1 {
		return errors.New("retry-after must be at least one second")
	}
	return nil
}

// GetDefaultConfig returns default gateway configuration
func GetDefaultConfig() *Config {
	return &Config{
		PollRate:       20,
		PollBurst:      5,
		RevealFanOut:   8,
		RetryAfterSecs: 5,
	}
}
