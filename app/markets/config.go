package markets

import (
	"time"

	"github.com/joefazee/veilbet/models"
)

// Config represents the configuration for the markets module
type Config struct {
	MinMarketDuration time.Duration `env:"MARKET_MIN_DURATION"`
	MaxMarketDuration time.Duration `env:"MARKET_MAX_DURATION"`
	MaxFeeBps         int           `env:"MARKET_MAX_FEE_BPS"`
	MinQuestionLength int           `env:"MARKET_MIN_QUESTION_LENGTH"`
	MaxQuestionLength int           `env:"MARKET_MAX_QUESTION_LENGTH"`
	DefaultPerPage    int           `env:"MARKET_DEFAULT_PER_PAGE"`
}

// Validate validates the market configuration
func (c *Config) Validate() error {
	if c.MinMarketDuration < 0 || c.MaxMarketDuration <= c.MinMarketDuration {
		return models.ErrInvalidMarketDuration
	}

	if c.MaxFeeBps < 0 || c.MaxFeeBps > models.MaxFeeBps {
		return models.ErrInvalidFeeBps
	}

	if c.MinQuestionLength < 1 || c.MaxQuestionLength < c.MinQuestionLength {
		return models.ErrInvalidQuestionLimits
	}

	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MinMarketDuration: time.Minute,
		MaxMarketDuration: 365 * 24 * time.Hour,
		MaxFeeBps:         1000,
		MinQuestionLength: 10,
		MaxQuestionLength: 500,
		DefaultPerPage:    20,
	}
}
