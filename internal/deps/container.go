package deps

import (
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"github.com/joefazee/veilbet/internal/security"
	"gorm.io/gorm"
)

// Container holds all shared dependencies
type Container struct {
	DB         *gorm.DB
	TokenMaker security.Maker
	Sanitizer  sanitizer.HTMLStripperer
	Logger     logger.Logger

	Locker     lock.Locker
	FHE        fhe.Service
	Rail       *rail.LedgerRail
	Challenges cache.Cache[string]
	Results    cache.Cache[[]uint64]

	// modules publish their services here so later mounts can use them
	services map[string]interface{}
}

func NewContainer(db *gorm.DB, tokenMaker security.Maker, sanitizer sanitizer.HTMLStripperer, logger logger.Logger) *Container {
	return &Container{
		DB:         db,
		TokenMaker: tokenMaker,
		Sanitizer:  sanitizer,
		Logger:     logger,
		services:   make(map[string]interface{}),
	}
}

// RegisterService stores a service with a key
func (c *Container) RegisterService(key string, service interface{}) {
	c.services[key] = service
}

// GetService retrieves a service by key
func (c *Container) GetService(key string) interface{} {
	return c.services[key]
}

// MustService returns the service registered under key as T and panics when it is missing.
// Mount order is fixed at startup so a miss is a wiring bug.
func MustService[T any](c *Container, key string) T {
	svc, ok := c.services[key].(T)
	if !ok {
		panic("deps: service " + key + " is not registered")
	}
	return svc
}
