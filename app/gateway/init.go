package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/app/ledger"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"gorm.io/gorm"
)

// Dependencies represents the dependencies needed for the gateway module
type Dependencies struct {
	DB      *gorm.DB
	Config  *Config
	Guard   *markets.Guard
	Locker  lock.Locker
	FHE     fhe.Service
	Results cache.Cache[[]uint64]
	Logger  logger.Logger
	Options []Option
}

// Init initializes the gateway module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid gateway configuration: " + err.Error())
	}

	results := deps.Results
	if results == nil {
		results = cache.NewMemoryCache[[]uint64](0)
	}

	srvs := NewService(
		NewRepository(deps.DB),
		markets.NewRepository(deps.DB),
		ledger.NewRepository(deps.DB),
		events.NewRepository(deps.DB),
		deps.Guard,
		deps.Locker,
		deps.FHE,
		results,
		config,
		deps.Logger,
		deps.Options...,
	)
	handler := NewHandler(srvs, config, deps.Logger)

	marketGroup := r.Group("/markets/:id")
	marketGroup.POST("/decryption", handler.RequestDecryption)
	marketGroup.GET("/decryption", handler.PollDecryptionResult)
	marketGroup.POST("/reveal", handler.RevealAllOutcomes)
	marketGroup.POST("/bets/:index/reveal", handler.RequestOutcomeReveal)
	marketGroup.GET("/bets/:index/outcome", handler.PollOutcome)

	if config.EncryptHelper {
		r.POST("/fhe/encrypt", handler.Encrypt)
	}

	return srvs
}
