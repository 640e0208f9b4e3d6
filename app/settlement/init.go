package settlement

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/app/gateway"
	"github.com/joefazee/veilbet/app/ledger"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"gorm.io/gorm"
)

// Dependencies represents the dependencies needed for the settlement module
type Dependencies struct {
	DB          *gorm.DB
	Config      *Config
	Guard       *markets.Guard
	Gateway     gateway.Service
	Rail        rail.Rail
	Logger      logger.Logger
	RequireAuth gin.HandlerFunc
	Options     []Option
}

// Init initializes the settlement module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid settlement configuration: " + err.Error())
	}

	srvs := NewService(
		markets.NewRepository(deps.DB),
		ledger.NewRepository(deps.DB),
		events.NewRepository(deps.DB),
		deps.Guard,
		deps.Gateway,
		deps.Rail,
		config,
		deps.Logger,
		deps.Options...,
	)
	handler := NewHandler(srvs, deps.Logger)

	marketGroup := r.Group("/markets/:id")
	marketGroup.POST("/settle", handler.Settle)
	marketGroup.GET("/pools", handler.GetDecryptedPools)
	marketGroup.GET("/bets/:index/payout", handler.CalculatePayout)
	marketGroup.POST("/bets/:index/withdraw", deps.RequireAuth, handler.Withdraw)
	marketGroup.POST("/bets/:index/withdraw-unsafe", deps.RequireAuth, handler.WithdrawUnsafe)

	return srvs
}
