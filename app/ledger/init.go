package ledger

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"gorm.io/gorm"
)

// Dependencies represents the dependencies needed for the ledger module
type Dependencies struct {
	DB          *gorm.DB
	Config      *Config
	Guard       *markets.Guard
	FHE         fhe.Service
	Rail        rail.Rail
	Logger      logger.Logger
	RequireAuth gin.HandlerFunc
	Options     []Option
}

// Init initializes the ledger module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid ledger configuration: " + err.Error())
	}

	srvs := NewService(
		NewRepository(deps.DB),
		markets.NewRepository(deps.DB),
		events.NewRepository(deps.DB),
		deps.Guard,
		deps.FHE,
		deps.Rail,
		config,
		deps.Logger,
		deps.Options...,
	)
	handler := NewHandler(srvs, deps.Logger)

	marketsGroup := r.Group("/markets/:id")
	marketsGroup.GET("/bets", handler.GetBets)
	marketsGroup.GET("/bets/:index", handler.GetBet)
	marketsGroup.POST("/bets", deps.RequireAuth, handler.PlaceBet)
	marketsGroup.POST("/reconcile", handler.Reconcile)

	return srvs
}
