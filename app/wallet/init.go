package wallet

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/internal/logger"
)

// Dependencies represents the dependencies needed for the wallet module
type Dependencies struct {
	Config      *Config
	Ledger      Ledger
	Logger      logger.Logger
	RequireAuth gin.HandlerFunc
}

// Init initializes the wallet module. The faucet route exists only when enabled.
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid wallet configuration: " + err.Error())
	}

	srvs := NewService(deps.Ledger, config, deps.Logger)
	handler := NewHandler(srvs, deps.Logger)

	walletGroup := r.Group("/wallet")
	walletGroup.GET("", deps.RequireAuth, handler.GetBalance)
	walletGroup.GET("/transactions", deps.RequireAuth, handler.GetHistory)
	if config.FaucetEnabled {
		walletGroup.POST("/fund", handler.Fund)
	}

	return srvs
}
