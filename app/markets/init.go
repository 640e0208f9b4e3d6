package markets

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"gorm.io/gorm"
)

// Dependencies represents the dependencies needed for the markets module
type Dependencies struct {
	DB          *gorm.DB
	Config      *Config
	FHE         fhe.Service
	Sanitizer   sanitizer.HTMLStripperer
	Logger      logger.Logger
	RequireAuth gin.HandlerFunc
	Options     []Option
}

// Init initializes the markets module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid markets configuration: " + err.Error())
	}

	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, events.NewRepository(deps.DB), deps.FHE, config, deps.Logger, deps.Options...)
	handler := NewHandler(srvs, config, deps.Sanitizer, deps.Logger)

	marketsGroup := r.Group("/markets")
	marketsGroup.GET("", handler.GetMarkets)
	marketsGroup.GET("/:id", handler.GetMarketInfo)
	marketsGroup.GET("/:id/events", handler.GetMarketEvents)
	marketsGroup.POST("", deps.RequireAuth, handler.CreateMarket)

	return srvs
}
