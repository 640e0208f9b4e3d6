package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/security"
)

// Dependencies represents the dependencies needed for the auth module
type Dependencies struct {
	Config     *Config
	TokenMaker security.Maker
	Challenges cache.Cache[string]
	Logger     logger.Logger
}

// Init mounts the sign-in routes and returns the middleware that guards caller-bound routes
func Init(r *gin.RouterGroup, deps Dependencies) gin.HandlerFunc {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid auth configuration: " + err.Error())
	}

	tokenMaker := deps.TokenMaker
	if tokenMaker == nil {
		maker, err := security.NewPasetoMaker(config.SymmetricKey)
		if err != nil {
			panic("Invalid auth configuration: " + err.Error())
		}
		tokenMaker = maker
	}

	challenges := deps.Challenges
	if challenges == nil {
		challenges = cache.NewMemoryCache[string](time.Minute)
	}

	handler := NewHandler(NewService(challenges, tokenMaker, config, deps.Logger), deps.Logger)

	authGroup := r.Group("/auth")
	authGroup.POST("/challenge", handler.Challenge)
	authGroup.POST("/session", handler.Session)

	return RequireAuth(tokenMaker)
}
