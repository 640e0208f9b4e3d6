package app

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/app/gateway"
	"github.com/joefazee/veilbet/app/ledger"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/app/settlement"
	"github.com/joefazee/veilbet/app/wallet"
	"github.com/joefazee/veilbet/internal/deps"
	"github.com/joefazee/veilbet/internal/router"
)

const (
	serviceRequireAuth = "auth.require"
	serviceGuard       = "markets.guard"
	serviceGateway     = "gateway.service"
)

// NewEngine builds the HTTP engine with every module mounted.
func NewEngine(cfg *Config, container *deps.Container) *gin.Engine {
	engine := gin.New()
	engine.Use(api.Recovery(container.Logger), api.RequestLogger(container.Logger), api.CorsMiddleware())

	router.NewMounter(container).API(engine).Mount(Modules(cfg)...)
	return engine
}

// Modules lists the mount functions in dependency order.
func Modules(cfg *Config) []router.MountFunc {
	return []router.MountFunc{
		func(r *gin.RouterGroup, _ *deps.Container) {
			r.GET("/healthz", api.HealthCheck(cfg.Env, cfg.Version))
		},
		func(r *gin.RouterGroup, c *deps.Container) {
			requireAuth := auth.Init(r, auth.Dependencies{
				Config:     &cfg.Auth,
				TokenMaker: c.TokenMaker,
				Challenges: c.Challenges,
				Logger:     c.Logger,
			})
			c.RegisterService(serviceRequireAuth, requireAuth)
		},
		func(r *gin.RouterGroup, c *deps.Container) {
			markets.Init(r, markets.Dependencies{
				DB:          c.DB,
				Config:      &cfg.Markets,
				FHE:         c.FHE,
				Sanitizer:   c.Sanitizer,
				Logger:      c.Logger,
				RequireAuth: deps.MustService[gin.HandlerFunc](c, serviceRequireAuth),
			})
			c.RegisterService(serviceGuard, markets.NewGuard(c.DB, c.Locker, markets.NewRepository(c.DB)))
		},
		func(r *gin.RouterGroup, c *deps.Container) {
			ledger.Init(r, ledger.Dependencies{
				DB:          c.DB,
				Config:      &cfg.Ledger,
				Guard:       deps.MustService[*markets.Guard](c, serviceGuard),
				FHE:         c.FHE,
				Rail:        c.Rail,
				Logger:      c.Logger,
				RequireAuth: deps.MustService[gin.HandlerFunc](c, serviceRequireAuth),
			})
		},
		func(r *gin.RouterGroup, c *deps.Container) {
			gw := gateway.Init(r, gateway.Dependencies{
				DB:      c.DB,
				Config:  &cfg.Gateway,
				Guard:   deps.MustService[*markets.Guard](c, serviceGuard),
				Locker:  c.Locker,
				FHE:     c.FHE,
				Results: c.Results,
				Logger:  c.Logger,
			})
			c.RegisterService(serviceGateway, gw)
		},
		func(r *gin.RouterGroup, c *deps.Container) {
			settlement.Init(r, settlement.Dependencies{
				DB:          c.DB,
				Config:      &cfg.Settlement,
				Guard:       deps.MustService[*markets.Guard](c, serviceGuard),
				Gateway:     deps.MustService[gateway.Service](c, serviceGateway),
				Rail:        c.Rail,
				Logger:      c.Logger,
				RequireAuth: deps.MustService[gin.HandlerFunc](c, serviceRequireAuth),
			})
		},
		func(r *gin.RouterGroup, c *deps.Container) {
			wallet.Init(r, wallet.Dependencies{
				Config:      &cfg.Wallet,
				Ledger:      c.Rail,
				Logger:      c.Logger,
				RequireAuth: deps.MustService[gin.HandlerFunc](c, serviceRequireAuth),
			})
		},
	}
}
