package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app"
	"github.com/joefazee/veilbet/app/database"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
)

// @title Veilbet API
// @version 1.0
// @description Confidential parimutuel YES/NO prediction markets: encrypted stakes and sides, public settlement.

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "optional yaml, json, toml or env config file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configFile)
	if err != nil {
		logger.NewZeroLogger(os.Stderr, logger.LevelInfo, nil).Fatal(err, map[string]interface{}{"stage": "config"})
	}

	log := logger.NewZeroLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel), logger.Fields{
		"service": "veilbet",
		"env":     cfg.Env,
		"version": cfg.Version,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal(err, nil)
	}
}

func run(cfg *app.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.DB)
	if err != nil {
		return err
	}
	if err := database.Migrate(&cfg.DB, db); err != nil {
		return err
	}

	if err := validator.RegisterBindingRules(); err != nil {
		return err
	}

	container, cleanup, err := app.NewContainer(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.NewEngine(cfg, container),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting veilbet API server", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", map[string]interface{}{"timeout": cfg.ShutdownTimeout.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
