// Command web is the edge gateway: it proxies /api/* to the sweet shop
// backend and serves the built client bundle for everything else.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/sweetshop/internal/gateway"
	"github.com/jhoicas/sweetshop/pkg/config"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("loading configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	app := gateway.New(cfg.Gateway, cfg.App.Name, log)

	log.Info().
		Str("addr", cfg.HTTP.Addr()).
		Str("api_target", cfg.Gateway.APITarget).
		Str("static_dir", cfg.Gateway.StaticDir).
		Msg("gateway listening")

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("gateway stopped")
}
