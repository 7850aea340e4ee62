// Package gateway is the edge process in front of the sweet shop: it forwards
// /api/* to the backend and serves the built client bundle for every other
// route.
package gateway

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/sweetshop/pkg/config"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// New builds the gateway app: API proxy, static files, SPA fallback.
func New(cfg config.GatewayConfig, appName string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 30,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": appName})
	})

	target := strings.TrimRight(cfg.APITarget, "/")
	app.All("/api/*", func(c *fiber.Ctx) error {
		c.Request().Header.Set("X-Forwarded-For", c.IP())
		if err := proxy.Do(c, target+c.OriginalURL()); err != nil {
			log.Error().Err(err).Str("path", c.Path()).Msg("proxying to backend")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"detail": "backend unavailable"})
		}
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	})

	// Static bundle, then SPA fallback so client-side routes deep-link.
	app.Static("/", cfg.StaticDir)
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
	})

	return app
}

// requestLogger logs one line per request with status and latency.
func requestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
