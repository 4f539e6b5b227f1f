package bootstrap

import (
	"os"

	"profitshare-backend/internal/config"
	"profitshare-backend/internal/infrastructure/logging"
	"profitshare-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless handlers, which cannot import internal packages directly.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, "json", os.Stdout)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
