package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"salesforecast/config"
	"salesforecast/handlers"
	"salesforecast/middleware"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, cfg config.Config, forecastHandler *handlers.ForecastHandler, logger *zap.Logger) {
	app.Get("/health", handlers.HandleHealth)
	app.Get("/version", handlers.HandleVersion)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// --- Forecast ---
	chain := []fiber.Handler{middleware.RateLimit(cfg.MaxRequestsPerMin, logger)}
	if cfg.AuthEnabled() {
		chain = append(chain, middleware.Authenticate([]byte(cfg.JWTSecret)))
	}
	chain = append(chain, forecastHandler.HandleForecast)
	app.Post("/forecast", chain...)
}
