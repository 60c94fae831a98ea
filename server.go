package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"salesforecast/config"
	"salesforecast/forecast"
	"salesforecast/handlers"
	"salesforecast/middleware"
	"salesforecast/models"
	"salesforecast/routes"
)

// newApp builds the Fiber application from an explicit configuration.
func newApp(cfg config.Config, forecaster forecast.Forecaster, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "salesforecast",
		BodyLimit:             cfg.BodyLimitBytes,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(models.NewErrorResponse("", err.Error()))
		},
	})

	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.CORS(cfg.AllowedOrigin))

	pipeline := forecast.NewPipeline(cfg.Forecast, forecaster, logger)
	routes.SetupRoutes(app, cfg, handlers.NewForecastHandler(pipeline, logger), logger)

	return app
}
