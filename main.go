package main

import (
	"log"

	"go.uber.org/zap"

	"salesforecast/config"
	"salesforecast/forecast"
	"salesforecast/utils"
)

func main() {
	// Load configuration (.env, config.yaml, environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	forecaster := forecast.NewARIMAForecaster(cfg.Forecast, logger)
	app := newApp(cfg, forecaster, logger)

	logger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.Env),
		zap.String("cors_origin", cfg.AllowedOrigin),
		zap.Bool("auth", cfg.AuthEnabled()),
		zap.String("week_field", cfg.Forecast.WeekField),
		zap.String("sales_field", cfg.Forecast.SalesField))

	// Start server
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
