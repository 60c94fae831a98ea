package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"salesforecast/forecast"
	"salesforecast/metrics"
	"salesforecast/middleware"
	"salesforecast/models"
)

// ForecastHandler serves POST /forecast.
type ForecastHandler struct {
	pipeline *forecast.Pipeline
	logger   *zap.Logger
}

// NewForecastHandler creates a handler around a configured pipeline.
func NewForecastHandler(pipeline *forecast.Pipeline, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{pipeline: pipeline, logger: logger}
}

// HandleForecast returns quarterly history and a quarterly forecast for weekly sales.
// POST /forecast
func (h *ForecastHandler) HandleForecast(c *fiber.Ctx) error {
	start := time.Now()
	log := h.logger.With(zap.String("request_id", middleware.RequestID(c)))

	req, err := decodeForecastRequest(c.Body())
	if err != nil {
		return h.fail(c, log, err)
	}

	result, err := h.pipeline.Run(c.UserContext(), req)
	if err != nil {
		return h.fail(c, log, err)
	}

	elapsed := time.Since(start)
	metrics.ObserveForecast("ok", elapsed.Seconds(), result.Observations)
	log.Info("forecast generated",
		zap.Int("records", len(req.Values)),
		zap.Int("observations", result.Observations),
		zap.Int("historical_quarters", len(result.Response.Historical)),
		zap.Int("forecast_quarters", len(result.Response.QuarterlyForecast)),
		zap.Duration("elapsed", elapsed))

	return c.Status(fiber.StatusOK).JSON(result.Response)
}

// decodeForecastRequest rejects unknown top-level fields and a missing values list.
func decodeForecastRequest(body []byte) (models.ForecastRequest, error) {
	var req models.ForecastRequest

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, &forecast.Error{Kind: forecast.ErrInputShape, Index: -1, Err: fmt.Errorf("invalid request body: %w", err)}
	}
	if dec.More() {
		return req, &forecast.Error{Kind: forecast.ErrInputShape, Index: -1, Err: errors.New("invalid request body: trailing data")}
	}
	if req.Values == nil {
		return req, &forecast.Error{Kind: forecast.ErrInputShape, Index: -1, Err: errors.New("missing field \"values\"")}
	}
	return req, nil
}

func (h *ForecastHandler) fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	status, code := classify(err)
	metrics.ObserveForecast(code, 0, 0)

	if status >= fiber.StatusInternalServerError {
		log.Error("forecast failed", zap.String("code", code), zap.Error(err))
		return c.Status(status).JSON(models.NewErrorResponse(code, "Failed to generate forecast"))
	}
	log.Warn("forecast rejected", zap.String("code", code), zap.Error(err))
	return c.Status(status).JSON(models.NewErrorResponse(code, err.Error()))
}

// classify maps pipeline errors to an HTTP status and an error code.
func classify(err error) (int, string) {
	var fe *forecast.Error
	if !errors.As(err, &fe) {
		return fiber.StatusInternalServerError, "InternalError"
	}
	switch {
	case errors.Is(fe.Kind, forecast.ErrModel):
		return fiber.StatusUnprocessableEntity, fe.Code()
	case errors.Is(fe.Kind, forecast.ErrInputShape),
		errors.Is(fe.Kind, forecast.ErrDateParse),
		errors.Is(fe.Kind, forecast.ErrNumeric):
		return fiber.StatusBadRequest, fe.Code()
	default:
		return fiber.StatusInternalServerError, "InternalError"
	}
}
