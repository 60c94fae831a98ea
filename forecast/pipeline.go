// Package forecast turns weekly sales records into quarterly history and a
// quarterly forecast.
//
// The pipeline is straight-line: records are validated against a Schema,
// labels are parsed into dates, history is summed per calendar quarter, and a
// Forecaster predicts weekly values up to the forecast horizon. Predictions are
// summed per quarter for the full quarters after the last observed one. Any failure aborts the whole run with an *Error.
package forecast

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"salesforecast/config"
	"salesforecast/models"
)

// Pipeline runs one forecast request. It holds no per-request state.
type Pipeline struct {
	schema     Schema
	periods    int
	forecaster Forecaster
	logger     *zap.Logger
}

// NewPipeline wires a Pipeline from configuration and a model adapter.
func NewPipeline(cfg config.ForecastConfig, forecaster Forecaster, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		schema:     Schema{WeekField: cfg.WeekField, SalesField: cfg.SalesField},
		periods:    cfg.Periods,
		forecaster: forecaster,
		logger:     logger,
	}
}

// Result is the outcome of a successful run plus a few facts for logging.
type Result struct {
	Response     models.ForecastResponse
	Observations int
	LastObserved time.Time
}

// Run executes the pipeline on a decoded request.
func (p *Pipeline) Run(ctx context.Context, req models.ForecastRequest) (*Result, error) {
	records, err := DecodeRecords(req.Values, p.schema)
	if err != nil {
		return nil, err
	}

	points, err := BuildSeries(records, p.schema.WeekField)
	if err != nil {
		return nil, err
	}

	historical := AggregateQuarterly(points)

	history := MergeByDate(points)
	last := history[len(history)-1].Date
	future := FutureDates(last, p.periods)

	p.logger.Debug("fitting model",
		zap.Int("records", len(records)),
		zap.Int("observations", len(history)),
		zap.Time("last_observed", last),
		zap.Int("steps", len(future)))

	predicted, err := p.forecaster.Forecast(ctx, history, future)
	if err != nil {
		var fe *Error
		if !errors.As(err, &fe) {
			err = modelError(err)
		}
		return nil, err
	}

	return &Result{
		Response: models.ForecastResponse{
			Historical:        historical,
			QuarterlyForecast: ResampleQuarterly(predicted, models.QuarterOf(last)),
		},
		Observations: len(history),
		LastObserved: last,
	}, nil
}
