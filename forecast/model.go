package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/autoarima"
	"github.com/sartorproj/goarima/timeseries"
	"go.uber.org/zap"

	"salesforecast/config"
	"salesforecast/models"
)

// MinObservations is the smallest history the model adapter accepts: the
// p+d+q+10 points goarima needs to fit the ARIMA(0,1,0) drift fallback.
const MinObservations = 11

// ErrInsufficientData is returned when the history is shorter than MinObservations.
var ErrInsufficientData = errors.New("insufficient data points")

// Forecaster fits a model on history and predicts a value for each future date.
type Forecaster interface {
	Forecast(ctx context.Context, history []models.TimeSeriesPoint, future []time.Time) ([]models.TimeSeriesPoint, error)
}

// ARIMAForecaster selects an ARIMA/SARIMA model with goarima's auto-ARIMA and
// falls back to a random walk with drift when selection fails.
type ARIMAForecaster struct {
	cfg    *autoarima.Config
	logger *zap.Logger
}

// NewARIMAForecaster builds the adapter from the forecast configuration.
func NewARIMAForecaster(cfg config.ForecastConfig, logger *zap.Logger) *ARIMAForecaster {
	ac := autoarima.DefaultConfig()
	ac.MaxP = cfg.MaxP
	ac.MaxQ = cfg.MaxQ
	ac.Criterion = cfg.Criterion
	ac.Stepwise = true
	if cfg.SeasonalPeriod > 0 {
		ac.Seasonal = true
		ac.SeasonalM = cfg.SeasonalPeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ARIMAForecaster{cfg: ac, logger: logger}
}

// Forecast implements Forecaster. History must be sorted with unique dates.
func (f *ARIMAForecaster) Forecast(ctx context.Context, history []models.TimeSeriesPoint, future []time.Time) ([]models.TimeSeriesPoint, error) {
	if len(history) < MinObservations {
		return nil, modelError(fmt.Errorf("%w: got %d, need at least %d", ErrInsufficientData, len(history), MinObservations))
	}
	if err := ctx.Err(); err != nil {
		return nil, modelError(err)
	}

	series, err := toSeries(history)
	if err != nil {
		return nil, modelError(err)
	}

	steps := len(future)
	values, err := f.predictAuto(series, steps)
	if err != nil {
		f.logger.Debug("auto-ARIMA selection failed, using drift model", zap.Error(err))
		values, err = predictDrift(series, steps)
		if err != nil {
			return nil, modelError(err)
		}
	}

	out := make([]models.TimeSeriesPoint, len(future))
	for i, d := range future {
		out[i] = models.TimeSeriesPoint{Date: d, Value: values[i]}
	}
	return out, nil
}

// predictAuto runs model selection. goarima panics when no candidate order
// can be fitted, so the panic is turned into an error.
func (f *ARIMAForecaster) predictAuto(series *timeseries.Series, steps int) (values []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			values, err = nil, fmt.Errorf("model selection panicked: %v", r)
		}
	}()

	cfg := *f.cfg
	if cfg.Seasonal && series.Len() < 2*cfg.SeasonalM+20 {
		cfg.Seasonal = false
	}

	result, err := autoarima.AutoARIMA(series, &cfg)
	if err != nil {
		return nil, err
	}
	if result == nil || (result.Model == nil && result.SeasonalModel == nil) {
		return nil, errors.New("no model selected")
	}
	f.logger.Debug("model selected",
		zap.Int("p", result.P), zap.Int("d", result.D), zap.Int("q", result.Q),
		zap.Bool("seasonal", result.IsSeasonal), zap.Float64("criterion", result.Criterion))

	if steps == 0 {
		return []float64{}, nil
	}
	values, err = result.Predict(steps)
	if err != nil {
		return nil, err
	}
	return values, checkFinite(values, steps)
}

// predictDrift fits ARIMA(0,1,0) with intercept, the last-resort model.
func predictDrift(series *timeseries.Series, steps int) ([]float64, error) {
	m := arima.New(0, 1, 0)
	if err := m.Fit(series); err != nil {
		return nil, err
	}
	if steps == 0 {
		return []float64{}, nil
	}
	values, err := m.Predict(steps)
	if err != nil {
		return nil, err
	}
	return values, checkFinite(values, steps)
}

func toSeries(points []models.TimeSeriesPoint) (*timeseries.Series, error) {
	ts := make([]time.Time, len(points))
	vs := make([]float64, len(points))
	for i, p := range points {
		ts[i] = p.Date
		vs[i] = p.Value
	}
	s, err := timeseries.NewWithTimestamps(ts, vs)
	if err != nil {
		return nil, err
	}
	s.Name = "weekly_sales"
	return s, nil
}

func checkFinite(values []float64, steps int) error {
	if len(values) != steps {
		return fmt.Errorf("model returned %d values for %d steps", len(values), steps)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite prediction at step %d", i+1)
		}
	}
	return nil
}
