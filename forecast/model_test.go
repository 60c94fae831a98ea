package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesforecast/config"
	"salesforecast/models"
)

func weeklySeries(start time.Time, values []float64) []models.TimeSeriesPoint {
	points := make([]models.TimeSeriesPoint, len(values))
	for i, v := range values {
		points[i] = models.TimeSeriesPoint{Date: start.Add(time.Duration(i) * Step), Value: v}
	}
	return points
}

func syntheticSales(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		trend := 1000 + 5*float64(i)
		season := 80 * math.Sin(2*math.Pi*float64(i)/13)
		noise := float64((i*7)%11-5) * 3
		values[i] = trend + season + noise
	}
	return values
}

func newTestForecaster() *ARIMAForecaster {
	return NewARIMAForecaster(config.Default().Forecast, nil)
}

func TestARIMAForecasterSinglePointIsModelError(t *testing.T) {
	history := weeklySeries(day(2024, 1, 1), []float64{100})
	future := FutureDates(history[0].Date, 4)

	out, err := newTestForecaster().Forecast(context.Background(), history, future)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModel)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestARIMAForecasterBelowMinimum(t *testing.T) {
	history := weeklySeries(day(2024, 1, 1), syntheticSales(MinObservations-1))
	future := FutureDates(history[len(history)-1].Date, 4)

	_, err := newTestForecaster().Forecast(context.Background(), history, future)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestARIMAForecasterPredictsEveryFutureDate(t *testing.T) {
	history := weeklySeries(day(2023, 1, 2), syntheticSales(60))
	last := history[len(history)-1].Date
	future := FutureDates(last, 4)

	out, err := newTestForecaster().Forecast(context.Background(), history, future)
	require.NoError(t, err)
	require.Len(t, out, len(future))
	for i, p := range out {
		assert.True(t, future[i].Equal(p.Date))
		assert.False(t, math.IsNaN(p.Value) || math.IsInf(p.Value, 0), "step %d not finite", i)
	}
}

func TestARIMAForecasterMinimumHistory(t *testing.T) {
	history := weeklySeries(day(2024, 1, 1), syntheticSales(MinObservations))
	future := FutureDates(history[len(history)-1].Date, 4)

	out, err := newTestForecaster().Forecast(context.Background(), history, future)
	require.NoError(t, err)
	assert.Len(t, out, len(future))
}

func TestARIMAForecasterConstantSeries(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 250
	}
	history := weeklySeries(day(2024, 1, 1), values)
	future := FutureDates(history[len(history)-1].Date, 2)

	out, err := newTestForecaster().Forecast(context.Background(), history, future)
	require.NoError(t, err)
	require.Len(t, out, len(future))
	for _, p := range out {
		assert.InDelta(t, 250, p.Value, 1e-6)
	}
}

func TestARIMAForecasterNoFutureDates(t *testing.T) {
	history := weeklySeries(day(2024, 1, 1), syntheticSales(20))

	out, err := newTestForecaster().Forecast(context.Background(), history, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestARIMAForecasterCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history := weeklySeries(day(2024, 1, 1), syntheticSales(20))
	_, err := newTestForecaster().Forecast(ctx, history, FutureDates(history[19].Date, 1))
	assert.ErrorIs(t, err, ErrModel)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPredictDriftFollowsTrend(t *testing.T) {
	values := make([]float64, 15)
	for i := range values {
		values[i] = 10 * float64(i)
	}
	series, err := toSeries(weeklySeries(day(2024, 1, 1), values))
	require.NoError(t, err)

	out, err := predictDrift(series, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{150, 160, 170}, out, 1e-9)
}
