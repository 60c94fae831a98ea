// Package metrics exposes Prometheus instruments for the forecast service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salesforecast"

var (
	// ForecastRequests counts forecast requests by outcome code ("ok" or an error kind).
	ForecastRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast requests by outcome",
		},
		[]string{"outcome"},
	)

	ForecastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time spent fitting and predicting per request",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	ForecastObservations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_observations",
			Help:      "Weekly observations per forecast request",
			Buckets:   []float64{1, 12, 26, 52, 104, 208, 520},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

// ObserveForecast records the outcome of one forecast request.
func ObserveForecast(outcome string, seconds float64, observations int) {
	ForecastRequests.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		ForecastDuration.Observe(seconds)
		ForecastObservations.Observe(float64(observations))
	}
}
