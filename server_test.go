package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"salesforecast/config"
	"salesforecast/forecast"
	"salesforecast/models"
)

func testApp(mutate func(*config.Config)) *fiber.App {
	cfg := config.Default()
	cfg.MaxRequestsPerMin = 0
	if mutate != nil {
		mutate(&cfg)
	}
	logger := zap.NewNop()
	return newApp(cfg, forecast.NewARIMAForecaster(cfg.Forecast, logger), logger)
}

// olapBody builds a request with the default dashboard field names.
func olapBody(start time.Time, weeks int) string {
	var b strings.Builder
	b.WriteString(`{"values": [`)
	for i := 0; i < weeks; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		d := start.AddDate(0, 0, 7*i)
		sales := 2000 + 15*float64(i) + 300*math.Sin(2*math.Pi*float64(i)/13) + float64((i*5)%9)
		fmt.Fprintf(&b, `{%q: %q, %q: %.2f}`,
			config.DefaultWeekField, "W/C "+d.Format("02/01/06"),
			config.DefaultSalesField, sales)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestForecastEndToEnd(t *testing.T) {
	app := testApp(nil)

	req := httptest.NewRequest("POST", "/forecast", strings.NewReader(olapBody(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), 78)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var out models.ForecastResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	// 2023-01-02 + 77 weeks = 2024-06-24, so history spans 2023Q1..2024Q2.
	require.Len(t, out.Historical, 6)
	assert.Equal(t, "2023Q1", out.Historical[0].Quarter.String())
	assert.Equal(t, "2024Q2", out.Historical[5].Quarter.String())

	require.Len(t, out.QuarterlyForecast, 4)
	// The first future week is 2024-07-01.
	assert.Equal(t, "2024-07-01", out.QuarterlyForecast[0].QuarterStartDate.Time().Format(models.DateLayout))
	assert.Equal(t, "2025-04-01", out.QuarterlyForecast[3].QuarterStartDate.Time().Format(models.DateLayout))
}

func TestForecastCORSPreflight(t *testing.T) {
	app := testApp(func(c *config.Config) { c.AllowedOrigin = "https://dashboard.example.com" })

	req := httptest.NewRequest("OPTIONS", "/forecast", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "https://dashboard.example.com", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
}

func TestForecastRequiresTokenWhenAuthEnabled(t *testing.T) {
	app := testApp(func(c *config.Config) { c.JWTSecret = "s3cret" })

	req := httptest.NewRequest("POST", "/forecast", strings.NewReader(`{"values": []}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app := testApp(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "salesforecast_http_requests_total")

	resp, err = app.Test(httptest.NewRequest("GET", "/version", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var version map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&version))
	assert.Equal(t, "salesforecast", version["service"])
	assert.NotEmpty(t, version["go_version"])
}

func postForecast(t *testing.T, app *fiber.App, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest("POST", "/forecast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// Two weeks are too short for goarima to fit any model, so the dashboard's
// smallest example is rejected as a whole.
func TestForecastTwoRecordsIsModelError(t *testing.T) {
	app := testApp(func(c *config.Config) {
		c.Forecast.WeekField = "week-label"
		c.Forecast.SalesField = "sales"
	})

	status, out := postForecast(t, app, `{"values": [
		{"week-label": "W/C 01/01/24", "sales": 100},
		{"week-label": "W/C 08/01/24", "sales": 50}
	]}`)
	assert.Equal(t, 422, status)
	assert.JSONEq(t, `"ModelError"`, string(out["code"]))
	assert.NotContains(t, out, "historical")
	assert.NotContains(t, out, "quarterly_forecast")
}

func TestForecastHistoryLengthThreshold(t *testing.T) {
	app := testApp(nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		weeks  int
		status int
	}{
		{2, 422},
		{forecast.MinObservations - 1, 422},
		{forecast.MinObservations, 200},
		{forecast.MinObservations + 1, 200},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d weeks", c.weeks), func(t *testing.T) {
			status, out := postForecast(t, app, olapBody(start, c.weeks))
			require.Equal(t, c.status, status)
			if status != 200 {
				assert.JSONEq(t, `"ModelError"`, string(out["code"]))
				return
			}
			var fc []models.ForecastPoint
			require.NoError(t, json.Unmarshal(out["quarterly_forecast"], &fc))
			require.Len(t, fc, 4)
			// Up to 13 weeks from 2024-01-01 end in 2024Q1.
			assert.Equal(t, "2024-04-01", fc[0].QuarterStartDate.Time().Format(models.DateLayout))
			for _, p := range fc {
				assert.False(t, math.IsNaN(p.PredictedSales) || math.IsInf(p.PredictedSales, 0))
			}
		})
	}
}
