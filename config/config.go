package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default field names are the OLAP captions the sales dashboard sends.
const (
	DefaultWeekField  = "[Due Date].[yqmw].[Week].[MEMBER_CAPTION]"
	DefaultSalesField = "[Measures].[LineTotal-Sales]"
)

// Config holds application configuration.
// It is loaded once at start-up and passed by value to whoever needs it.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	AllowedOrigin     string `mapstructure:"CORS_ALLOWED_ORIGIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	BodyLimitBytes    int    `mapstructure:"BODY_LIMIT_BYTES"`

	Forecast ForecastConfig `mapstructure:",squash"`
}

// ForecastConfig configures the request schema and the model adapter.
type ForecastConfig struct {
	WeekField      string `mapstructure:"WEEK_FIELD"`
	SalesField     string `mapstructure:"SALES_FIELD"`
	Periods        int    `mapstructure:"FORECAST_PERIODS"`
	MaxP           int    `mapstructure:"ARIMA_MAX_P"`
	MaxQ           int    `mapstructure:"ARIMA_MAX_Q"`
	Criterion      string `mapstructure:"ARIMA_CRITERION"`
	SeasonalPeriod int    `mapstructure:"ARIMA_SEASONAL_PERIOD"`
}

var keys = []string{
	"APP_PORT", "ENV", "LOG_LEVEL", "CORS_ALLOWED_ORIGIN", "JWT_SECRET",
	"MAX_REQUESTS_PER_MIN", "BODY_LIMIT_BYTES",
	"WEEK_FIELD", "SALES_FIELD", "FORECAST_PERIODS",
	"ARIMA_MAX_P", "ARIMA_MAX_Q", "ARIMA_CRITERION", "ARIMA_SEASONAL_PERIOD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 60)
	v.SetDefault("BODY_LIMIT_BYTES", 4*1024*1024)

	v.SetDefault("WEEK_FIELD", DefaultWeekField)
	v.SetDefault("SALES_FIELD", DefaultSalesField)
	v.SetDefault("FORECAST_PERIODS", 4)
	v.SetDefault("ARIMA_MAX_P", 3)
	v.SetDefault("ARIMA_MAX_Q", 3)
	v.SetDefault("ARIMA_CRITERION", "aic")
	v.SetDefault("ARIMA_SEASONAL_PERIOD", 0)
}

// Default returns the configuration used when nothing is set in the environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshal of plain defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads .env (if present), an optional config.yaml and the environment.
// Environment variables win over the file, the file wins over defaults.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	// AutomaticEnv only resolves keys viper already knows about when unmarshalling.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the forecast pipeline cannot run with.
func (c Config) Validate() error {
	f := c.Forecast
	switch {
	case strings.TrimSpace(f.WeekField) == "" || strings.TrimSpace(f.SalesField) == "":
		return errors.New("config: WEEK_FIELD and SALES_FIELD must be set")
	case f.WeekField == f.SalesField:
		return errors.New("config: WEEK_FIELD and SALES_FIELD must differ")
	case f.Periods < 1:
		return fmt.Errorf("config: FORECAST_PERIODS must be positive, got %d", f.Periods)
	case f.MaxP < 0 || f.MaxQ < 0:
		return errors.New("config: ARIMA_MAX_P and ARIMA_MAX_Q must not be negative")
	case f.Criterion != "aic" && f.Criterion != "bic":
		return fmt.Errorf("config: ARIMA_CRITERION must be aic or bic, got %q", f.Criterion)
	case f.SeasonalPeriod < 0:
		return errors.New("config: ARIMA_SEASONAL_PERIOD must not be negative")
	case strings.TrimSpace(c.AllowedOrigin) == "" || strings.Contains(c.AllowedOrigin, "*"):
		return errors.New("config: CORS_ALLOWED_ORIGIN must name a single origin")
	case c.BodyLimitBytes < 1:
		return fmt.Errorf("config: BODY_LIMIT_BYTES must be positive, got %d", c.BodyLimitBytes)
	case c.MaxRequestsPerMin < 0:
		return errors.New("config: MAX_REQUESTS_PER_MIN must not be negative")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// AuthEnabled reports whether /forecast requires a bearer token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
