// Package config defines the RainCheck configuration. It is loaded once at
// process start and treated as immutable afterwards.
//
// Values are resolved with the priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> struct tag defaults (Lowest)
//
// Any invalid value stops the process on startup.
package config

import (
	"time"

	"raincheck/internal/types"
)

// SecretString is an alias for types.SecretString so secrets in the config
// are redacted when logged.
type SecretString = types.SecretString

// Config is the top-level configuration.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"raincheck"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Providers     ProvidersConfig
	Analysis      AnalysisConfig
	AWS           AWSConfig
	Observability ObservabilityConfig

	// Build metadata, injected via ldflags.
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"25s" validate:"min=1s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"min=1s"`

	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ProvidersConfig holds the third-party provider endpoints.
type ProvidersConfig struct {
	// UseStubs swaps every provider for its deterministic stub.
	UseStubs bool `envconfig:"USE_STUB_PROVIDERS" default:"false"`

	OSRMURL         string       `envconfig:"OSRM_URL" default:"https://router.project-osrm.org" validate:"required,url"`
	OpenMeteoURL    string       `envconfig:"OPEN_METEO_URL" validate:"omitempty,url"`
	OpenMeteoAPIKey SecretString `envconfig:"OPEN_METEO_API_KEY"`
	NominatimURL    string       `envconfig:"NOMINATIM_URL" default:"https://nominatim.openstreetmap.org" validate:"required,url"`

	UserAgent   string        `envconfig:"PROVIDER_USER_AGENT" default:"RainCheck/1.0 (+https://github.com/raincheck)" validate:"required"`
	HTTPTimeout time.Duration `envconfig:"PROVIDER_HTTP_TIMEOUT" default:"8s" validate:"min=1s"`
	MaxRetries  int           `envconfig:"PROVIDER_MAX_RETRIES" default:"2" validate:"min=0,max=5"`
}

// AnalysisConfig tunes the route analyzer and forecast cache.
type AnalysisConfig struct {
	ForecastTTL       time.Duration `envconfig:"FORECAST_CACHE_TTL" default:"5m" validate:"min=1s"`
	JanitorInterval   time.Duration `envconfig:"FORECAST_CACHE_JANITOR_INTERVAL" default:"1m" validate:"min=1s"`
	LookupConcurrency int           `envconfig:"FORECAST_LOOKUP_CONCURRENCY" default:"15" validate:"min=1,max=64"`
}

// AWSConfig holds AWS regional settings used by the metrics client.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack support, empty in production.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsEnabled  bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"RainCheck"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrDotenv indicates an explicitly requested dotenv file could not be read.
	ErrDotenv ConfigErrorType = "DOTENV_FAILED"
)
