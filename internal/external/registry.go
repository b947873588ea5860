package external

import (
	"log/slog"
	"net/http"

	"raincheck/internal/config"
	"raincheck/internal/types"
)

// ClientRegistry holds the provider clients the planner depends on. It is
// the one place that decides between real providers and stubs.
type ClientRegistry struct {
	Routing  RoutingProvider
	Weather  WeatherProvider
	Geocoder Geocoder

	// Breakers lists the real clients for health reporting. Empty in stub
	// mode.
	Breakers []BreakerReporter
}

// RegistryOption is a functional option for configuring a ClientRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	httpClient *http.Client
	clock      types.Clock
	baseOpts   []BaseClientOption
}

// WithHTTPClient shares one *http.Client between all providers. By default
// each provider gets its own client with cfg.Providers.HTTPTimeout.
func WithHTTPClient(c *http.Client) RegistryOption {
	return func(rc *registryConfig) {
		rc.httpClient = c
	}
}

// WithClock sets the clock used by the stub weather provider.
func WithClock(clock types.Clock) RegistryOption {
	return func(rc *registryConfig) {
		rc.clock = clock
	}
}

// WithBaseClientOptions appends options applied to every real BaseClient.
func WithBaseClientOptions(opts ...BaseClientOption) RegistryOption {
	return func(rc *registryConfig) {
		rc.baseOpts = append(rc.baseOpts, opts...)
	}
}

// NewClientRegistry builds the provider clients from configuration.
// cfg.Providers.UseStubs selects the deterministic stubs, which need no
// network access.
func NewClientRegistry(cfg *config.Config, logger *slog.Logger, opts ...RegistryOption) (*ClientRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rc := &registryConfig{clock: types.RealClock{}}
	for _, opt := range opts {
		opt(rc)
	}

	if cfg.Providers.UseStubs {
		logger.Info("initializing providers in STUB mode", "environment", cfg.Environment)
		return newStubRegistry(logger, rc.clock), nil
	}

	logger.Info("initializing providers",
		"environment", cfg.Environment,
		"osrm_url", cfg.Providers.OSRMURL,
		"nominatim_url", cfg.Providers.NominatimURL,
		"open_meteo_customer", cfg.Providers.OpenMeteoAPIKey.IsSet(),
	)
	return newProductionRegistry(cfg, rc), nil
}

func newStubRegistry(logger *slog.Logger, clock types.Clock) *ClientRegistry {
	stubLogger := logger.With("mode", "stub")
	return &ClientRegistry{
		Routing:  NewStubRoutingProvider(stubLogger),
		Weather:  NewStubWeatherProvider(stubLogger, clock),
		Geocoder: NewStubGeocoder(stubLogger),
	}
}

func newProductionRegistry(cfg *config.Config, rc *registryConfig) *ClientRegistry {
	p := cfg.Providers
	policy := DefaultRetryPolicy()
	policy.MaxRetries = p.MaxRetries

	base := func(name string, code types.ErrorCode) *BaseClient {
		httpClient := rc.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: p.HTTPTimeout}
		}
		opts := append([]BaseClientOption{WithFailureCode(code)}, rc.baseOpts...)
		return NewBaseClient(httpClient, name, policy, p.UserAgent, opts...)
	}

	osrm := NewOSRMClient(base("osrm", types.ErrCodeUpstreamRouting), p.OSRMURL)
	meteo := NewOpenMeteoClient(base("open-meteo", types.ErrCodeUpstreamForecast), p.OpenMeteoURL, p.OpenMeteoAPIKey)
	nominatim := NewNominatimClient(base("nominatim", types.ErrCodeUpstreamGeocoding), p.NominatimURL)

	return &ClientRegistry{
		Routing:  osrm,
		Weather:  meteo,
		Geocoder: nominatim,
		Breakers: []BreakerReporter{osrm, meteo, nominatim},
	}
}
