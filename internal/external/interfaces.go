package external

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"raincheck/internal/types"
)

// RoutingProvider returns candidate driving routes between two points. An
// empty result with a nil error means the provider found no route.
type RoutingProvider interface {
	GetRoutes(ctx context.Context, start, end types.Point) ([]types.Route, error)
}

// WeatherProvider returns the hourly precipitation probability forecast for a
// location.
type WeatherProvider interface {
	HourlyPrecipitation(ctx context.Context, lat, lng float64) (types.PrecipitationSeries, error)
}

// Geocoder resolves a free-text address to candidate coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]types.GeocodeResult, error)
}

// BreakerReporter exposes a provider's circuit breaker for health checks.
type BreakerReporter interface {
	Name() string
	BreakerState() gobreaker.State
}

// Compile-time interface checks.
var (
	_ RoutingProvider = (*OSRMClient)(nil)
	_ WeatherProvider = (*OpenMeteoClient)(nil)
	_ Geocoder        = (*NominatimClient)(nil)
	_ BreakerReporter = (*BaseClient)(nil)

	_ RoutingProvider = (*StubRoutingProvider)(nil)
	_ WeatherProvider = (*StubWeatherProvider)(nil)
	_ Geocoder        = (*StubGeocoder)(nil)
)
