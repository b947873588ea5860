package external

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"time"

	"raincheck/internal/geo"
	"raincheck/internal/types"
)

// ---------------------------------------------------------------------------
// Stub providers
//
// Stubs let the service boot locally and in tests without network access.
// They log every call and return deterministic values derived from their
// input, so repeated requests give identical plans.
// ---------------------------------------------------------------------------

// stubSpeedKmh converts stub route lengths into durations.
const stubSpeedKmh = 60.0

// StubRoutingProvider returns three synthetic routes: a straight line and two
// alternatives bowed to either side.
type StubRoutingProvider struct {
	logger *slog.Logger
	points int
}

// NewStubRoutingProvider creates a StubRoutingProvider.
func NewStubRoutingProvider(logger *slog.Logger) *StubRoutingProvider {
	return &StubRoutingProvider{logger: logger, points: 60}
}

func (s *StubRoutingProvider) GetRoutes(ctx context.Context, start, end types.Point) ([]types.Route, error) {
	s.logger.InfoContext(ctx, "stub: GetRoutes called",
		"start", start,
		"end", end,
	)
	if geo.SamePoint(start, end) {
		return []types.Route{}, nil
	}

	bows := []struct {
		label  string
		offset float64
	}{
		{"Direct", 0},
		{"Northern detour", 0.15},
		{"Southern detour", -0.15},
	}
	routes := make([]types.Route, 0, len(bows))
	for i, b := range bows {
		path := bowedPath(start, end, s.points, b.offset)
		km := geo.PathLengthKm(path)
		routes = append(routes, types.Route{
			ID:          fmt.Sprintf("route-%d", i),
			Label:       b.label,
			DurationMin: km / stubSpeedKmh * 60,
			DistanceKm:  km,
			Path:        path,
		})
	}
	return routes, nil
}

// bowedPath interpolates n points from a to b, pushed sideways by a sine bump
// of offset times the straight-line span.
func bowedPath(a, b types.Point, n int, offset float64) []types.Point {
	dLat, dLng := b.Lat-a.Lat, b.Lng-a.Lng
	path := make([]types.Point, n)
	for i := range path {
		t := float64(i) / float64(n-1)
		bump := math.Sin(math.Pi*t) * offset
		path[i] = types.Point{
			Lat: a.Lat + t*dLat - bump*dLng,
			Lng: a.Lng + t*dLng + bump*dLat,
		}
	}
	path[n-1] = b
	return path
}

// StubWeatherProvider returns a 48-hour series whose values depend only on
// the rounded location and the hour.
type StubWeatherProvider struct {
	logger *slog.Logger
	clock  types.Clock
}

// NewStubWeatherProvider creates a StubWeatherProvider.
func NewStubWeatherProvider(logger *slog.Logger, clock types.Clock) *StubWeatherProvider {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &StubWeatherProvider{logger: logger, clock: clock}
}

func (s *StubWeatherProvider) HourlyPrecipitation(ctx context.Context, lat, lng float64) (types.PrecipitationSeries, error) {
	s.logger.DebugContext(ctx, "stub: HourlyPrecipitation called",
		"lat", lat,
		"lng", lng,
	)
	day := s.clock.Now().UTC().Truncate(24 * time.Hour)
	seed := stubSeed(fmt.Sprintf("%.2f,%.2f", lat, lng))

	series := types.PrecipitationSeries{
		Time:        make([]time.Time, 48),
		Probability: make([]int, 48),
	}
	for h := range 48 {
		series.Time[h] = day.Add(time.Duration(h) * time.Hour)
		series.Probability[h] = int((seed + uint32(h)*7) % 101)
	}
	return series, nil
}

// StubGeocoder echoes the query back as a single result at a point derived
// from the query text.
type StubGeocoder struct {
	logger *slog.Logger
}

// NewStubGeocoder creates a StubGeocoder.
func NewStubGeocoder(logger *slog.Logger) *StubGeocoder {
	return &StubGeocoder{logger: logger}
}

func (s *StubGeocoder) Search(ctx context.Context, query string) ([]types.GeocodeResult, error) {
	s.logger.InfoContext(ctx, "stub: Search called", "query", query)
	seed := stubSeed(query)
	return []types.GeocodeResult{{
		Label: query,
		Point: types.Point{
			Lat: float64(seed%18000)/100 - 90,
			Lng: float64(seed%36000)/100 - 180,
		},
	}}, nil
}

func stubSeed(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
