package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"raincheck/internal/types"
)

// ForecastSource returns the rain probability (0-100) forecast at a point.
// Implementations are expected to cache and to degrade failures to 0 on
// their own; the Analyzer isolates failures again per point regardless.
type ForecastSource interface {
	RainProbability(ctx context.Context, lat, lng float64) (int, error)
}

// Analyzer scores routes by sampling forecasts along them.
type Analyzer struct {
	source      ForecastSource
	logger      *slog.Logger
	clock       types.Clock
	lookupLimit int
}

// AnalyzerOption is a functional option for configuring an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLookupLimit caps the number of forecast lookups in flight for a single
// route. Zero or a negative value means no limit.
func WithLookupLimit(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.lookupLimit = n
	}
}

// NewAnalyzer creates an Analyzer reading forecasts from source.
func NewAnalyzer(source ForecastSource, logger *slog.Logger, clock types.Clock, opts ...AnalyzerOption) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	a := &Analyzer{
		source: source,
		logger: logger,
		clock:  clock,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeRouteWeather samples the route, looks up every sample concurrently
// and reduces the results into a RouteWeather. It never fails: a lookup that
// errors or panics counts as a dry (0%) point and the other points are
// unaffected. Samples keep the travel order regardless of completion order.
func (a *Analyzer) AnalyzeRouteWeather(ctx context.Context, route types.Route) types.RouteWeather {
	points := SelectSamplePoints(route.Path, route.DistanceKm)
	samples := make([]types.WeatherSample, len(points))

	var g errgroup.Group
	if a.lookupLimit > 0 {
		g.SetLimit(a.lookupLimit)
	}
	for i, p := range points {
		g.Go(func() error {
			chance := a.lookup(ctx, route.ID, i, p)
			samples[i] = NewWeatherSample(p, chance, a.clock.Now())
			return nil
		})
	}
	_ = g.Wait()

	rw := ScoreSamples(route.ID, samples)
	a.logger.DebugContext(ctx, "route analyzed",
		"route_id", route.ID,
		"samples", len(samples),
		"avg", rw.AverageRainChance,
		"max", rw.MaxRainChance,
		"score", rw.Score,
	)
	return rw
}

// lookup fetches one sample's rain probability with failure isolation.
func (a *Analyzer) lookup(ctx context.Context, routeID string, idx int, p types.Point) (chance int) {
	defer func() {
		if rvr := recover(); rvr != nil {
			a.logger.WarnContext(ctx, "forecast lookup panicked, assuming dry",
				"route_id", routeID,
				"sample", idx,
				"panic", fmt.Sprintf("%v", rvr),
			)
			chance = 0
		}
	}()

	c, err := a.source.RainProbability(ctx, p.Lat, p.Lng)
	if err != nil {
		a.logger.WarnContext(ctx, "forecast lookup failed, assuming dry",
			"route_id", routeID,
			"sample", idx,
			"lat", p.Lat,
			"lng", p.Lng,
			"error", err,
		)
		return 0
	}
	return ClampChance(c)
}

// AnalyzeAll analyzes every route concurrently and returns the results in the
// same order as routes.
func (a *Analyzer) AnalyzeAll(ctx context.Context, routes []types.Route) []types.RouteWeather {
	results := make([]types.RouteWeather, len(routes))

	var g errgroup.Group
	for i, r := range routes {
		g.Go(func() error {
			results[i] = a.AnalyzeRouteWeather(ctx, r)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// SelectBest returns the route weather with the lowest score. Ties keep the
// earlier entry. Entries without samples carry no forecast and are never
// chosen. ok is false when no entry has samples.
func SelectBest(weathers []types.RouteWeather) (best types.RouteWeather, ok bool) {
	for _, w := range weathers {
		if len(w.Points) == 0 {
			continue
		}
		if !ok || w.Score < best.Score {
			best, ok = w, true
		}
	}
	return best, ok
}

// ClampChance bounds a probability to [0, 100].
func ClampChance(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}
