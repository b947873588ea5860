package analysis

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"raincheck/internal/types"
)

// RouteSource returns candidate driving routes between two points.
type RouteSource interface {
	GetRoutes(ctx context.Context, start, end types.Point) ([]types.Route, error)
}

// AddressSearcher resolves free-text addresses to coordinates.
type AddressSearcher interface {
	Search(ctx context.Context, query string) ([]types.GeocodeResult, error)
}

// Plan is the result of one route search. It lives only as long as the
// request that produced it.
type Plan struct {
	ID          string               `json:"id"`
	Origin      types.Point          `json:"origin"`
	Destination types.Point          `json:"destination"`
	Routes      []types.Route        `json:"routes"`
	Weather     []types.RouteWeather `json:"weather"`
	BestRouteID string               `json:"best_route_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`

	segments map[string][]types.ColoredSegment
}

// Best returns the weather of the lowest-scoring route.
func (p *Plan) Best() (types.RouteWeather, bool) {
	if p.BestRouteID == "" {
		return types.RouteWeather{}, false
	}
	return p.WeatherFor(p.BestRouteID)
}

// WeatherFor returns the analyzed weather of one route.
func (p *Plan) WeatherFor(routeID string) (types.RouteWeather, bool) {
	for _, w := range p.Weather {
		if w.RouteID == routeID {
			return w, true
		}
	}
	return types.RouteWeather{}, false
}

// Route returns the route with the given ID.
func (p *Plan) Route(routeID string) (types.Route, bool) {
	for _, r := range p.Routes {
		if r.ID == routeID {
			return r, true
		}
	}
	return types.Route{}, false
}

// Segments returns a copy of the colored segments of a route. A route without
// weather data is returned as a single segment in DefaultRouteColor.
func (p *Plan) Segments(routeID string) ([]types.ColoredSegment, error) {
	route, ok := p.Route(routeID)
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeNotFoundRoute,
			"route not found in plan", nil, map[string]any{"route_id": routeID})
	}
	if segs, ok := p.segments[routeID]; ok && len(segs) > 0 {
		out := make([]types.ColoredSegment, len(segs))
		for i, seg := range segs {
			seg.Points = slices.Clone(seg.Points)
			out[i] = seg
		}
		return out, nil
	}
	return FallbackSegments(route.Path), nil
}

// Planner runs the full search pipeline: routing, weather analysis, best
// route selection and colorization.
type Planner struct {
	routes   RouteSource
	geocoder AddressSearcher
	analyzer *Analyzer
	palette  Palette
	logger   *slog.Logger
	clock    types.Clock
}

// PlannerOption is a functional option for configuring a Planner.
type PlannerOption func(*Planner)

// WithPalette overrides DefaultPalette.
func WithPalette(p Palette) PlannerOption {
	return func(pl *Planner) {
		pl.palette = p
	}
}

// NewPlanner creates a Planner. geocoder may be nil, in which case Geocode
// always returns no results.
func NewPlanner(routes RouteSource, geocoder AddressSearcher, analyzer *Analyzer, logger *slog.Logger, clock types.Clock, opts ...PlannerOption) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	p := &Planner{
		routes:   routes,
		geocoder: geocoder,
		analyzer: analyzer,
		palette:  DefaultPalette,
		logger:   logger,
		clock:    clock,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan fetches the candidate routes between origin and destination and scores
// each of them. A routing failure is returned as-is and is not retried here.
// No routes is a valid result: the plan is returned with an empty Routes list
// and no best route.
func (p *Planner) Plan(ctx context.Context, origin, destination types.Point) (*Plan, error) {
	if err := types.ValidatePoint(origin); err != nil {
		return nil, err
	}
	if err := types.ValidatePoint(destination); err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:          uuid.NewString(),
		Origin:      origin,
		Destination: destination,
		Routes:      []types.Route{},
		Weather:     []types.RouteWeather{},
		CreatedAt:   p.clock.Now(),
		segments:    make(map[string][]types.ColoredSegment),
	}

	routes, err := p.routes.GetRoutes(ctx, origin, destination)
	if err != nil {
		p.logger.ErrorContext(ctx, "routing failed",
			"origin", origin,
			"destination", destination,
			"error", err,
		)
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamRouting, "routing provider unavailable", err)
	}
	if len(routes) == 0 {
		p.logger.InfoContext(ctx, "no routes found", "plan_id", plan.ID)
		return plan, nil
	}

	plan.Routes = routes
	plan.Weather = p.analyzer.AnalyzeAll(ctx, routes)

	if best, ok := SelectBest(plan.Weather); ok {
		plan.BestRouteID = best.RouteID
	}

	for i, r := range routes {
		w := plan.Weather[i]
		if len(w.Points) == 0 {
			plan.segments[r.ID] = FallbackSegments(r.Path)
			continue
		}
		plan.segments[r.ID] = Colorize(r.Path, w.Points, p.palette)
	}

	p.logger.InfoContext(ctx, "plan computed",
		"plan_id", plan.ID,
		"routes", len(routes),
		"best_route_id", plan.BestRouteID,
	)
	return plan, nil
}

// Geocode resolves a free-text query. Provider failures are logged and
// reported as no results.
func (p *Planner) Geocode(ctx context.Context, query string) []types.GeocodeResult {
	query = strings.TrimSpace(query)
	if query == "" || p.geocoder == nil {
		return []types.GeocodeResult{}
	}

	results, err := p.geocoder.Search(ctx, query)
	if err != nil {
		p.logger.WarnContext(ctx, "geocoding failed", "query", query, "error", err)
		return []types.GeocodeResult{}
	}
	if results == nil {
		return []types.GeocodeResult{}
	}
	return results
}
