package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raincheck/internal/types"
)

var (
	origin      = types.Point{Lat: 10, Lng: 0}
	destination = types.Point{Lat: 10.09, Lng: 0}
)

func twoRoutes() []types.Route {
	return []types.Route{
		{ID: "route-0", Label: "Wet Road", DistanceKm: 10, DurationMin: 12, Path: meridianPath(25, 10, 1)},
		{ID: "route-1", Label: "Dry Road", DistanceKm: 10, DurationMin: 14, Path: meridianPath(25, 10, 0)},
	}
}

func splitSource() *fakeSource {
	return &fakeSource{fn: func(_, lng float64) (int, error) {
		if lng < 0.5 {
			return 5, nil
		}
		return 75, nil
	}}
}

func newTestPlanner(routes RouteSource, geocoder AddressSearcher, src ForecastSource) *Planner {
	clock := fixedClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	a := NewAnalyzer(src, quietLogger(), clock)
	return NewPlanner(routes, geocoder, a, quietLogger(), clock)
}

func TestPlanner_Plan(t *testing.T) {
	p := newTestPlanner(&fakeRoutes{routes: twoRoutes()}, nil, splitSource())

	plan, err := p.Plan(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	require.Len(t, plan.Weather, 2)
	assert.Equal(t, "route-1", plan.BestRouteID)

	best, ok := plan.Best()
	require.True(t, ok)
	assert.InDelta(t, 5, best.Score, 1e-9)
	assert.Equal(t, types.RecommendDry, best.Recommendation)

	wet, ok := plan.WeatherFor("route-0")
	require.True(t, ok)
	assert.InDelta(t, 75, wet.Score, 1e-9)
	assert.Equal(t, types.RecommendStormy, wet.Recommendation)

	segs, err := plan.Segments("route-0")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, types.BandHeavy, segs[0].Band)
	assert.Len(t, segs[0].Points, 25)

	first := segs[0].Points[0]
	segs[0].Points[0] = types.Point{Lat: 89, Lng: 89}
	segs[0].Color = "#000000"
	again, err := plan.Segments("route-0")
	require.NoError(t, err)
	assert.Equal(t, first, again[0].Points[0], "callers cannot mutate the plan")
	assert.NotEqual(t, "#000000", again[0].Color)
}

func TestPlanner_Plan_NoRoutes(t *testing.T) {
	p := newTestPlanner(&fakeRoutes{}, nil, constantSource(0))

	plan, err := p.Plan(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Empty(t, plan.Routes)
	assert.NotNil(t, plan.Routes)
	assert.Empty(t, plan.BestRouteID)

	_, ok := plan.Best()
	assert.False(t, ok)
}

func TestPlanner_Plan_RouteWithoutGeometryNeverBest(t *testing.T) {
	routes := []types.Route{
		{ID: "nogeom", Label: "Broken", DistanceKm: 10, DurationMin: 9},
		{ID: "real", Label: "Main Road", DistanceKm: 10, DurationMin: 12, Path: meridianPath(25, 10, 0)},
	}
	p := newTestPlanner(&fakeRoutes{routes: routes}, nil, constantSource(30))

	plan, err := p.Plan(context.Background(), origin, destination)
	require.NoError(t, err)

	require.Len(t, plan.Weather, 2)
	assert.Empty(t, plan.Weather[0].Points)
	assert.Equal(t, "real", plan.BestRouteID)

	best, ok := plan.Best()
	require.True(t, ok)
	assert.InDelta(t, 30, best.Score, 1e-9)
}

func TestPlanner_Plan_OnlyRoutesWithoutGeometry(t *testing.T) {
	p := newTestPlanner(&fakeRoutes{routes: []types.Route{{ID: "nogeom", DistanceKm: 4}}}, nil, constantSource(0))

	plan, err := p.Plan(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Len(t, plan.Routes, 1)
	assert.Empty(t, plan.BestRouteID)
}

func TestPlanner_Plan_RoutingFailure(t *testing.T) {
	t.Run("plain error is wrapped", func(t *testing.T) {
		p := newTestPlanner(&fakeRoutes{err: errors.New("dial tcp: refused")}, nil, constantSource(0))

		_, err := p.Plan(context.Background(), origin, destination)

		var appErr *types.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, types.ErrCodeUpstreamRouting, appErr.Code)
	})

	t.Run("app error passes through", func(t *testing.T) {
		upstream := types.NewAppError(types.ErrCodeUpstreamRateLimited, "slow down", nil)
		p := newTestPlanner(&fakeRoutes{err: upstream}, nil, constantSource(0))

		_, err := p.Plan(context.Background(), origin, destination)
		assert.Same(t, upstream, err)
	})
}

func TestPlanner_Plan_InvalidCoordinates(t *testing.T) {
	routes := &fakeRoutes{routes: twoRoutes()}
	p := newTestPlanner(routes, nil, constantSource(0))

	_, err := p.Plan(context.Background(), types.Point{Lat: 91}, destination)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidLat, appErr.Code)
}

func TestPlan_Segments(t *testing.T) {
	route := types.Route{ID: "route-0", Path: meridianPath(4, 1, 0)}
	plan := &Plan{Routes: []types.Route{route}}

	segs, err := plan.Segments("route-0")
	require.NoError(t, err)
	assert.Equal(t, FallbackSegments(route.Path), segs, "no weather falls back to one default segment")

	_, err = plan.Segments("route-9")
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundRoute, appErr.Code)
}

func TestPlan_GeoJSON(t *testing.T) {
	p := newTestPlanner(&fakeRoutes{routes: twoRoutes()}, nil, splitSource())
	plan, err := p.Plan(context.Background(), origin, destination)
	require.NoError(t, err)

	fc := plan.GeoJSON()

	segments, samples := 0, 0
	for _, f := range fc.Features {
		switch f.Properties["kind"] {
		case "segment":
			segments++
			ls, ok := f.Geometry.(orb.LineString)
			require.True(t, ok)
			assert.InDelta(t, 10, ls[0].Lat(), 1e-9, "coordinates are [lng, lat]")
			assert.Equal(t, f.Properties["route_id"] == "route-0", ls[0].Lon() > 0.5)
			assert.Equal(t, f.Properties["route_id"] == "route-1", f.Properties["best"])
		case "sample":
			samples++
			_, ok := f.Geometry.(orb.Point)
			assert.True(t, ok)
		}
	}
	assert.Equal(t, 2, segments)
	assert.Equal(t, 6, samples)

	raw, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"FeatureCollection"`)
}

func TestPlanner_Geocode(t *testing.T) {
	found := []types.GeocodeResult{{Label: "Lisbon", Point: types.Point{Lat: 38.72, Lng: -9.14}}}

	p := newTestPlanner(&fakeRoutes{}, &fakeGeocoder{results: found}, constantSource(0))
	assert.Equal(t, found, p.Geocode(context.Background(), "  Lisbon "))
	assert.Equal(t, []types.GeocodeResult{}, p.Geocode(context.Background(), "   "))

	failing := newTestPlanner(&fakeRoutes{}, &fakeGeocoder{err: errors.New("503")}, constantSource(0))
	got := failing.Geocode(context.Background(), "Lisbon")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	none := newTestPlanner(&fakeRoutes{}, nil, constantSource(0))
	assert.Empty(t, none.Geocode(context.Background(), "Lisbon"))
}
