package analysis

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"raincheck/internal/geo"
	"raincheck/internal/types"
)

// meridianPath returns n points evenly spaced along the meridian at lng,
// spanning lengthKm from latitude 10.
func meridianPath(n int, lengthKm, lng float64) []types.Point {
	degPerKm := 180 / (math.Pi * geo.EarthRadiusKm)
	path := make([]types.Point, n)
	if n == 1 {
		path[0] = types.Point{Lat: 10, Lng: lng}
		return path
	}
	step := lengthKm / float64(n-1)
	for i := range path {
		path[i] = types.Point{Lat: 10 + float64(i)*step*degPerKm, Lng: lng}
	}
	return path
}

// indexesIn returns the index in path of every point of sub, matching in
// order. ok is false when sub is not an ordered subsequence of path.
func indexesIn(path, sub []types.Point) (idx []int, ok bool) {
	j := 0
	for _, s := range sub {
		for j < len(path) && path[j] != s {
			j++
		}
		if j == len(path) {
			return nil, false
		}
		idx = append(idx, j)
		j++
	}
	return idx, true
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeSource answers lookups with fn and counts calls.
type fakeSource struct {
	fn    func(lat, lng float64) (int, error)
	calls atomic.Int32
}

func (f *fakeSource) RainProbability(_ context.Context, lat, lng float64) (int, error) {
	f.calls.Add(1)
	return f.fn(lat, lng)
}

func constantSource(v int) *fakeSource {
	return &fakeSource{fn: func(float64, float64) (int, error) { return v, nil }}
}

type fakeRoutes struct {
	routes []types.Route
	err    error
}

func (f *fakeRoutes) GetRoutes(_ context.Context, _, _ types.Point) ([]types.Route, error) {
	return f.routes, f.err
}

type fakeGeocoder struct {
	results []types.GeocodeResult
	err     error
}

func (f *fakeGeocoder) Search(_ context.Context, _ string) ([]types.GeocodeResult, error) {
	return f.results, f.err
}

func samplesFor(points []types.Point, chances []int) []types.WeatherSample {
	out := make([]types.WeatherSample, len(points))
	for i, p := range points {
		out[i] = NewWeatherSample(p, chances[i], time.Time{})
	}
	return out
}
