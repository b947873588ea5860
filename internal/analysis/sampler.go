// Package analysis implements the route weather-scoring engine: selecting
// sample points along a route, scoring the forecasts gathered for them, and
// mapping the scored samples back onto the route geometry as colored
// segments.
package analysis

import (
	"math"

	"raincheck/internal/geo"
	"raincheck/internal/types"
)

// Sampling policy constants. Forecast lookups are the dominant cost, so the
// number of samples per route is bounded on both sides.
const (
	SampleIntervalKm = 5.0
	MinSamples       = 3
	MaxSamples       = 15
)

// TargetSampleCount returns clamp(ceil(totalDistanceKm/SampleIntervalKm),
// MinSamples, MaxSamples).
func TargetSampleCount(totalDistanceKm float64) int {
	if totalDistanceKm <= 0 || math.IsNaN(totalDistanceKm) {
		return MinSamples
	}
	n := math.Ceil(totalDistanceKm / SampleIntervalKm)
	switch {
	case n < MinSamples:
		return MinSamples
	case n > MaxSamples:
		return MaxSamples
	default:
		return int(n)
	}
}

// SelectSamplePoints picks an ordered subset of path to request forecasts
// for. The first and last points of path are always included and the result
// never holds more than TargetSampleCount(totalDistanceKm) points.
//
// totalDistanceKm comes from the routing provider and may disagree with the
// measured length of path. Spacing follows totalDistanceKm; when it is zero
// the measured length is used instead.
func SelectSamplePoints(path []types.Point, totalDistanceKm float64) []types.Point {
	if len(path) == 0 {
		return nil
	}

	target := TargetSampleCount(totalDistanceKm)
	if len(path) <= target {
		out := make([]types.Point, len(path))
		copy(out, path)
		return out
	}

	interval := totalDistanceKm / float64(target-1)
	if interval <= 0 || math.IsNaN(interval) {
		interval = geo.PathLengthKm(path) / float64(target-1)
	}
	last := len(path) - 1
	if interval <= 0 {
		// Every point coincides; the endpoints carry all the information.
		return []types.Point{path[0], path[last]}
	}

	samples := make([]types.Point, 0, target)
	samples = append(samples, path[0])
	lastEmitted := 0

	accumulated := 0.0
	next := interval
	for i := 1; i <= last; i++ {
		accumulated += geo.HaversineKm(path[i-1], path[i])
		if accumulated < next {
			continue
		}
		// A single long edge may cross several thresholds; emit once and
		// move the threshold past the current position.
		for next <= accumulated {
			next += interval
		}
		// Keep one slot free for the destination.
		if len(samples) >= target-1 && i != last {
			continue
		}
		samples = append(samples, path[i])
		lastEmitted = i
	}

	// Floating-point drift can leave the final threshold just out of reach.
	if lastEmitted != last {
		samples = append(samples, path[last])
	}

	return samples
}
