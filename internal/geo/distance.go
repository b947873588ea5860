// Package geo holds the small amount of spherical geometry the route scorer
// needs: great-circle distances, cumulative path lengths, coordinate rounding
// and tolerant coordinate comparison.
package geo

import (
	"math"

	"github.com/golang/geo/s2"

	"raincheck/internal/types"
)

// EarthRadiusKm is the mean Earth radius used for all distance math.
const EarthRadiusKm = 6371.0

// CoordinateTolerance is the largest per-axis difference, in degrees, at which
// two coordinates are considered the same point (about 0.1 m).
const CoordinateTolerance = 1e-6

// HaversineKm returns the great-circle distance in kilometers between a and b.
func HaversineKm(a, b types.Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// CumulativeKm returns, for every index i of path, the distance traveled from
// path[0] to path[i] along the path. The result has the same length as path
// and starts at 0.
func CumulativeKm(path []types.Point) []float64 {
	out := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		out[i] = out[i-1] + HaversineKm(path[i-1], path[i])
	}
	return out
}

// PathLengthKm returns the total along-path length of path.
func PathLengthKm(path []types.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += HaversineKm(path[i-1], path[i])
	}
	return total
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// RoundPoint rounds both axes of p to the given number of decimal places.
func RoundPoint(p types.Point, decimals int) types.Point {
	return types.Point{Lat: Round(p.Lat, decimals), Lng: Round(p.Lng, decimals)}
}

// SamePoint reports whether a and b are within CoordinateTolerance on both
// axes.
func SamePoint(a, b types.Point) bool {
	return math.Abs(a.Lat-b.Lat) <= CoordinateTolerance &&
		math.Abs(a.Lng-b.Lng) <= CoordinateTolerance
}
