package analysis

import (
	"raincheck/internal/geo"
	"raincheck/internal/types"
)

// DefaultRouteColor is used to draw a route that has no weather data.
const DefaultRouteColor = "#2196F3"

// Palette maps each risk band to a display color.
type Palette map[types.RiskBand]string

// DefaultPalette is the six-band color table used by the API.
var DefaultPalette = Palette{
	types.BandSafe:       "#4CAF50",
	types.BandLow:        "#8BC34A",
	types.BandModerate:   "#FFEB3B",
	types.BandUnpleasant: "#FF9800",
	types.BandHeavy:      "#F44336",
	types.BandSevere:     "#9C27B0",
}

// Color returns the color for band, or DefaultRouteColor when the palette has
// no entry for it.
func (p Palette) Color(band types.RiskBand) string {
	if c, ok := p[band]; ok {
		return c
	}
	return DefaultRouteColor
}

// BandFor maps an (interpolated) rain probability to its risk band.
func BandFor(chance float64) types.RiskBand {
	switch {
	case chance > 90:
		return types.BandSevere
	case chance > 70:
		return types.BandHeavy
	case chance > 50:
		return types.BandUnpleasant
	case chance > 30:
		return types.BandModerate
	case chance > 10:
		return types.BandLow
	default:
		return types.BandSafe
	}
}

// Colorize splits path into maximal runs of points sharing one risk band.
//
// Each sample is placed on the path by its cumulative distance, and every path
// point gets a probability interpolated between the two samples around it.
// When the band changes, the point that changed it closes the current segment
// and opens the next one, so adjacent segments share exactly one point.
func Colorize(path []types.Point, samples []types.WeatherSample, palette Palette) []types.ColoredSegment {
	if len(path) == 0 {
		return nil
	}
	if palette == nil {
		palette = DefaultPalette
	}

	chances := InterpolatedRainChance(path, samples)

	band := BandFor(chances[0])
	current := []types.Point{path[0]}
	var segments []types.ColoredSegment

	for i := 1; i < len(path); i++ {
		current = append(current, path[i])
		b := BandFor(chances[i])
		if b == band {
			continue
		}
		segments = append(segments, types.ColoredSegment{
			Points: current,
			Band:   band,
			Color:  palette.Color(band),
		})
		current = []types.Point{path[i]}
		band = b
	}

	// A lone trailing point is already the end of the previous segment.
	if len(current) > 1 || len(segments) == 0 {
		segments = append(segments, types.ColoredSegment{
			Points: current,
			Band:   band,
			Color:  palette.Color(band),
		})
	}
	return segments
}

// InterpolatedRainChance returns the rain probability at every point of path,
// linearly interpolated by distance between the bracketing samples. Points
// before the first sample take its value and points after the last sample take
// the last value. All values are 0 when there are no samples.
func InterpolatedRainChance(path []types.Point, samples []types.WeatherSample) []float64 {
	out := make([]float64, len(path))
	if len(path) == 0 || len(samples) == 0 {
		return out
	}

	cum := geo.CumulativeKm(path)
	tags := tagSamples(path, cum, samples)

	first, last := tags[0], tags[len(tags)-1]
	k := 0
	for i, d := range cum {
		switch {
		case d <= first:
			out[i] = float64(samples[0].RainChance)
			continue
		case d >= last:
			out[i] = float64(samples[len(samples)-1].RainChance)
			continue
		}

		for k < len(tags)-2 && tags[k+1] <= d {
			k++
		}
		lo, hi := float64(samples[k].RainChance), float64(samples[k+1].RainChance)
		ratio := 0.0
		if span := tags[k+1] - tags[k]; span > 0 {
			ratio = clamp01((d - tags[k]) / span)
		}
		out[i] = lo + ratio*(hi-lo)
	}
	return out
}

// tagSamples returns the cumulative path distance of each sample. Samples are
// matched to path points searching forward from the previous match; a sample
// with no match inherits the last known distance.
func tagSamples(path []types.Point, cum []float64, samples []types.WeatherSample) []float64 {
	tags := make([]float64, len(samples))
	cursor := 0
	known := 0.0
	for i, s := range samples {
		for j := cursor; j < len(path); j++ {
			if geo.SamePoint(path[j], s.Point) {
				cursor = j
				known = cum[j]
				break
			}
		}
		tags[i] = known
	}
	return tags
}

// FallbackSegments renders the whole path as one segment in DefaultRouteColor.
// It is used when a route has no weather data.
func FallbackSegments(path []types.Point) []types.ColoredSegment {
	if len(path) == 0 {
		return nil
	}
	points := make([]types.Point, len(path))
	copy(points, path)
	return []types.ColoredSegment{{
		Points: points,
		Band:   types.BandNone,
		Color:  DefaultRouteColor,
	}}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
