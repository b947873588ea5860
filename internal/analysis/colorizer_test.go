package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raincheck/internal/types"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		chance float64
		want   types.RiskBand
	}{
		{0, types.BandSafe},
		{10, types.BandSafe},
		{10.5, types.BandLow},
		{30, types.BandLow},
		{31, types.BandModerate},
		{50, types.BandModerate},
		{51, types.BandUnpleasant},
		{70, types.BandUnpleasant},
		{71, types.BandHeavy},
		{90, types.BandHeavy},
		{91, types.BandSevere},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.chance), func(t *testing.T) {
			assert.Equal(t, tt.want, BandFor(tt.chance))
		})
	}
}

func TestPaletteColor(t *testing.T) {
	assert.Len(t, DefaultPalette, 6)
	assert.Equal(t, "#F44336", DefaultPalette.Color(types.BandHeavy))
	assert.Equal(t, DefaultRouteColor, DefaultPalette.Color(types.BandNone))
}

func TestInterpolatedRainChance(t *testing.T) {
	path := meridianPath(5, 4, 0)
	samples := samplesFor([]types.Point{path[0], path[4]}, []int{0, 100})

	got := InterpolatedRainChance(path, samples)

	require.Len(t, got, 5)
	assert.InDelta(t, 0, got[0], 1e-6)
	assert.InDelta(t, 25, got[1], 1e-6)
	assert.InDelta(t, 50, got[2], 1e-6)
	assert.InDelta(t, 75, got[3], 1e-6)
	assert.InDelta(t, 100, got[4], 1e-6)
}

func TestInterpolatedRainChance_OutsideSampledRange(t *testing.T) {
	path := meridianPath(5, 4, 0)
	samples := samplesFor([]types.Point{path[1], path[3]}, []int{20, 60})

	got := InterpolatedRainChance(path, samples)

	assert.InDelta(t, 20, got[0], 1e-6, "before the first sample")
	assert.InDelta(t, 40, got[2], 1e-6)
	assert.InDelta(t, 60, got[4], 1e-6, "after the last sample")
}

func TestInterpolatedRainChance_UnmatchedSample(t *testing.T) {
	path := meridianPath(5, 4, 0)
	stray := types.Point{Lat: 45, Lng: 45}
	samples := samplesFor([]types.Point{path[0], path[2], stray}, []int{0, 40, 90})

	got := InterpolatedRainChance(path, samples)

	// The stray sample sits at path[2]'s distance, so beyond it the last
	// sample's value applies.
	assert.InDelta(t, 20, got[1], 1e-6)
	assert.InDelta(t, 90, got[3], 1e-6)
	assert.InDelta(t, 90, got[4], 1e-6)
}

func TestInterpolatedRainChance_NoSamples(t *testing.T) {
	got := InterpolatedRainChance(meridianPath(4, 1, 0), nil)
	assert.Equal(t, []float64{0, 0, 0, 0}, got)
}

func TestColorize_Degenerate(t *testing.T) {
	assert.Nil(t, Colorize(nil, nil, DefaultPalette))

	p := types.Point{Lat: 1, Lng: 1}
	segs := Colorize([]types.Point{p}, samplesFor([]types.Point{p}, []int{95}), DefaultPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, []types.Point{p}, segs[0].Points)
	assert.Equal(t, types.BandSevere, segs[0].Band)
}

func TestColorize_UniformWeatherIsOneSegment(t *testing.T) {
	path := meridianPath(25, 10, 0)
	sampled := SelectSamplePoints(path, 10)
	samples := samplesFor(sampled, []int{5, 5, 5})

	segs := Colorize(path, samples, nil)

	require.Len(t, segs, 1)
	assert.Equal(t, path, segs[0].Points)
	assert.Equal(t, types.BandSafe, segs[0].Band)
	assert.Equal(t, DefaultPalette[types.BandSafe], segs[0].Color)
}

func TestColorize_SharedBoundary(t *testing.T) {
	path := meridianPath(3, 2, 0)
	samples := samplesFor(path, []int{0, 0, 95})

	segs := Colorize(path, samples, DefaultPalette)

	// path[2] changes the band but has nothing after it, so it closes the
	// first segment and no one-point segment follows.
	require.Len(t, segs, 1)
	assert.Equal(t, path, segs[0].Points)

	path = meridianPath(4, 3, 0)
	samples = samplesFor(path, []int{0, 95, 95, 95})
	segs = Colorize(path, samples, DefaultPalette)
	require.Len(t, segs, 2)
	assert.Equal(t, path[:2], segs[0].Points)
	assert.Equal(t, path[1:], segs[1].Points)
	assert.Equal(t, types.BandSevere, segs[1].Band)
}

func TestColorize_CoverageAndConsistency(t *testing.T) {
	cases := []struct {
		name    string
		n       int
		km      float64
		chances func(i int) int
	}{
		{"rising", 120, 60, func(i int) int { return i * 7 }},
		{"alternating", 300, 74, func(i int) int { return (i % 2) * 95 }},
		{"storm cell", 80, 30, func(i int) int {
			if i == 3 {
				return 100
			}
			return 0
		}},
		{"short", 4, 1, func(i int) int { return 100 - 30*i }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := meridianPath(tc.n, tc.km, 0)
			sampled := SelectSamplePoints(path, tc.km)
			chances := make([]int, len(sampled))
			for i := range chances {
				chances[i] = ClampChance(tc.chances(i))
			}
			samples := samplesFor(sampled, chances)

			segs := Colorize(path, samples, DefaultPalette)
			require.NotEmpty(t, segs)

			// Coverage: concatenation with shared boundaries removed is the path.
			var merged []types.Point
			for i, s := range segs {
				require.GreaterOrEqual(t, len(s.Points), 2)
				if i == 0 {
					merged = append(merged, s.Points...)
					continue
				}
				require.Equal(t, merged[len(merged)-1], s.Points[0], "segment %d must start where %d ended", i, i-1)
				merged = append(merged, s.Points[1:]...)
			}
			assert.Equal(t, path, merged)

			// Consistency: recomputed bands match, except at closing points.
			// A non-final segment's closing point belongs to the next band and
			// the path's final point may close the last segment the same way.
			values := InterpolatedRainChance(path, samples)
			idx := 0
			for i, s := range segs {
				if i > 0 {
					idx--
				}
				for j := range s.Points {
					closing := j == len(s.Points)-1 && (i < len(segs)-1 || idx == len(path)-1)
					if !closing {
						assert.Equal(t, s.Band, BandFor(values[idx]), "segment %d point %d", i, j)
					}
					idx++
				}
				assert.Equal(t, DefaultPalette.Color(s.Band), s.Color)
			}
		})
	}
}

func TestFallbackSegments(t *testing.T) {
	assert.Nil(t, FallbackSegments(nil))

	path := meridianPath(6, 2, 0)
	segs := FallbackSegments(path)
	require.Len(t, segs, 1)
	assert.Equal(t, path, segs[0].Points)
	assert.Equal(t, types.BandNone, segs[0].Band)
	assert.Equal(t, DefaultRouteColor, segs[0].Color)
}
