package analysis

import (
	"math"
	"time"

	"raincheck/internal/types"
)

// Score weights. The worst point weighs more than the average so a single
// storm cell on an otherwise dry route still scores as risky.
const (
	AverageWeight = 0.4
	MaxWeight     = 0.6
)

// ConditionFor maps a rain probability to its condition label. Thresholds
// are strict and checked from the most severe down.
func ConditionFor(rainChance int) types.Condition {
	switch {
	case rainChance > 70:
		return types.ConditionStorm
	case rainChance > 50:
		return types.ConditionHeavyRain
	case rainChance > 20:
		return types.ConditionLightRain
	case rainChance > 10:
		return types.ConditionCloudy
	default:
		return types.ConditionClear
	}
}

// Summarize returns the rounded mean and the maximum of the given
// probabilities. Both are 0 for an empty input.
func Summarize(chances []int) (average, maximum int) {
	if len(chances) == 0 {
		return 0, 0
	}
	sum := 0
	maximum = chances[0]
	for _, c := range chances {
		sum += c
		if c > maximum {
			maximum = c
		}
	}
	average = int(math.Round(float64(sum) / float64(len(chances))))
	return average, maximum
}

// ComputeScore combines the average and maximum rain chance into a single
// comparable number. Lower is better.
func ComputeScore(average, maximum int) float64 {
	return AverageWeight*float64(average) + MaxWeight*float64(maximum)
}

// RecommendationFor picks the advice shown for a route. Exactly one branch
// applies; a route with a 10-40% peak and a low average falls through to
// RecommendSafe.
func RecommendationFor(average, maximum int) string {
	switch {
	case maximum > 70:
		return types.RecommendStormy
	case maximum > 40:
		return types.RecommendRainy
	case average > 20:
		return types.RecommendDrizzle
	case maximum < 10:
		return types.RecommendDry
	default:
		return types.RecommendSafe
	}
}

// NewWeatherSample builds the sample recorded for one sampled point.
func NewWeatherSample(p types.Point, rainChance int, capturedAt time.Time) types.WeatherSample {
	return types.WeatherSample{
		Point:      p,
		CapturedAt: capturedAt,
		RainChance: rainChance,
		Condition:  ConditionFor(rainChance),
	}
}

// ScoreSamples reduces the ordered samples of one route into its RouteWeather.
func ScoreSamples(routeID string, samples []types.WeatherSample) types.RouteWeather {
	chances := make([]int, len(samples))
	for i, s := range samples {
		chances[i] = s.RainChance
	}
	avg, peak := Summarize(chances)

	return types.RouteWeather{
		RouteID:           routeID,
		AverageRainChance: avg,
		MaxRainChance:     peak,
		Points:            samples,
		Recommendation:    RecommendationFor(avg, peak),
		Score:             ComputeScore(avg, peak),
	}
}
