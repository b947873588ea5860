package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"raincheck/internal/types"
)

func TestConditionFor(t *testing.T) {
	tests := []struct {
		chance int
		want   types.Condition
	}{
		{0, types.ConditionClear},
		{10, types.ConditionClear},
		{11, types.ConditionCloudy},
		{20, types.ConditionCloudy},
		{21, types.ConditionLightRain},
		{50, types.ConditionLightRain},
		{51, types.ConditionHeavyRain},
		{70, types.ConditionHeavyRain},
		{71, types.ConditionStorm},
		{100, types.ConditionStorm},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.chance), func(t *testing.T) {
			assert.Equal(t, tt.want, ConditionFor(tt.chance))
		})
	}
}

func TestSummarize(t *testing.T) {
	avg, peak := Summarize([]int{0, 20, 80})
	assert.Equal(t, 33, avg)
	assert.Equal(t, 80, peak)
	assert.InDelta(t, 61.2, ComputeScore(avg, peak), 1e-9)

	avg, peak = Summarize([]int{1, 2})
	assert.Equal(t, 2, avg, "half rounds away from zero")
	assert.Equal(t, 2, peak)

	avg, peak = Summarize(nil)
	assert.Zero(t, avg)
	assert.Zero(t, peak)
}

func TestRecommendationFor(t *testing.T) {
	tests := []struct {
		name     string
		avg, max int
		want     string
	}{
		{"storm peak", 10, 75, types.RecommendStormy},
		{"rainy peak", 30, 45, types.RecommendRainy},
		{"drizzle average", 25, 35, types.RecommendDrizzle},
		{"dry", 3, 8, types.RecommendDry},
		{"all zero", 0, 0, types.RecommendDry},
		{"low peak", 5, 15, types.RecommendSafe},
		{"peak at 40 is not rainy", 0, 40, types.RecommendSafe},
		{"peak at 70 is not stormy", 60, 70, types.RecommendRainy},
		{"max 50 avg 10", 10, 50, types.RecommendRainy},
		{"max 15 avg 25", 25, 15, types.RecommendDrizzle},
		{"max 5 avg 5", 5, 5, types.RecommendDry},
		{"max 15 avg 15", 15, 15, types.RecommendSafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecommendationFor(tt.avg, tt.max))
		})
	}
}

func TestScoreSamples(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	points := meridianPath(3, 10, 0)
	samples := []types.WeatherSample{
		NewWeatherSample(points[0], 0, at),
		NewWeatherSample(points[1], 20, at),
		NewWeatherSample(points[2], 80, at),
	}

	rw := ScoreSamples("route-0", samples)

	assert.Equal(t, "route-0", rw.RouteID)
	assert.Equal(t, 33, rw.AverageRainChance)
	assert.Equal(t, 80, rw.MaxRainChance)
	assert.InDelta(t, 61.2, rw.Score, 1e-9)
	assert.Equal(t, types.RecommendStormy, rw.Recommendation)
	assert.Equal(t, samples, rw.Points)
	assert.Equal(t, types.ConditionStorm, rw.Points[2].Condition)
	assert.Equal(t, types.ConditionClear, rw.Points[0].Condition)
}
