package types

// Condition is the discrete weather label derived from a rain probability.
type Condition string

const (
	ConditionClear     Condition = "Clear"
	ConditionCloudy    Condition = "Cloudy"
	ConditionLightRain Condition = "Light Rain"
	ConditionHeavyRain Condition = "Heavy Rain"
	ConditionStorm     Condition = "Storm"
)

// RiskBand is the color band a rain probability falls into when a route is
// drawn on a map.
type RiskBand string

const (
	BandSafe       RiskBand = "safe"
	BandLow        RiskBand = "low"
	BandModerate   RiskBand = "moderate"
	BandUnpleasant RiskBand = "unpleasant"
	BandHeavy      RiskBand = "heavy"
	BandSevere     RiskBand = "severe"
	// BandNone marks a route drawn without weather data.
	BandNone RiskBand = "none"
)

// Recommendation strings shown next to a scored route.
const (
	RecommendStormy  = "Stormy! Avoid."
	RecommendRainy   = "Rainy sections ahead."
	RecommendDrizzle = "Might drizzle."
	RecommendDry     = "Dry route!"
	RecommendSafe    = "Safe to ride."
)
