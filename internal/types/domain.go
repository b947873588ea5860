package types

import "time"

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Route is one driving alternative returned by the routing provider.
// Path is travel-ordered from origin to destination and is never reordered.
type Route struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	DurationMin float64 `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
	Path        []Point `json:"path"`
}

// WeatherSample is the forecast captured for one sampled route point.
type WeatherSample struct {
	Point
	CapturedAt time.Time `json:"captured_at"`
	RainChance int       `json:"rain_chance"`
	Condition  Condition `json:"condition"`
}

// RouteWeather is the aggregated rain risk for one route. Points keep the
// travel order of the sampled points.
type RouteWeather struct {
	RouteID           string          `json:"route_id"`
	AverageRainChance int             `json:"average_rain_chance"`
	MaxRainChance     int             `json:"max_rain_chance"`
	Points            []WeatherSample `json:"points"`
	Recommendation    string          `json:"recommendation"`
	Score             float64         `json:"score"`
}

// ColoredSegment is a contiguous run of path points drawn in one color.
// Adjacent segments of a route share their boundary point.
type ColoredSegment struct {
	Points []Point  `json:"points"`
	Band   RiskBand `json:"band"`
	Color  string   `json:"color"`
}

// GeocodeResult is one candidate returned for a free-text address search.
type GeocodeResult struct {
	Label string `json:"label"`
	Point Point  `json:"point"`
}

// PrecipitationSeries is an hourly precipitation probability forecast for one
// location. Time and Probability are parallel; hours the provider left empty
// are omitted.
type PrecipitationSeries struct {
	Time        []time.Time `json:"time"`
	Probability []int       `json:"probability"`
}

// At returns the probability for the hour containing t.
func (s PrecipitationSeries) At(t time.Time) (int, bool) {
	hour := t.UTC().Truncate(time.Hour)
	for i, ts := range s.Time {
		if ts.UTC().Equal(hour) {
			return s.Probability[i], true
		}
	}
	return 0, false
}
