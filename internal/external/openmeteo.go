package external

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"raincheck/internal/types"
)

// Open-Meteo endpoints. The customer endpoint requires an API key.
const (
	DefaultOpenMeteoURL  = "https://api.open-meteo.com"
	CustomerOpenMeteoURL = "https://customer-api.open-meteo.com"
)

const openMeteoTimeLayout = "2006-01-02T15:04"

type openMeteoResponse struct {
	Hourly struct {
		Time                     []string `json:"time"`
		PrecipitationProbability []*int   `json:"precipitation_probability"`
	} `json:"hourly"`
}

// OpenMeteoClient reads hourly precipitation probability from Open-Meteo.
type OpenMeteoClient struct {
	*BaseClient
	baseURL string
	apiKey  types.SecretString
}

// NewOpenMeteoClient creates an OpenMeteoClient. With an API key and no
// explicit baseURL the customer endpoint is used.
func NewOpenMeteoClient(base *BaseClient, baseURL string, apiKey types.SecretString) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
		if apiKey.IsSet() {
			baseURL = CustomerOpenMeteoURL
		}
	}
	return &OpenMeteoClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// HourlyPrecipitation returns today's and tomorrow's hourly precipitation
// probability at lat/lng, in UTC.
func (c *OpenMeteoClient) HourlyPrecipitation(ctx context.Context, lat, lng float64) (types.PrecipitationSeries, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lng))
	q.Set("hourly", "precipitation_probability")
	q.Set("timezone", "UTC")
	q.Set("forecast_days", "2")
	if c.apiKey.IsSet() {
		q.Set("apikey", c.apiKey.Unmask())
	}

	var out openMeteoResponse
	if err := c.GetJSON(ctx, c.baseURL+"/v1/forecast?"+q.Encode(), &out); err != nil {
		return types.PrecipitationSeries{}, err
	}

	hourly := out.Hourly
	if len(hourly.Time) != len(hourly.PrecipitationProbability) {
		return types.PrecipitationSeries{}, types.NewAppError(types.ErrCodeUpstreamForecast,
			fmt.Sprintf("forecast series length mismatch: %d times, %d values",
				len(hourly.Time), len(hourly.PrecipitationProbability)), nil)
	}

	series := types.PrecipitationSeries{
		Time:        make([]time.Time, 0, len(hourly.Time)),
		Probability: make([]int, 0, len(hourly.Time)),
	}
	for i, raw := range hourly.Time {
		v := hourly.PrecipitationProbability[i]
		if v == nil {
			continue
		}
		ts, err := time.ParseInLocation(openMeteoTimeLayout, raw, time.UTC)
		if err != nil {
			return types.PrecipitationSeries{}, types.NewAppError(types.ErrCodeUpstreamForecast,
				fmt.Sprintf("unparseable forecast time %q", raw), err)
		}
		series.Time = append(series.Time, ts)
		series.Probability = append(series.Probability, *v)
	}
	return series, nil
}
