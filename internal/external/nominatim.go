package external

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"raincheck/internal/types"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// DefaultGeocodeLimit is the number of candidates requested per search.
const DefaultGeocodeLimit = 5

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// NominatimClient searches addresses with the Nominatim API. Nominatim's usage
// policy requires an identifying User-Agent, which BaseClient sets.
type NominatimClient struct {
	*BaseClient
	baseURL string
	limit   int
}

// NewNominatimClient creates a NominatimClient. An empty baseURL uses
// DefaultNominatimURL.
func NewNominatimClient(base *BaseClient, baseURL string) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limit:      DefaultGeocodeLimit,
	}
}

// Search returns the candidates for query in provider relevance order. Places
// with unparseable or out-of-range coordinates are skipped.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]types.GeocodeResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", strconv.Itoa(c.limit))

	var places []nominatimPlace
	if err := c.GetJSON(ctx, c.baseURL+"/search?"+q.Encode(), &places); err != nil {
		return nil, err
	}

	results := make([]types.GeocodeResult, 0, len(places))
	for _, p := range places {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lng, errLng := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		pt := types.Point{Lat: lat, Lng: lng}
		if types.ValidatePoint(pt) != nil {
			continue
		}
		results = append(results, types.GeocodeResult{Label: p.DisplayName, Point: pt})
	}
	return results, nil
}
