package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"raincheck/internal/types"
)

// DefaultOSRMURL is the public OSRM demo server.
const DefaultOSRMURL = "https://router.project-osrm.org"

// OSRM response codes.
const (
	osrmCodeOK      = "Ok"
	osrmCodeNoRoute = "NoRoute"
)

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64           `json:"distance"` // metres
	Duration float64           `json:"duration"` // seconds
	Geometry *geojson.Geometry `json:"geometry"`
	Legs     []struct {
		Summary string `json:"summary"`
	} `json:"legs"`
}

// OSRMClient fetches driving alternatives from an OSRM route service.
type OSRMClient struct {
	*BaseClient
	baseURL string
}

// NewOSRMClient creates an OSRMClient. An empty baseURL uses DefaultOSRMURL.
func NewOSRMClient(base *BaseClient, baseURL string) *OSRMClient {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	return &OSRMClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetRoutes requests up to OSRM's alternative count of driving routes from
// start to end with full GeoJSON geometry. OSRM's NoRoute answer is returned
// as an empty slice with no error.
func (c *OSRMClient) GetRoutes(ctx context.Context, start, end types.Point) ([]types.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?alternatives=true&overview=full&geometries=geojson",
		c.baseURL,
		formatCoord(start.Lng), formatCoord(start.Lat),
		formatCoord(end.Lng), formatCoord(end.Lat),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build routing request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// OSRM reports NoRoute with a 400 and a JSON body, so the body is read
	// before the status is judged.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamRouting, "failed to read routing response", err)
	}
	var out osrmResponse
	decodeErr := json.Unmarshal(body, &out)

	if decodeErr == nil && out.Code == osrmCodeNoRoute {
		return []types.Route{}, nil
	}
	if resp.StatusCode != http.StatusOK || decodeErr != nil || out.Code != osrmCodeOK {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeUpstreamRouting,
			"routing provider rejected the request", decodeErr,
			map[string]any{"status": resp.StatusCode, "code": out.Code, "message": out.Message})
	}

	routes := make([]types.Route, 0, len(out.Routes))
	for i, r := range out.Routes {
		routes = append(routes, types.Route{
			ID:          fmt.Sprintf("route-%d", i),
			Label:       routeLabel(r, i),
			DurationMin: r.Duration / 60,
			DistanceKm:  r.Distance / 1000,
			Path:        pathFromGeometry(r.Geometry),
		})
	}
	return routes, nil
}

func routeLabel(r osrmRoute, i int) string {
	var parts []string
	for _, leg := range r.Legs {
		if s := strings.TrimSpace(leg.Summary); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Route %d", i+1)
	}
	return strings.Join(parts, " / ")
}

// pathFromGeometry converts a GeoJSON LineString ([lng, lat] pairs) into a
// travel-ordered path.
func pathFromGeometry(g *geojson.Geometry) []types.Point {
	if g == nil {
		return nil
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil
	}
	path := make([]types.Point, len(ls))
	for i, p := range ls {
		path[i] = types.Point{Lat: p.Lat(), Lng: p.Lon()}
	}
	return path
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
