package analysis

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"raincheck/internal/types"
)

// GeoJSON renders the plan as a FeatureCollection: one LineString feature per
// colored segment followed by one Point feature per weather sample.
func (p *Plan) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, r := range p.Routes {
		segs, err := p.Segments(r.ID)
		if err != nil {
			continue
		}
		best := r.ID == p.BestRouteID
		for i, s := range segs {
			f := geojson.NewFeature(segmentGeometry(s.Points))
			f.Properties["kind"] = "segment"
			f.Properties["route_id"] = r.ID
			f.Properties["segment"] = i
			f.Properties["band"] = string(s.Band)
			f.Properties["color"] = s.Color
			f.Properties["best"] = best
			fc.Append(f)
		}
	}

	for _, w := range p.Weather {
		for i, s := range w.Points {
			f := geojson.NewFeature(toOrb(s.Point))
			f.Properties["kind"] = "sample"
			f.Properties["route_id"] = w.RouteID
			f.Properties["sample"] = i
			f.Properties["rain_chance"] = s.RainChance
			f.Properties["condition"] = string(s.Condition)
			fc.Append(f)
		}
	}

	return fc
}

// segmentGeometry returns a LineString, or a Point for a one-point path.
func segmentGeometry(points []types.Point) orb.Geometry {
	if len(points) == 1 {
		return toOrb(points[0])
	}
	ls := make(orb.LineString, len(points))
	for i, pt := range points {
		ls[i] = toOrb(pt)
	}
	return ls
}

// toOrb converts to orb's [lng, lat] order.
func toOrb(p types.Point) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}
