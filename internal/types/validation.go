package types

import "fmt"

// Validation constraint constants.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLng = -180.0
	MaxLng = 180.0

	MaxGeocodeQueryLength = 300
)

// ValidatePoint checks that a coordinate lies inside the valid WGS84 range.
// The returned error is an *AppError carrying the offending field.
func ValidatePoint(p Point) error {
	if p.Lat < MinLat || p.Lat > MaxLat {
		return NewAppErrorWithDetails(ErrCodeValidationInvalidLat,
			fmt.Sprintf("latitude %.6f outside [%.0f, %.0f]", p.Lat, MinLat, MaxLat),
			nil, map[string]any{"lat": p.Lat})
	}
	if p.Lng < MinLng || p.Lng > MaxLng {
		return NewAppErrorWithDetails(ErrCodeValidationInvalidLng,
			fmt.Sprintf("longitude %.6f outside [%.0f, %.0f]", p.Lng, MinLng, MaxLng),
			nil, map[string]any{"lng": p.Lng})
	}
	return nil
}
