package geospatial

import (
	"math"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// Bearing returns the angle in degrees from `from` to `to`, treating latitude
// as the x axis and longitude as the y axis of a flat plane. It is only meant
// for rotating a marker icon over short distances, not for navigation.
// The result lies in (-180, 180]; identical points give 0.
func Bearing(from, to domain.GeoPoint) float64 {
	dLng := to.Lng - from.Lng
	if dLng == 0 {
		dLng = 0 // -0 would put due south at -180
	}
	return math.Atan2(dLng, to.Lat-from.Lat) * 180 / math.Pi
}
