package geospatial

import (
	"math"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// EarthRadiusMiles is the mean Earth radius used for all distances.
const EarthRadiusMiles = 3958.8

const kmPerMile = 1.609344

// Distance returns the great-circle distance in miles between a and b (haversine).
// Inputs are not range checked; NaN propagates.
func Distance(a, b domain.GeoPoint) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLon := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// DistanceKm is Distance expressed in kilometers.
func DistanceKm(a, b domain.GeoPoint) float64 {
	return Distance(a, b) * kmPerMile
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
