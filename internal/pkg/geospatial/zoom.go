package geospatial

import (
	"math"

	"github.com/samirrijal/homeward/internal/core/domain"
)

const (
	// TileSize is the edge of one world tile in pixels at zoom 0.
	TileSize = 256
	// ZoomMax is the deepest zoom level a map surface supports.
	ZoomMax = 21
	// ZoomMin is returned by ZoomLevel when the fit is not a finite number.
	ZoomMin = 0
)

// mercatorLat returns the Mercator-projected latitude, clamped so the poles stay finite.
func mercatorLat(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	radX2 := math.Log((1+sin)/(1-sin)) / 2
	return math.Max(math.Min(radX2, math.Pi), -math.Pi) / 2
}

func fitZoom(pixels, worldPixels int, fraction float64) float64 {
	return math.Floor(math.Log2(float64(pixels) / float64(worldPixels) / fraction))
}

// BoundsZoom returns the largest zoom at which bounds fits entirely inside viewport,
// capped at ZoomMax. A single-point bounds fits at every zoom and yields ZoomMax.
// Empty viewports are not rejected: the division produces a non-finite result
// which is returned unchanged.
func BoundsZoom(bounds domain.GeoBounds, viewport domain.PixelDimensions) float64 {
	ne, sw := bounds.NorthEast, bounds.SouthWest

	latFraction := (mercatorLat(ne.Lat) - mercatorLat(sw.Lat)) / math.Pi

	lngDiff := ne.Lng - sw.Lng
	if lngDiff < 0 {
		lngDiff += 360
	}
	lngFraction := lngDiff / 360

	latZoom := fitZoom(viewport.Height, TileSize, latFraction)
	lngZoom := fitZoom(viewport.Width, TileSize, lngFraction)

	return math.Min(math.Min(latZoom, lngZoom), ZoomMax)
}

// ZoomLevel is BoundsZoom as an integer. Non-finite fits map to ZoomMin.
func ZoomLevel(bounds domain.GeoBounds, viewport domain.PixelDimensions) int {
	z := BoundsZoom(bounds, viewport)
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return ZoomMin
	}
	return int(z)
}
