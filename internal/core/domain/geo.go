package domain

import "fmt"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside the latitude/longitude ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// GeoBounds is the lat/lng rectangle spanned by a set of points.
// NorthEast.Lng may be smaller than SouthWest.Lng when the box crosses the antimeridian.
type GeoBounds struct {
	NorthEast GeoPoint `json:"northeast"`
	SouthWest GeoPoint `json:"southwest"`
}

// CrossesAntimeridian reports whether the longitude span wraps past 180°.
func (b GeoBounds) CrossesAntimeridian() bool {
	return b.NorthEast.Lng < b.SouthWest.Lng
}

// PixelDimensions is the size of a map viewport in pixels.
type PixelDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate rejects empty viewports; the zoom math divides by both sides.
func (d PixelDimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, d.Width, d.Height)
	}
	return nil
}

// Point is a position in projected world (pixel) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Arc is a quadratic curve drawn from Origin, expressed relative to Origin in world space.
type Arc struct {
	Origin  GeoPoint `json:"origin"`
	Control Point    `json:"control"`
	End     Point    `json:"end"`
	Path    string   `json:"path"`
	Scale   float64  `json:"scale"`
}
