package geospatial

import (
	"github.com/golang/geo/s2"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// Bounds accumulates points into the smallest lat/lng rectangle containing them.
// Longitude grows along the shorter arc, so two points either side of the
// antimeridian produce a box that wraps rather than one spanning the globe.
type Bounds struct {
	rect s2.Rect
}

// NewBounds returns an empty accumulator.
func NewBounds() *Bounds {
	return &Bounds{rect: s2.EmptyRect()}
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p domain.GeoPoint) *Bounds {
	b.rect = b.rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	return b
}

// IsEmpty reports whether no point has been added yet.
func (b *Bounds) IsEmpty() bool {
	return b.rect.IsEmpty()
}

// GeoBounds returns the corners of the accumulated rectangle.
func (b *Bounds) GeoBounds() domain.GeoBounds {
	lo, hi := b.rect.Lo(), b.rect.Hi()
	return domain.GeoBounds{
		NorthEast: domain.GeoPoint{Lat: hi.Lat.Degrees(), Lng: hi.Lng.Degrees()},
		SouthWest: domain.GeoPoint{Lat: lo.Lat.Degrees(), Lng: lo.Lng.Degrees()},
	}
}

// BoundsOf returns the bounds of the given points.
func BoundsOf(points ...domain.GeoPoint) domain.GeoBounds {
	b := NewBounds()
	for _, p := range points {
		b.Extend(p)
	}
	return b.GeoBounds()
}
