package geospatial

import (
	"fmt"
	"math"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// DefaultCurvature bends the arc by 70% of the chord length.
const DefaultCurvature = 0.7

// maxSinLat keeps the projection finite near the poles.
const maxSinLat = 0.9999

// Project converts p to Web Mercator world coordinates at zoom 0 (0..TileSize on both axes).
func Project(p domain.GeoPoint) domain.Point {
	sin := math.Sin(toRad(p.Lat))
	sin = math.Min(math.Max(sin, -maxSinLat), maxSinLat)

	return domain.Point{
		X: TileSize * (0.5 + p.Lng/360),
		Y: TileSize * (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)),
	}
}

// CurveArc builds a quadratic arc from `from` to `to`. The control point sits on
// the perpendicular through the chord midpoint, offset by curvature × chord.
// Coordinates are relative to `from`; Scale converts them to screen pixels at zoom.
// Zoom 0 scales like zoom 1.
func CurveArc(from, to domain.GeoPoint, zoom int, curvature float64) domain.Arc {
	p1, p2 := Project(from), Project(to)

	end := domain.Point{X: p2.X - p1.X, Y: p2.Y - p1.Y}
	mid := domain.Point{X: end.X / 2, Y: end.Y / 2}
	ortho := domain.Point{X: end.Y, Y: -end.X}
	ctrl := domain.Point{
		X: mid.X + curvature*ortho.X,
		Y: mid.Y + curvature*ortho.Y,
	}

	if zoom == 0 {
		zoom = 1
	}
	return domain.Arc{
		Origin:  from,
		Control: ctrl,
		End:     end,
		Path:    fmt.Sprintf("M 0,0 q %g,%g %g,%g", ctrl.X, ctrl.Y, end.X, end.Y),
		Scale:   math.Exp2(float64(zoom)),
	}
}
