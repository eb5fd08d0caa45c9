package usecases

import (
	"fmt"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/pkg/geospatial"
)

// ZoomResult is the viewport fit for a set of points.
type ZoomResult struct {
	Bounds domain.GeoBounds `json:"bounds"`
	Raw    float64          `json:"raw"`
	Zoom   int              `json:"zoom"`
}

// GeoService validates input for the stateless geometry endpoints.
type GeoService struct{}

func NewGeoService() *GeoService { return &GeoService{} }

func checkPoints(points ...domain.GeoPoint) error {
	for _, p := range points {
		if !p.Valid() {
			return fmt.Errorf("%w: %s", domain.ErrInvalidCoordinate, p)
		}
	}
	return nil
}

// Distance returns the great-circle distance in miles, or kilometres when km is set.
func (s *GeoService) Distance(from, to domain.GeoPoint, km bool) (float64, error) {
	if err := checkPoints(from, to); err != nil {
		return 0, err
	}
	if km {
		return geospatial.DistanceKm(from, to), nil
	}
	return geospatial.Distance(from, to), nil
}

// Bearing returns the planar heading in degrees from one point toward another.
func (s *GeoService) Bearing(from, to domain.GeoPoint) (float64, error) {
	if err := checkPoints(from, to); err != nil {
		return 0, err
	}
	return geospatial.Bearing(from, to), nil
}

// Zoom fits the bounds of points into viewport.
func (s *GeoService) Zoom(points []domain.GeoPoint, viewport domain.PixelDimensions) (*ZoomResult, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", domain.ErrInvalidCoordinate)
	}
	if err := checkPoints(points...); err != nil {
		return nil, err
	}
	if err := viewport.Validate(); err != nil {
		return nil, err
	}
	b := geospatial.BoundsOf(points...)
	return &ZoomResult{
		Bounds: b,
		Raw:    geospatial.BoundsZoom(b, viewport),
		Zoom:   geospatial.ZoomLevel(b, viewport),
	}, nil
}

// Interpolate returns the position counter/steps of the way from current to home.
func (s *GeoService) Interpolate(current, home domain.GeoPoint, counter, steps int) (domain.GeoPoint, error) {
	if err := checkPoints(current, home); err != nil {
		return domain.GeoPoint{}, err
	}
	if steps <= 0 || counter < 0 || counter > steps {
		return domain.GeoPoint{}, fmt.Errorf("%w: counter %d out of range for %d steps", domain.ErrInvalidArgument, counter, steps)
	}
	return Interpolate(current, home, counter, steps), nil
}

// Curve builds the arc drawn from one point to another at the given zoom.
func (s *GeoService) Curve(from, to domain.GeoPoint, zoom int, curvature float64) (domain.Arc, error) {
	if err := checkPoints(from, to); err != nil {
		return domain.Arc{}, err
	}
	if zoom < geospatial.ZoomMin || zoom > geospatial.ZoomMax {
		return domain.Arc{}, fmt.Errorf("%w: zoom %d outside %d..%d", domain.ErrInvalidArgument, zoom, geospatial.ZoomMin, geospatial.ZoomMax)
	}
	if curvature == 0 {
		curvature = geospatial.DefaultCurvature
	}
	return geospatial.CurveArc(from, to, zoom, curvature), nil
}
