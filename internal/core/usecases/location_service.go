package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/ports"
	"github.com/samirrijal/homeward/internal/pkg/metrics"
	"github.com/samirrijal/homeward/internal/pkg/telemetry"
)

// LocationService accepts device fixes and makes them available to the tracker.
type LocationService struct {
	catalog   *ProfileCatalog
	store     ports.LocationStore
	publisher ports.EventPublisher
}

// NewLocationService creates a new LocationService. publisher may be nil.
func NewLocationService(catalog *ProfileCatalog, store ports.LocationStore, publisher ports.EventPublisher) *LocationService {
	return &LocationService{catalog: catalog, store: store, publisher: publisher}
}

// Submit validates and stores a reading for profile. transport labels the
// ingress path in metrics ("http", "nats").
func (s *LocationService) Submit(ctx context.Context, transport string, reading *domain.LocationReading) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLocationSubmit,
		trace.WithAttributes(attribute.String(telemetry.AttrProfile, reading.Profile)))
	defer span.End()

	if _, err := s.catalog.Get(reading.Profile); err != nil {
		return err
	}
	if !reading.Point.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCoordinate, reading.Point)
	}
	if reading.Accuracy < 0 {
		return fmt.Errorf("%w: negative accuracy", domain.ErrInvalidCoordinate)
	}
	if reading.Time.IsZero() {
		reading.Time = time.Now().UTC()
	}

	if err := s.store.Save(ctx, reading); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store location: %w", err)
	}
	metrics.LocationsReceived.WithLabelValues(reading.Profile, transport).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishLocation(ctx, reading); err != nil {
			slog.Warn("publish location", "profile", reading.Profile, "error", err)
		}
	}
	return nil
}

// Current returns the stored position of profile.
func (s *LocationService) Current(ctx context.Context, profile string) (domain.GeoPoint, error) {
	if _, err := s.catalog.Get(profile); err != nil {
		return domain.GeoPoint{}, err
	}
	return s.store.CurrentPosition(ctx, profile)
}
