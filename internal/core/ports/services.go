package ports

import (
	"context"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// LocationSource delivers the current position of the device tracked by a profile.
type LocationSource interface {
	CurrentPosition(ctx context.Context, profile string) (domain.GeoPoint, error)
}

// LocationStore keeps the latest reading per profile and serves it back as a LocationSource.
type LocationStore interface {
	LocationSource
	Save(ctx context.Context, reading *domain.LocationReading) error
}

// FrameSink receives the output of each animation tick.
type FrameSink interface {
	PublishFrame(ctx context.Context, frame *domain.Frame) error
	PublishFault(ctx context.Context, fault *domain.LocationFault) error
}

// EventPublisher publishes tracking events to a message broker.
type EventPublisher interface {
	FrameSink
	PublishLocation(ctx context.Context, reading *domain.LocationReading) error
}

// EventSubscriber consumes raw device positions from a message broker.
type EventSubscriber interface {
	SubscribeDeviceLocations(ctx context.Context, handler func(ctx context.Context, reading *domain.LocationReading) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
