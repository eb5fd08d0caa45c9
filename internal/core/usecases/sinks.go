package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/ports"
	"github.com/samirrijal/homeward/internal/pkg/metrics"
	"github.com/samirrijal/homeward/internal/pkg/telemetry"
)

// LatestFrameTTL is how long the newest frame of a profile stays cached, in seconds.
const LatestFrameTTL = 60

// LatestFrameKey is the cache key holding the newest frame of a profile.
func LatestFrameKey(profile string) string {
	return "homeward:frame:" + profile
}

// DiscardSink drops everything.
type DiscardSink struct{}

func (DiscardSink) PublishFrame(context.Context, *domain.Frame) error         { return nil }
func (DiscardSink) PublishFault(context.Context, *domain.LocationFault) error { return nil }

// FanoutSink delivers to every wrapped sink and joins their errors.
type FanoutSink []ports.FrameSink

// NewFanoutSink skips nil sinks.
func NewFanoutSink(sinks ...ports.FrameSink) FanoutSink {
	out := make(FanoutSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f FanoutSink) PublishFrame(ctx context.Context, frame *domain.Frame) error {
	var errs []error
	for _, s := range f {
		if err := s.PublishFrame(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f FanoutSink) PublishFault(ctx context.Context, fault *domain.LocationFault) error {
	var errs []error
	for _, s := range f {
		if err := s.PublishFault(ctx, fault); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CacheSink keeps the newest frame of each profile in the cache.
type CacheSink struct {
	cache ports.CacheService
}

func NewCacheSink(cache ports.CacheService) *CacheSink {
	return &CacheSink{cache: cache}
}

func (s *CacheSink) PublishFrame(ctx context.Context, frame *domain.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if err := s.cache.Set(ctx, LatestFrameKey(frame.Profile), data, LatestFrameTTL); err != nil {
		return fmt.Errorf("cache frame: %w", err)
	}
	return nil
}

// PublishFault is a no-op; the last good frame stays cached.
func (s *CacheSink) PublishFault(context.Context, *domain.LocationFault) error { return nil }

// RecordingSink appends every frame to the history repository.
type RecordingSink struct {
	frames ports.FrameRepository
}

func NewRecordingSink(frames ports.FrameRepository) *RecordingSink {
	return &RecordingSink{frames: frames}
}

func (s *RecordingSink) PublishFrame(ctx context.Context, frame *domain.Frame) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanFramePersist)
	defer span.End()

	if err := s.frames.Insert(ctx, frame); err != nil {
		span.RecordError(err)
		return fmt.Errorf("record frame: %w", err)
	}
	metrics.FramesPersisted.WithLabelValues(frame.Profile).Inc()
	return nil
}

// PublishFault only logs; faults are not part of frame history.
func (s *RecordingSink) PublishFault(_ context.Context, fault *domain.LocationFault) error {
	slog.Debug("fault not recorded", "profile", fault.Profile, "kind", fault.Kind)
	return nil
}
