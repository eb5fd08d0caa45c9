package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/ports"
	"github.com/samirrijal/homeward/internal/pkg/geospatial"
	"github.com/samirrijal/homeward/internal/pkg/metrics"
	"github.com/samirrijal/homeward/internal/pkg/telemetry"
)

// defaultLocateTimeout bounds a position read when the profile sets none.
const defaultLocateTimeout = 5 * time.Second

// TrackingSession animates one profile's marker from the live device
// position toward home. It owns the animation counter and the last rendered
// frame; at most one tick runs at a time.
type TrackingSession struct {
	profile domain.Profile
	source  ports.LocationSource
	sink    ports.FrameSink
	now     func() time.Time

	inFlight atomic.Bool

	mu      sync.RWMutex
	counter *AnimationCounter
	ticks   int64
	last    *domain.Frame
}

// NewTrackingSession creates a session for profile. A nil source makes every
// tick fail as unsupported; a nil sink discards output.
func NewTrackingSession(profile domain.Profile, source ports.LocationSource, sink ports.FrameSink) *TrackingSession {
	if sink == nil {
		sink = DiscardSink{}
	}
	if profile.LocateTimeout <= 0 {
		profile.LocateTimeout = defaultLocateTimeout
	}
	return &TrackingSession{
		profile: profile,
		source:  source,
		sink:    sink,
		now:     time.Now,
		counter: NewAnimationCounter(profile.Steps),
	}
}

// Profile returns the session configuration.
func (s *TrackingSession) Profile() domain.Profile { return s.profile }

// Counter returns the current animation counter value.
func (s *TrackingSession) Counter() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter.Value()
}

// Last returns the most recent frame, or nil before the first successful tick.
func (s *TrackingSession) Last() *domain.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Tick reads one position and renders one frame.
//
// It returns domain.ErrTickInFlight without doing anything if another tick
// is still running. A failed read publishes a LocationFault instead of a
// frame and leaves the counter untouched.
func (s *TrackingSession) Tick(ctx context.Context) (*domain.Frame, error) {
	name := s.profile.Name
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.TicksSkipped.WithLabelValues(name).Inc()
		return nil, domain.ErrTickInFlight
	}
	defer s.inFlight.Store(false)

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSessionTick,
		trace.WithAttributes(attribute.String(telemetry.AttrProfile, name)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.TickDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	live, err := s.locate(ctx)
	if err != nil {
		kind := domain.FaultKindOf(err)
		span.SetStatus(codes.Error, string(kind))
		span.SetAttributes(attribute.String(telemetry.AttrFault, string(kind)))
		metrics.Ticks.WithLabelValues(name, "fault").Inc()
		metrics.LocationFaults.WithLabelValues(name, string(kind)).Inc()

		if perr := s.sink.PublishFault(ctx, s.fault(kind, err)); perr != nil {
			slog.Warn("publish location fault", "profile", name, "error", perr)
		}
		return nil, err
	}

	frame := s.render(live)
	span.SetAttributes(attribute.Int(telemetry.AttrCounter, frame.Counter))
	if frame.Zoom != nil {
		span.SetAttributes(attribute.Int(telemetry.AttrZoom, *frame.Zoom))
	}

	if err := s.sink.PublishFrame(ctx, frame); err != nil {
		span.RecordError(err)
		metrics.Ticks.WithLabelValues(name, "publish_error").Inc()
		return frame, fmt.Errorf("publish frame: %w", err)
	}
	metrics.Ticks.WithLabelValues(name, "frame").Inc()
	return frame, nil
}

// Run ticks at the profile interval until ctx is cancelled. Every tick runs
// in its own goroutine so a slow position read shows up as skipped ticks
// instead of a growing backlog. Run returns after in-flight ticks finish.
func (s *TrackingSession) Run(ctx context.Context) error {
	interval := s.profile.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	slog.Info("tracking session started", "profile", s.profile.Name, "interval", interval.String(), "steps", s.profile.Steps)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tracking session stopped", "profile", s.profile.Name)
			return nil
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.tickAndLog(ctx)
			}()
		}
	}
}

func (s *TrackingSession) tickAndLog(ctx context.Context) {
	_, err := s.Tick(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTickInFlight):
		slog.Debug("tick skipped, previous read still running", "profile", s.profile.Name)
	case errors.Is(err, domain.ErrGeolocationUnsupported), errors.Is(err, domain.ErrGeolocationFailed):
		slog.Warn("position unavailable", "profile", s.profile.Name, "error", err)
	case ctx.Err() != nil:
	default:
		slog.Error("tick failed", "profile", s.profile.Name, "error", err)
	}
}

func (s *TrackingSession) locate(ctx context.Context) (domain.GeoPoint, error) {
	if s.source == nil {
		return domain.GeoPoint{}, domain.ErrGeolocationUnsupported
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLocate)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.profile.LocateTimeout)
	defer cancel()

	p, err := s.source.CurrentPosition(ctx, s.profile.Name)
	if err != nil {
		if errors.Is(err, domain.ErrGeolocationUnsupported) || errors.Is(err, domain.ErrGeolocationFailed) {
			return domain.GeoPoint{}, err
		}
		return domain.GeoPoint{}, fmt.Errorf("%w: %w", domain.ErrGeolocationFailed, err)
	}
	if !p.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("%w: fix out of range %s", domain.ErrGeolocationFailed, p)
	}
	return p, nil
}

// render advances the counter and builds the frame for live.
func (s *TrackingSession) render(live domain.GeoPoint) *domain.Frame {
	p := s.profile

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := Step(s.counter, live, p.Home)
	s.ticks++

	frame := &domain.Frame{
		ID:       uuid.NewString(),
		Profile:  p.Name,
		Icon:     p.Icon,
		Tick:     s.ticks,
		Counter:  s.counter.Value(),
		Steps:    p.Steps,
		Live:     live,
		Position: pos,
		Home:     p.Home,
		Heading:  geospatial.Bearing(live, p.Home),
		Time:     s.now().UTC(),
	}

	zoom := geospatial.ZoomMax
	if p.AuxDisplay {
		dist := geospatial.Distance(live, p.Home)
		bounds := geospatial.BoundsOf(live, p.Home)
		zoom = geospatial.ZoomLevel(bounds, p.Viewport) - p.ZoomPadding

		frame.Distance = &dist
		frame.Bounds = &bounds
		frame.Zoom = &zoom

		metrics.DistanceHome.WithLabelValues(p.Name).Set(dist)
		metrics.ZoomLevel.WithLabelValues(p.Name).Set(float64(zoom))
	}
	if p.Curve {
		arc := geospatial.CurveArc(p.Home, live, zoom, p.Curvature)
		frame.Arc = &arc
	}

	s.last = frame
	return frame
}

func (s *TrackingSession) fault(kind domain.FaultKind, err error) *domain.LocationFault {
	anchor := s.profile.Home
	if last := s.Last(); last != nil {
		anchor = last.Position
	}
	return &domain.LocationFault{
		Profile: s.profile.Name,
		Kind:    kind,
		Message: kind.Message(),
		Detail:  err.Error(),
		Anchor:  anchor,
		Time:    s.now().UTC(),
	}
}
