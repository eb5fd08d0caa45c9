package workflows

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/usecases"
	"github.com/samirrijal/homeward/internal/pkg/telemetry"
)

// TraversalStep is the outcome of one AdvanceSession activity. A skipped
// step carries the counter of the last frame drawn, if any.
type TraversalStep struct {
	FrameID  string   `json:"frame_id,omitempty"`
	Counter  int      `json:"counter"`
	Steps    int      `json:"steps"`
	Distance *float64 `json:"distance_miles,omitempty"`
	Fault    string   `json:"fault,omitempty"`
	Skipped  bool     `json:"skipped,omitempty"`
}

// Home reports whether the marker was drawn on the home position.
func (s TraversalStep) Home() bool {
	return s.FrameID != "" && s.Counter == s.Steps
}

// TraversalActivities holds the activity implementations for the traversal workflow.
type TraversalActivities struct {
	Tracking *usecases.TrackingService
}

// AdvanceSession runs one tick of the named session. Location faults and
// overlapping ticks are part of the result, not activity failures.
func (a *TraversalActivities) AdvanceSession(ctx context.Context, profile string) (TraversalStep, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanTraversalAdvance,
		trace.WithAttributes(attribute.String(telemetry.AttrProfile, profile)))
	defer span.End()

	frame, err := a.Tracking.Tick(ctx, profile)
	switch {
	case errors.Is(err, domain.ErrTickInFlight):
		step := TraversalStep{Skipped: true}
		if last, err := a.Tracking.LatestFrame(ctx, profile); err == nil {
			step.Counter, step.Steps = last.Counter, last.Steps
		}
		return step, nil
	case errors.Is(err, domain.ErrGeolocationFailed), errors.Is(err, domain.ErrGeolocationUnsupported):
		return TraversalStep{Fault: string(domain.FaultKindOf(err))}, nil
	case err != nil && frame == nil:
		span.RecordError(err)
		return TraversalStep{}, err
	}

	// A frame with a publish error was still rendered and counted.
	step := TraversalStep{
		FrameID:  frame.ID,
		Counter:  frame.Counter,
		Steps:    frame.Steps,
		Distance: frame.Distance,
	}
	if err != nil {
		span.RecordError(err)
	}
	return step, nil
}
