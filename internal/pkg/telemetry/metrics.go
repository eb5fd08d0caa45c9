package telemetry

// Span names used for tracing.
const (
	SpanSessionTick      = "tracker.session.tick"
	SpanLocate           = "tracker.session.locate"
	SpanLocationSubmit   = "ingress.location.submit"
	SpanFramePersist     = "history.frame.persist"
	SpanTraversalAdvance = "workflow.traversal.advance"
)

// Span attribute keys.
const (
	AttrProfile = "homeward.profile"
	AttrCounter = "homeward.counter"
	AttrFault   = "homeward.fault"
	AttrZoom    = "homeward.zoom"
)
