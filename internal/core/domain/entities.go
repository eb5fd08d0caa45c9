package domain

import (
	"errors"
	"fmt"
	"time"
)

// Profile is the static configuration of one tracking demo: where home is,
// which icon moves, how many steps a traversal takes and which auxiliary
// values are rendered alongside the marker.
type Profile struct {
	Name          string          `json:"name"`
	Home          GeoPoint        `json:"home"`
	Icon          string          `json:"icon"`
	IconSize      int             `json:"icon_size"`
	Steps         int             `json:"steps"`
	CycleDuration time.Duration   `json:"cycle_duration"`
	TickInterval  time.Duration   `json:"tick_interval"`
	LocateTimeout time.Duration   `json:"locate_timeout"`
	AuxDisplay    bool            `json:"aux_display"`
	Viewport      PixelDimensions `json:"viewport"`
	ZoomPadding   int             `json:"zoom_padding"`
	Curve         bool            `json:"curve"`
	Curvature     float64         `json:"curvature"`
}

// DefaultCycleDuration is how long one home-bound traversal lasts when a
// profile sets neither a tick interval nor a cycle duration.
const DefaultCycleDuration = 8 * time.Second

// Interval returns the time between two animation ticks.
func (p Profile) Interval() time.Duration {
	if p.TickInterval > 0 {
		return p.TickInterval
	}
	cycle := p.CycleDuration
	if cycle <= 0 {
		cycle = DefaultCycleDuration
	}
	if p.Steps <= 0 {
		return cycle
	}
	return cycle / time.Duration(p.Steps)
}

// Validate checks that a profile can drive a session.
func (p Profile) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.Steps <= 0 {
		errs = append(errs, fmt.Errorf("steps must be positive, got %d", p.Steps))
	} else if iv := p.Interval(); iv <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", iv))
	}
	if !p.Home.Valid() {
		errs = append(errs, fmt.Errorf("%w: home %s", ErrInvalidCoordinate, p.Home))
	}
	if p.AuxDisplay {
		if err := p.Viewport.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.LocateTimeout < 0 {
		errs = append(errs, errors.New("locate_timeout must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("profile %q: %w", p.Name, errors.Join(errs...))
	}
	return nil
}

// Frame is everything a map surface needs to draw one animation tick.
type Frame struct {
	ID       string     `json:"id"`
	Profile  string     `json:"profile"`
	Icon     string     `json:"icon"`
	Tick     int64      `json:"tick"`
	Counter  int        `json:"counter"`
	Steps    int        `json:"steps"`
	Live     GeoPoint   `json:"live"`
	Position GeoPoint   `json:"position"`
	Home     GeoPoint   `json:"home"`
	Heading  float64    `json:"heading"`
	Distance *float64   `json:"distance_miles,omitempty"`
	Bounds   *GeoBounds `json:"bounds,omitempty"`
	Zoom     *int       `json:"zoom,omitempty"`
	Arc      *Arc       `json:"arc,omitempty"`
	Time     time.Time  `json:"time"`
}

// LocationReading is one position fix reported by a device.
type LocationReading struct {
	Profile  string    `json:"profile"`
	Point    GeoPoint  `json:"point"`
	Accuracy float64   `json:"accuracy,omitempty"` // meters
	Time     time.Time `json:"time"`
}

// FaultKind classifies why a tick could not read a position.
type FaultKind string

const (
	FaultUnsupported FaultKind = "unsupported"
	FaultFailed      FaultKind = "failed"
)

// Message returns the text shown to the user for this kind of fault.
func (k FaultKind) Message() string {
	if k == FaultUnsupported {
		return "Error: Your device doesn't support geolocation."
	}
	return "Error: The Geolocation service failed."
}

// FaultKindOf maps a locate error to its fault kind.
func FaultKindOf(err error) FaultKind {
	if errors.Is(err, ErrGeolocationUnsupported) {
		return FaultUnsupported
	}
	return FaultFailed
}

// LocationFault is pushed to the map surface instead of a frame when a tick
// could not obtain a position. Anchor is where the message should be shown.
type LocationFault struct {
	Profile string    `json:"profile"`
	Kind    FaultKind `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Anchor  GeoPoint  `json:"anchor"`
	Time    time.Time `json:"time"`
}
