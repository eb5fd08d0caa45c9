package domain

import "errors"

var (
	// ErrGeolocationUnsupported means no location source is available at all.
	ErrGeolocationUnsupported = errors.New("geolocation unsupported")
	// ErrGeolocationFailed means a source exists but the read failed, timed out or was refused.
	ErrGeolocationFailed = errors.New("geolocation failed")

	// ErrTickInFlight is returned when a tick starts while the previous one is still running.
	ErrTickInFlight = errors.New("tick already in flight")

	ErrProfileNotFound   = errors.New("profile not found")
	ErrNoFrame           = errors.New("no frame rendered yet")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidViewport   = errors.New("invalid viewport")
	ErrInvalidArgument   = errors.New("invalid argument")
)
