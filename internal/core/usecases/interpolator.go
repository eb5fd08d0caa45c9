package usecases

import "github.com/samirrijal/homeward/internal/core/domain"

// AnimationCounter is the sawtooth that drives a traversal: it counts ticks
// from 0 to steps and then starts over.
type AnimationCounter struct {
	value int
	steps int
}

// NewAnimationCounter returns a counter at 0.
func NewAnimationCounter(steps int) *AnimationCounter {
	return &AnimationCounter{steps: steps}
}

// Advance moves the counter one tick forward. The value is incremented first
// and reset to 0 once it exceeds steps, so a full cycle visits 0..steps and
// takes steps+1 ticks.
func (c *AnimationCounter) Advance() int {
	c.value++
	if c.value > c.steps {
		c.value = 0
	}
	return c.value
}

func (c *AnimationCounter) Value() int { return c.value }
func (c *AnimationCounter) Steps() int { return c.steps }

// Interpolate returns the point counter/steps of the way from current toward home.
func Interpolate(current, home domain.GeoPoint, counter, steps int) domain.GeoPoint {
	switch {
	case counter == 0:
		return current
	case counter == steps:
		return home
	}

	dLat := (current.Lat - home.Lat) / float64(steps)
	dLng := (current.Lng - home.Lng) / float64(steps)

	return domain.GeoPoint{
		Lat: current.Lat - dLat*float64(counter),
		Lng: current.Lng - dLng*float64(counter),
	}
}

// Step advances counter and returns the matching render position.
func Step(counter *AnimationCounter, current, home domain.GeoPoint) domain.GeoPoint {
	n := counter.Advance()
	return Interpolate(current, home, n, counter.Steps())
}
