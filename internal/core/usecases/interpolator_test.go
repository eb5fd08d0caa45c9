package usecases_test

import (
	"math"
	"testing"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/usecases"
	"github.com/samirrijal/homeward/internal/pkg/geospatial"
)

var (
	home = domain.GeoPoint{Lat: 52.9538, Lng: -1.1458}
	live = domain.GeoPoint{Lat: 52.9600, Lng: -1.1400}
)

func TestInterpolate_Endpoints(t *testing.T) {
	if got := usecases.Interpolate(live, home, 0, 100); got != live {
		t.Errorf("counter 0: expected %v, got %v", live, got)
	}
	if got := usecases.Interpolate(live, home, 100, 100); got != home {
		t.Errorf("counter == steps: expected %v, got %v", home, got)
	}
}

func TestInterpolate_Midpoint(t *testing.T) {
	got := usecases.Interpolate(live, home, 50, 100)
	want := domain.GeoPoint{
		Lat: (live.Lat + home.Lat) / 2,
		Lng: (live.Lng + home.Lng) / 2,
	}

	if math.Abs(got.Lat-want.Lat) > 1e-12 || math.Abs(got.Lng-want.Lng) > 1e-12 {
		t.Errorf("expected midpoint %v, got %v", want, got)
	}
}

func TestInterpolate_Monotonic(t *testing.T) {
	prev := geospatial.Distance(live, home)
	for i := 1; i <= 10; i++ {
		p := usecases.Interpolate(live, home, i, 10)
		d := geospatial.Distance(p, home)
		if d > prev {
			t.Fatalf("step %d moved away from home: %v > %v", i, d, prev)
		}
		prev = d
	}
}

func TestAnimationCounter_Wraparound(t *testing.T) {
	const steps = 5
	c := usecases.NewAnimationCounter(steps)

	seen := map[int]bool{c.Value(): true}
	for i := 1; i <= steps; i++ {
		if got := c.Advance(); got != i {
			t.Fatalf("tick %d: expected %d, got %d", i, i, got)
		}
		seen[c.Value()] = true
	}

	// One more tick exceeds steps and wraps straight to 0.
	if got := c.Advance(); got != 0 {
		t.Fatalf("expected wrap to 0 after %d ticks, got %d", steps+1, got)
	}
	if len(seen) != steps+1 {
		t.Errorf("expected %d distinct states per cycle, got %d", steps+1, len(seen))
	}
}

func TestStep(t *testing.T) {
	c := usecases.NewAnimationCounter(2)

	first := usecases.Step(c, live, home)
	if c.Value() != 1 {
		t.Fatalf("expected counter 1, got %d", c.Value())
	}
	if first == live || first == home {
		t.Errorf("first step should be strictly between live and home, got %v", first)
	}

	if got := usecases.Step(c, live, home); got != home {
		t.Errorf("second step should land on home, got %v", got)
	}
	if got := usecases.Step(c, live, home); got != live {
		t.Errorf("wrapped step should restart at live, got %v", got)
	}
}
