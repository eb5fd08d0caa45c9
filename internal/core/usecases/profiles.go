package usecases

import (
	"fmt"
	"sort"
	"time"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/pkg/geospatial"
)

// Home is the Nottingham base every built-in profile walks back to.
var Home = domain.GeoPoint{Lat: 52.95381219378043, Lng: -1.145829369884382}

const (
	defaultSteps    = 100
	defaultIconSize = 50
)

var defaultViewport = domain.PixelDimensions{Width: 1280, Height: 720}

// DefaultProfiles returns the three built-in demos: a soldier with the
// distance and zoom readout, a rocket that also draws a curved arc, and a
// bare marker.
func DefaultProfiles() []domain.Profile {
	base := domain.Profile{
		Home:          Home,
		IconSize:      defaultIconSize,
		Steps:         defaultSteps,
		CycleDuration: domain.DefaultCycleDuration,
		LocateTimeout: 5 * time.Second,
		Viewport:      defaultViewport,
		ZoomPadding:   1,
		Curvature:     geospatial.DefaultCurvature,
	}

	soldier := base
	soldier.Name = "soldier"
	soldier.Icon = "soldier.svg"
	soldier.AuxDisplay = true

	rocket := base
	rocket.Name = "rocket"
	rocket.Icon = "rocket.svg"
	rocket.AuxDisplay = true
	rocket.Curve = true

	marker := base
	marker.Name = "marker"
	marker.Icon = "marker.svg"

	return []domain.Profile{soldier, rocket, marker}
}

// ProfileCatalog is an immutable, validated set of profiles keyed by name.
type ProfileCatalog struct {
	byName map[string]domain.Profile
	names  []string
}

// NewProfileCatalog validates every profile and rejects duplicate names.
func NewProfileCatalog(profiles []domain.Profile) (*ProfileCatalog, error) {
	c := &ProfileCatalog{byName: make(map[string]domain.Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		c.byName[p.Name] = p
		c.names = append(c.names, p.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Get returns the named profile or domain.ErrProfileNotFound.
func (c *ProfileCatalog) Get(name string) (domain.Profile, error) {
	p, ok := c.byName[name]
	if !ok {
		return domain.Profile{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return p, nil
}

// List returns all profiles ordered by name.
func (c *ProfileCatalog) List() []domain.Profile {
	out := make([]domain.Profile, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

// Names returns the profile names in order.
func (c *ProfileCatalog) Names() []string {
	return append([]string(nil), c.names...)
}
