package config

import (
	"time"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// ProfileConfig overrides one profile. Unset fields keep the built-in value
// of the profile with the same name, or of the first built-in for new names.
type ProfileConfig struct {
	Name          string          `mapstructure:"name"`
	HomeLat       *float64        `mapstructure:"home_lat"`
	HomeLng       *float64        `mapstructure:"home_lng"`
	Icon          string          `mapstructure:"icon"`
	IconSize      int             `mapstructure:"icon_size"`
	Steps         int             `mapstructure:"steps"`
	CycleDuration time.Duration   `mapstructure:"cycle_duration"`
	TickInterval  time.Duration   `mapstructure:"tick_interval"`
	LocateTimeout time.Duration   `mapstructure:"locate_timeout"`
	AuxDisplay    *bool           `mapstructure:"aux_display"`
	Viewport      *ViewportConfig `mapstructure:"viewport"`
	ZoomPadding   *int            `mapstructure:"zoom_padding"`
	Curve         *bool           `mapstructure:"curve"`
	Curvature     float64         `mapstructure:"curvature"`
}

type ViewportConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// MergeProfiles applies overrides on top of defaults. Profiles keep the
// order of defaults; new names are appended.
func MergeProfiles(defaults []domain.Profile, overrides []ProfileConfig) []domain.Profile {
	out := append([]domain.Profile(nil), defaults...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Name] = i
	}

	for _, o := range overrides {
		i, ok := index[o.Name]
		if !ok {
			var base domain.Profile
			if len(defaults) > 0 {
				base = defaults[0]
			}
			base.Name = o.Name
			out = append(out, base)
			i = len(out) - 1
			index[o.Name] = i
		}
		o.apply(&out[i])
	}
	return out
}

func (o ProfileConfig) apply(p *domain.Profile) {
	if o.HomeLat != nil {
		p.Home.Lat = *o.HomeLat
	}
	if o.HomeLng != nil {
		p.Home.Lng = *o.HomeLng
	}
	if o.Icon != "" {
		p.Icon = o.Icon
	}
	if o.IconSize > 0 {
		p.IconSize = o.IconSize
	}
	if o.Steps != 0 {
		p.Steps = o.Steps
	}
	if o.CycleDuration > 0 {
		p.CycleDuration = o.CycleDuration
	}
	if o.TickInterval > 0 {
		p.TickInterval = o.TickInterval
	}
	if o.LocateTimeout > 0 {
		p.LocateTimeout = o.LocateTimeout
	}
	if o.AuxDisplay != nil {
		p.AuxDisplay = *o.AuxDisplay
	}
	if o.Viewport != nil {
		p.Viewport = domain.PixelDimensions{Width: o.Viewport.Width, Height: o.Viewport.Height}
	}
	if o.ZoomPadding != nil {
		p.ZoomPadding = *o.ZoomPadding
	}
	if o.Curve != nil {
		p.Curve = *o.Curve
	}
	if o.Curvature != 0 {
		p.Curvature = o.Curvature
	}
}
