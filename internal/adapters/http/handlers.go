package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// parsePoint reads a "lat,lng" query parameter.
func parsePoint(c *fiber.Ctx, name string) (domain.GeoPoint, error) {
	raw := c.Query(name)
	if raw == "" {
		return domain.GeoPoint{}, fmt.Errorf("%s is required (lat,lng)", name)
	}
	lat, lng, ok := strings.Cut(raw, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("%s must be lat,lng", name)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%s: invalid latitude", name)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%s: invalid longitude", name)
	}
	return domain.GeoPoint{Lat: la, Lng: ln}, nil
}

func parseFromTo(c *fiber.Ctx) (from, to domain.GeoPoint, err error) {
	if from, err = parsePoint(c, "from"); err != nil {
		return
	}
	to, err = parsePoint(c, "to")
	return
}

// DistanceResponse is returned by /v1/geo/distance.
type DistanceResponse struct {
	From     domain.GeoPoint `json:"from"`
	To       domain.GeoPoint `json:"to"`
	Distance float64         `json:"distance"`
	Units    string          `json:"units"`
}

// DistanceHandler returns the great-circle distance between two points.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseFromTo(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		units := c.Query("units", "mi")
		if units != "mi" && units != "km" {
			return errBadRequest(c, "units must be mi or km")
		}

		d, err := deps.Geo.Distance(from, to, units == "km")
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(DistanceResponse{From: from, To: to, Distance: d, Units: units})
	}
}

// BearingHandler returns the planar heading from one point toward another.
func BearingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseFromTo(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		b, err := deps.Geo.Bearing(from, to)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"from": from, "to": to, "bearing": b})
	}
}

// ZoomRequest is the body of POST /v1/geo/zoom.
type ZoomRequest struct {
	Points   []domain.GeoPoint      `json:"points"`
	Viewport domain.PixelDimensions `json:"viewport"`
}

// ZoomHandler fits a set of points into a viewport.
func ZoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ZoomRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) > 1000 {
			return errBadRequest(c, "too many points (max 1000)")
		}
		res, err := deps.Geo.Zoom(req.Points, req.Viewport)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// InterpolateHandler returns the render position for one counter value.
func InterpolateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseFromTo(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		counter := c.QueryInt("counter", -1)
		steps := c.QueryInt("steps", 0)

		p, err := deps.Geo.Interpolate(from, to, counter, steps)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"position": p, "counter": counter, "steps": steps})
	}
}

// CurveHandler returns the arc drawn between two points at a zoom level.
func CurveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseFromTo(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zoom := c.QueryInt("zoom", -1)
		curvature := c.QueryFloat("curvature", 0)

		arc, err := deps.Geo.Curve(from, to, zoom, curvature)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(arc)
	}
}

// ProfileView is the public shape of a profile.
type ProfileView struct {
	domain.Profile
	Interval string `json:"interval"`
}

func profileView(p domain.Profile) ProfileView {
	return ProfileView{Profile: p, Interval: p.Interval().String()}
}

// ListProfilesHandler returns the configured tracking profiles.
func ListProfilesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profiles := deps.Profiles.List()
		offset, limit := pageParams(c, 50, 100)

		total := len(profiles)
		views := make([]ProfileView, 0, limit)
		for i := offset; i < total && i < offset+limit; i++ {
			views = append(views, profileView(profiles[i]))
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: views, Pagination: pg})
	}
}

// GetProfileHandler returns a single profile by name.
func GetProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Profiles.Get(c.Params("name"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(profileView(p))
	}
}

// LocationRequest is the body of POST /v1/sessions/:profile/location.
type LocationRequest struct {
	Lat      *float64   `json:"lat"`
	Lng      *float64   `json:"lng"`
	Accuracy float64    `json:"accuracy"`
	Time     *time.Time `json:"time"`
}

// SubmitLocationHandler accepts a device fix for a profile.
func SubmitLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LocationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lng == nil {
			return errBadRequest(c, "lat and lng are required")
		}

		reading := &domain.LocationReading{
			Profile:  c.Params("profile"),
			Point:    domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng},
			Accuracy: req.Accuracy,
		}
		if req.Time != nil {
			reading.Time = req.Time.UTC()
		}

		if err := deps.Locations.Submit(c.UserContext(), "http", reading); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(reading)
	}
}

// CurrentLocationHandler returns the stored device position of a profile.
func CurrentLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Locations.Current(c.UserContext(), c.Params("profile"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

// LatestFrameHandler returns the newest rendered frame of a profile.
func LatestFrameHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Frames.Latest(c.UserContext(), c.Params("profile"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(f)
	}
}

// ListFramesHandler returns recorded frames of a profile, newest first.
func ListFramesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 20, 100)

		frames, total, err := deps.Frames.History(c.UserContext(), c.Params("profile"), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: frames, Pagination: pg})
	}
}
