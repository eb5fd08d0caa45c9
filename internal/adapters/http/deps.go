package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/homeward/internal/adapters/postgres"
	"github.com/samirrijal/homeward/internal/adapters/valkey"
	"github.com/samirrijal/homeward/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Profiles  *usecases.ProfileCatalog
	Geo       *usecases.GeoService
	Locations *usecases.LocationService
	Frames    *usecases.FrameService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
	// RateLimit is the number of requests allowed per IP and minute; 0 disables limiting.
	RateLimit int
	Version   string
}
