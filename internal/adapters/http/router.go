package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/homeward/internal/pkg/metrics"
)

const requestTimeout = 10 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestLoggerMiddleware())
	app.Use(AccessLogMiddleware())

	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	app.Use(SecurityHeadersMiddleware(deps.Version))
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	geo := v1.Group("/geo")
	geo.Get("/distance", DistanceHandler(deps))
	geo.Get("/bearing", BearingHandler(deps))
	geo.Post("/zoom", ZoomHandler(deps))
	geo.Get("/interpolate", InterpolateHandler(deps))
	geo.Get("/curve", CurveHandler(deps))

	v1.Get("/profiles", ListProfilesHandler(deps))
	v1.Get("/profiles/:name", GetProfileHandler(deps))

	sessions := v1.Group("/sessions/:profile")
	sessions.Get("/location", timeout.NewWithContext(CurrentLocationHandler(deps), requestTimeout))
	sessions.Post("/location", timeout.NewWithContext(SubmitLocationHandler(deps), requestTimeout))
	sessions.Get("/frame", timeout.NewWithContext(LatestFrameHandler(deps), requestTimeout))
	sessions.Get("/frames", timeout.NewWithContext(ListFramesHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
