package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/homeward/internal/adapters/http"
	natsadapter "github.com/samirrijal/homeward/internal/adapters/nats"
	"github.com/samirrijal/homeward/internal/adapters/postgres"
	"github.com/samirrijal/homeward/internal/adapters/valkey"
	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/usecases"
	"github.com/samirrijal/homeward/internal/pkg/config"
	"github.com/samirrijal/homeward/internal/pkg/logging"
	"github.com/samirrijal/homeward/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("homeward-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup("homeward-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			logger.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	catalog, err := usecases.NewProfileCatalog(config.MergeProfiles(usecases.DefaultProfiles(), cfg.Tracker.Profiles))
	if err != nil {
		log.Fatalf("profiles: %v", err)
	}

	// Cache holds the device fixes, so it is required.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()
	store := valkey.NewLocationStore(cache, cfg.Tracker.MaxAge)

	// Database (optional: frame history)
	var frames *postgres.FrameRepo
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		logger.Warn("database unavailable, frame history disabled", "error", err)
	} else {
		defer db.Close()
		frames = postgres.NewFrameRepo(db)
	}

	// NATS (optional: location fan-out, device ingress and WS relay)
	codec, err := natsadapter.CodecFor(cfg.Tracker.Codec)
	if err != nil {
		log.Fatalf("codec: %v", err)
	}
	var locationSvc *usecases.LocationService
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, codec)
	if err != nil {
		logger.Warn("nats unavailable", "error", err)
		locationSvc = usecases.NewLocationService(catalog, store, nil)
	} else {
		defer pub.Close()
		locationSvc = usecases.NewLocationService(catalog, store, pub)
	}

	if pub != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			logger.Warn("nats device ingress unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeDeviceLocations(ctx, func(ctx context.Context, r *domain.LocationReading) error {
				return locationSvc.Submit(ctx, "nats", r)
			})
			if err != nil {
				logger.Warn("subscribe device locations", "error", err)
			}
		}
	}

	// A nil *FrameRepo must not become a non-nil interface.
	frameSvc := usecases.NewFrameService(catalog, nil, cache)
	if frames != nil {
		frameSvc = usecases.NewFrameService(catalog, frames, cache)
	}

	deps := &http.Dependencies{
		Profiles:  catalog,
		Geo:       usecases.NewGeoService(),
		Locations: locationSvc,
		Frames:    frameSvc,
		DB:        db,
		Cache:     cache,
		RateLimit: cfg.Server.RateLimit,
		Version:   version,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Homeward API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("API server starting", "addr", addr, "profiles", catalog.Names())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
