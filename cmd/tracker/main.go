package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/homeward/internal/adapters/nats"
	"github.com/samirrijal/homeward/internal/adapters/postgres"
	"github.com/samirrijal/homeward/internal/adapters/valkey"
	"github.com/samirrijal/homeward/internal/core/ports"
	"github.com/samirrijal/homeward/internal/core/usecases"
	"github.com/samirrijal/homeward/internal/pkg/config"
	"github.com/samirrijal/homeward/internal/pkg/logging"
	"github.com/samirrijal/homeward/internal/pkg/metrics"
	"github.com/samirrijal/homeward/internal/pkg/telemetry"
)

const poolStatsInterval = 15 * time.Second

func main() {
	cfg, err := config.Load("homeward-tracker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup("homeward-tracker", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Device fixes are read from the cache the API writes to.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()
	source := valkey.NewLocationStore(cache, cfg.Tracker.MaxAge)

	codec, err := natsadapter.CodecFor(cfg.Tracker.Codec)
	if err != nil {
		log.Fatalf("codec: %v", err)
	}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, codec)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	sinks := []ports.FrameSink{pub, usecases.NewCacheSink(cache)}

	if cfg.Tracker.Record {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		sinks = append(sinks, usecases.NewRecordingSink(postgres.NewFrameRepo(db)))

		go func() {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					metrics.UpdateDBPoolMetrics(db.Pool.Stat())
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	tracking := usecases.NewTrackingService(catalog, source, usecases.NewFanoutSink(sinks...), cache)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logger.Info("received signal, shutting down tracker", "signal", sig.String())
		cancel()
	}()

	for _, p := range tracking.Profiles() {
		logger.Info("tracking profile", "profile", p.Name, "interval", p.Interval().String(), "steps", p.Steps, "record", cfg.Tracker.Record)
	}

	if err := tracking.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("tracker: %v", err)
	}
	logger.Info("tracker stopped")
}
