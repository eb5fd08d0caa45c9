package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/homeward/internal/adapters/nats"
	"github.com/samirrijal/homeward/internal/adapters/valkey"
	"github.com/samirrijal/homeward/internal/core/ports"
	"github.com/samirrijal/homeward/internal/core/usecases"
	"github.com/samirrijal/homeward/internal/pkg/config"
	"github.com/samirrijal/homeward/internal/pkg/logging"
	"github.com/samirrijal/homeward/internal/workflows"
)

func main() {
	start := flag.String("start", "", "start a traversal for this profile instead of running the worker")
	ticks := flag.Int("ticks", 0, "ticks to run; 0 means one full cycle (steps+1)")
	interval := flag.Duration("interval", 0, "wait between ticks; 0 uses the profile interval")
	stopAtHome := flag.Bool("stop-at-home", true, "end the traversal on the first frame drawn at home")
	flag.Parse()

	cfg, err := config.Load("homeward-runner")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup("homeward-runner", cfg.Log.Level, cfg.Log.Format)

	catalog, err := usecases.NewProfileCatalog(config.MergeProfiles(usecases.DefaultProfiles(), cfg.Tracker.Profiles))
	if err != nil {
		log.Fatalf("profiles: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if *start != "" {
		p, err := catalog.Get(*start)
		if err != nil {
			log.Fatalf("start: %v", err)
		}
		input := workflows.TraversalInput{
			Profile:    p.Name,
			Ticks:      *ticks,
			Interval:   *interval,
			StopAtHome: *stopAtHome,
		}
		if input.Ticks <= 0 {
			input.Ticks = p.Steps + 1
		}
		if input.Interval <= 0 {
			input.Interval = p.Interval()
		}

		run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
			ID:        "traversal-" + p.Name + "-" + time.Now().UTC().Format("20060102T150405"),
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.TraversalWorkflowName, input)
		if err != nil {
			log.Fatalf("start traversal: %v", err)
		}
		logger.Info("traversal started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
		return
	}

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	sinks := []ports.FrameSink{usecases.NewCacheSink(cache)}
	if codec, err := natsadapter.CodecFor(cfg.Tracker.Codec); err == nil {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, codec)
		if err != nil {
			logger.Warn("nats unavailable, frames are only cached", "error", err)
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}

	tracking := usecases.NewTrackingService(catalog,
		valkey.NewLocationStore(cache, cfg.Tracker.MaxAge),
		usecases.NewFanoutSink(sinks...), cache)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.TraversalWorkflow)
	w.RegisterActivity(&workflows.TraversalActivities{Tracking: tracking})

	logger.Info("traversal worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
