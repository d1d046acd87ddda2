package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/gridgeo/internal/adapters/nats"
	"github.com/samirrijal/gridgeo/internal/adapters/postgres"
	"github.com/samirrijal/gridgeo/internal/adapters/valkey"
	"github.com/samirrijal/gridgeo/internal/core/ports"
	"github.com/samirrijal/gridgeo/internal/core/usecases"
	"github.com/samirrijal/gridgeo/internal/pkg/config"
	"github.com/samirrijal/gridgeo/internal/pkg/logging"
	"github.com/samirrijal/gridgeo/internal/pkg/telemetry"
	"github.com/samirrijal/gridgeo/internal/workflows"
)

func main() {
	cfg, err := config.Load("gridgeo-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events will not be published", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	positionRepo := postgres.NewPositionRepo(db)
	importSvc := usecases.NewPositionImportService(
		postgres.NewNetworkRepo(db),
		postgres.NewRecordSource(db),
		cfg.CRSCatalog(),
		positionRepo,
		publisher,
		cacheSvc,
	)
	positionSvc := usecases.NewPositionService(positionRepo, cacheSvc, cfg.Import.CacheTTL)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.PositionImportWorkflow)
	w.RegisterActivity(&workflows.ImportActivities{
		Importer:  importSvc,
		Positions: positionSvc,
	})

	// Import requests queued over NATS become workflow executions.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, only direct workflow starts will run", "error", err)
	} else {
		defer sub.Close()
		handler := workflows.NewRequestHandler(c, cfg.Temporal.TaskQueue)
		if err := sub.SubscribeImportRequests(ctx, handler.Handle); err != nil {
			log.Fatalf("subscribe import requests: %v", err)
		}
	}

	slog.Info("position import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
