package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/highlevel"
	"github.com/summitwebteam/lead-fire-cursor/internal/ingest"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads"
	leadservice "github.com/summitwebteam/lead-fire-cursor/internal/leads/service"
	"github.com/summitwebteam/lead-fire-cursor/internal/scheduler"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/db"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	crmClient := highlevel.NewClient(cfg, log)
	if crmClient == nil {
		log.Warn("HighLevel credentials not configured; CRM sync disabled")
	}

	// Worker-side module wiring (no HTTP handlers required).
	campaignsModule := campaigns.NewModule(pool, eventBus, val, log)
	leadsModule := leads.NewModule(pool, campaignsModule.Service(), eventBus, val, log)
	leadsModule.RegisterHandlers(eventBus)
	connectionsModule := connections.NewModule(pool, crmClient, eventBus, val, log)
	ingestModule := ingest.NewModule(
		pool,
		leadsModule.Repository(),
		leadsModule.Service(),
		connectionsModule.Service(),
		campaignsModule.Repository(),
		crmClient,
		eventBus,
		cfg,
		log,
	)

	dispatcher, err := scheduler.NewSyncDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize sync dispatcher", "error", err)
		panic("failed to initialize sync dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(
		cfg,
		ingestModule.Service(),
		classifierAdapter{svc: leadsModule.Service()},
		connectionsModule.Service(),
		log,
	)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

// classifierAdapter narrows the leads service to what the worker needs,
// dropping the per-pass summary.
type classifierAdapter struct {
	svc *leadservice.Service
}

func (a classifierAdapter) ReclassifyCampaign(ctx context.Context, userID, campaignID uuid.UUID) error {
	_, err := a.svc.Reclassify(ctx, userID, campaignID)
	return err
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
