package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/auth"
	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/exports"
	"github.com/summitwebteam/lead-fire-cursor/internal/highlevel"
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/internal/http/router"
	"github.com/summitwebteam/lead-fire-cursor/internal/ingest"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/db"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// HighLevel CRM client. Nil when OAuth credentials are absent; downstream
	// services surface that as an upstream error instead of panicking.
	crmClient := highlevel.NewClient(cfg, log)
	if crmClient == nil {
		log.Warn("HighLevel credentials not configured; CRM sync and OAuth connect disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	campaignsModule := campaigns.NewModule(pool, eventBus, val, log)

	// Campaign rules drive lead classification.
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

	exportsModule := exports.NewModule(leadsModule.Repository(), log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			campaignsModule,
			leadsModule,
			connectionsModule,
			ingestModule,
			exportsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
