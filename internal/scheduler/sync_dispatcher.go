package scheduler

import (
	"context"
	"fmt"
	"time"

	connrepo "github.com/summitwebteam/lead-fire-cursor/internal/connections/repository"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tokenRefreshHorizonMinutes = 60

// SyncDispatcher periodically enqueues a CRM pull per connected user and a
// token refresh sweep. One dispatcher instance runs per deployment.
type SyncDispatcher struct {
	client   *asynq.Client
	queue    string
	repo     connrepo.Repository
	interval time.Duration
	log      *logger.Logger
}

type SyncDispatcherConfig interface {
	config.SchedulerConfig
	config.SyncConfig
}

func NewSyncDispatcher(cfg SyncDispatcherConfig, pool *pgxpool.Pool, log *logger.Logger) (*SyncDispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	interval := cfg.GetSyncInterval()
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &SyncDispatcher{
		client:   asynq.NewClient(opt),
		queue:    queue,
		repo:     connrepo.New(pool),
		interval: interval,
		log:      log,
	}, nil
}

func (d *SyncDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *SyncDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.dispatch(ctx)
	}
}

func (d *SyncDispatcher) dispatch(ctx context.Context) {
	userIDs, err := d.repo.DistinctUserIDs(ctx)
	if err != nil {
		d.log.Warn("sync dispatch: listing connected users failed", "error", err)
		return
	}

	for _, userID := range userIDs {
		task, err := NewLeadSyncTask(LeadSyncPayload{UserID: userID.String()})
		if err != nil {
			d.log.Warn("sync dispatch: building task failed", "userId", userID, "error", err)
			continue
		}

		if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
			d.log.Warn("sync dispatch: enqueue failed", "userId", userID, "error", err)
		}
	}

	refreshTask, err := NewTokenRefreshTask(TokenRefreshPayload{HorizonMinutes: tokenRefreshHorizonMinutes})
	if err != nil {
		d.log.Warn("sync dispatch: building refresh task failed", "error", err)
		return
	}
	if _, err := d.client.EnqueueContext(ctx, refreshTask, asynq.Queue(d.queue)); err != nil {
		d.log.Warn("sync dispatch: enqueue refresh failed", "error", err)
	}
}
