package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// LeadSyncer pulls fresh leads from the CRM for one user.
type LeadSyncer interface {
	SyncUser(ctx context.Context, userID uuid.UUID) error
}

// LeadClassifier re-runs qualification for a campaign's leads.
type LeadClassifier interface {
	ReclassifyCampaign(ctx context.Context, userID, campaignID uuid.UUID) error
}

// TokenRefresher rotates OAuth tokens that expire within the horizon.
type TokenRefresher interface {
	RefreshExpiring(ctx context.Context, horizon time.Duration) (int, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	syncer     LeadSyncer
	classifier LeadClassifier
	refresher  TokenRefresher
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, syncer LeadSyncer, classifier LeadClassifier, refresher TokenRefresher, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		syncer:     syncer,
		classifier: classifier,
		refresher:  refresher,
		log:        log,
	}

	mux.HandleFunc(TaskLeadSync, w.handleLeadSync)
	mux.HandleFunc(TaskLeadClassify, w.handleLeadClassify)
	mux.HandleFunc(TaskTokenRefresh, w.handleTokenRefresh)

	return w, nil
}

func (w *Worker) handleLeadSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadSyncPayload(task)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	return w.syncer.SyncUser(ctx, userID)
}

func (w *Worker) handleLeadClassify(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadClassifyPayload(task)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	campaignID, err := uuid.Parse(payload.CampaignID)
	if err != nil {
		return err
	}

	return w.classifier.ReclassifyCampaign(ctx, userID, campaignID)
}

func (w *Worker) handleTokenRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTokenRefreshPayload(task)
	if err != nil {
		return err
	}

	horizon := time.Duration(payload.HorizonMinutes) * time.Minute
	if horizon <= 0 {
		horizon = time.Hour
	}

	refreshed, err := w.refresher.RefreshExpiring(ctx, horizon)
	if err != nil {
		return err
	}

	w.log.Info("token refresh pass complete", "refreshed", refreshed)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
