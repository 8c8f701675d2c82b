package ingest

import (
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the ingest bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule creates and initializes the ingest module.
func NewModule(pool *pgxpool.Pool, leads LeadStore, classifier Classifier, connections ConnectionSource,
	campaigns CampaignSource, crm CRMReader, bus events.Bus, cfg config.SyncConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := New(repo, leads, classifier, connections, campaigns, crm, bus, cfg, log)
	h := NewHandler(svc, repo)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "ingest"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts ingest routes. The webhook endpoint bypasses JWT
// auth and is guarded by the API key middleware instead.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	webhooks := ctx.V1.Group("/webhooks")
	webhooks.Use(APIKeyAuthMiddleware(m.repo))
	webhooks.POST("/leads", m.handler.Webhook)

	ctx.Protected.POST("/sync", m.handler.Sync)
	ctx.Protected.POST("/webhook-keys", m.handler.CreateAPIKey)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
