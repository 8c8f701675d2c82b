// Package leads provides the leads bounded context module: the lead store,
// the approval workflow, and the classification passes that run campaign
// qualification rules over stored leads.
package leads

import (
	"context"

	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/handler"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/service"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	log     *logger.Logger
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, rules service.RulesProvider, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, rules, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("/:id/approve", m.handler.Approve)
	group.POST("/:id/dispute", m.handler.Dispute)

	ctx.Protected.POST("/campaigns/:id/reclassify", m.handler.Reclassify)
}

// RegisterHandlers subscribes to domain events that trigger passes.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CampaignRulesUpdated{}.EventName(), m)
}

// Handle routes events to the appropriate service method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CampaignRulesUpdated:
		if _, err := m.service.Reclassify(ctx, e.UserID, e.CampaignID); err != nil {
			m.log.Error("reclassify after rules update failed", "campaignId", e.CampaignID, "error", err)
			return err
		}
		return nil
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
