// Package campaigns provides the campaigns bounded context module.
// A campaign groups tracked lead sources and carries the qualification rules
// applied to incoming leads.
package campaigns

import (
	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/handler"
	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/service"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the campaigns module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts campaign routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/campaigns")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.GetByID)
	group.PATCH("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
	group.GET("/:id/rules", m.handler.GetRules)
	group.PUT("/:id/rules", m.handler.UpdateRules)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
