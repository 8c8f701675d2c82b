// Package connections provides the CRM connection lifecycle module: OAuth
// exchange, token rotation, and the cached location list.
package connections

import (
	"github.com/summitwebteam/lead-fire-cursor/internal/connections/handler"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections/service"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the connections bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the connections module.
func NewModule(pool *pgxpool.Pool, crm service.CRMClient, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, crm, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "connections"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts connection routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/connections")
	group.POST("", m.handler.Connect)
	group.GET("", m.handler.List)
	group.GET("/locations", m.handler.ListLocations)
	group.DELETE("/:locationId", m.handler.Disconnect)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
