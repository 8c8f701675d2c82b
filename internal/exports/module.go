package exports

import (
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/repository"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(repo repository.Repository, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(repo, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/campaigns/:id/export.csv", m.handler.ExportCampaignCSV)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
