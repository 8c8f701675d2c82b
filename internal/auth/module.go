// Package auth provides API authentication: bcrypt-verified sign-in, JWT
// access tokens, and opaque rotating refresh tokens.
package auth

import (
	"github.com/summitwebteam/lead-fire-cursor/internal/auth/handler"
	"github.com/summitwebteam/lead-fire-cursor/internal/auth/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/auth/service"
	apphttp "github.com/summitwebteam/lead-fire-cursor/internal/http"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts public auth routes with the stricter rate limit.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	if ctx.AuthRateLimiter != nil {
		group.Use(ctx.AuthRateLimiter.RateLimit())
	}
	group.POST("/sign-in", m.handler.SignIn)
	group.POST("/refresh", m.handler.Refresh)
	group.POST("/sign-out", m.handler.SignOut)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
