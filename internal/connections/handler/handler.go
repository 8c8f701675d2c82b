package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/summitwebteam/lead-fire-cursor/internal/connections/service"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections/transport"
	"github.com/summitwebteam/lead-fire-cursor/platform/httpkit"
	"github.com/summitwebteam/lead-fire-cursor/platform/validator"
)

// Handler handles HTTP requests for CRM connections.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new connections handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Connect exchanges the OAuth callback code and saves the connection.
// POST /api/v1/connections
func (h *Handler) Connect(c *gin.Context) {
	var req transport.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Connect(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, result)
}

// List returns the user's connections.
// GET /api/v1/connections
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.List(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListLocations returns the user's visible CRM locations.
// GET /api/v1/connections/locations
func (h *Handler) ListLocations(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListLocations(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Disconnect removes the connection for a location.
// DELETE /api/v1/connections/:locationId
func (h *Handler) Disconnect(c *gin.Context) {
	locationID := c.Param("locationId")
	if locationID == "" {
		httpkit.Error(c, http.StatusBadRequest, "location ID is required", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.Disconnect(c.Request.Context(), identity.UserID(), locationID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
