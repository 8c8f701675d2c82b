package ingest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/platform/httpkit"
)

// maxWebhookBody caps inbound webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// Handler handles inbound webhook and sync HTTP requests.
type Handler struct {
	svc  *Service
	repo *Repository
}

// NewHandler creates a new ingest handler.
func NewHandler(svc *Service, repo *Repository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// Webhook accepts one inbound lead event. Authenticated by API key, not JWT.
// POST /api/v1/webhooks/leads
func (h *Handler) Webhook(c *gin.Context) {
	userID, ok := c.Get(ContextWebhookUserIDKey)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing webhook identity", nil)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unreadable payload", nil)
		return
	}

	lead, err := h.svc.IngestWebhook(c.Request.Context(), userID.(uuid.UUID), raw)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": lead.ID, "source": lead.Source})
}

// Sync triggers an immediate CRM pull for the current user.
// POST /api/v1/sync
func (h *Handler) Sync(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.SyncUser(c.Request.Context(), identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "synced"})
}

// CreateAPIKey issues a new webhook API key. The plaintext is returned once.
// POST /api/v1/webhook-keys
func (h *Handler) CreateAPIKey(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if req.Name == "" {
		req.Name = "default"
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "key generation failed", nil)
		return
	}

	key, err := h.repo.CreateAPIKey(c.Request.Context(), identity.UserID(), req.Name, hash, prefix)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        key.ID,
		"name":      key.Name,
		"keyPrefix": key.KeyPrefix,
		"apiKey":    plaintext,
	})
}
