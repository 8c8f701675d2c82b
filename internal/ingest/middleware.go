package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys set by the webhook auth middleware.
const (
	ContextWebhookUserIDKey = "webhookUserID"
	ContextWebhookKeyIDKey  = "webhookKeyID"
)

// APIKeyAuthMiddleware validates the X-Webhook-API-Key header and sets the
// key's user on the gin context. Webhook routes bypass the JWT middleware;
// this key is their only credential.
func APIKeyAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Webhook-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := repo.GetAPIKeyByHash(c.Request.Context(), HashKey(apiKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(ContextWebhookUserIDKey, key.UserID)
		c.Set(ContextWebhookKeyIDKey, key.ID)
		c.Next()
	}
}
