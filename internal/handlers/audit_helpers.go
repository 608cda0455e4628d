package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/middleware"
	"portfolio-chat/internal/telemetry"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(logging.RequestIDKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader(logging.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(logging.RequestIDKey, requestID)
	return requestID
}

// actorFromContext returns the authenticated admin's username, if any.
func actorFromContext(c *gin.Context) *string {
	admin, ok := middleware.AdminFromContext(c)
	if !ok || admin.Username == "" {
		return nil
	}
	actor := admin.Username
	return &actor
}

func emitAudit(c *gin.Context, emitter *telemetry.AuditEmitter, level, action, text string) {
	emitter.Emit(c.Request.Context(), level, action, text, requestIDFromContext(c), actorFromContext(c))
}
