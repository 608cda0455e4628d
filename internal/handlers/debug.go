package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-chat/internal/rabbitmq"
	"portfolio-chat/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, publisher rabbitmq.Publisher, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitAudit(c, emitter, telemetry.LevelInfo, "debug.audit_test", "audit test")
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"publisher": rabbitmq.PublisherMode(publisher),
			"reason":    rabbitmq.PublisherNoopReason(publisher),
		})
	})
}
