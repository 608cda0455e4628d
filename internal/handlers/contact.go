package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-chat/internal/service"
	"portfolio-chat/internal/telemetry"
)

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	contacts *service.ContactService
	emitter  *telemetry.AuditEmitter
}

func NewContactHandler(contacts *service.ContactService, emitter *telemetry.AuditEmitter) *ContactHandler {
	return &ContactHandler{contacts: contacts, emitter: emitter}
}

// Submit stores an inquiry and announces it as an audit event.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	emitAudit(c, h.emitter, telemetry.LevelInfo, "contact.submitted", "contact "+contact.ID+" from "+contact.Email+": "+contact.Subject)
	c.JSON(http.StatusCreated, gin.H{"message": "contact form submitted", "id": contact.ID})
}
