package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/middleware"
	"portfolio-chat/internal/observability"
	"portfolio-chat/internal/service"
	"portfolio-chat/internal/telemetry"
)

// AdminHandler serves admin authentication, setup and management.
type AdminHandler struct {
	auth    *service.AuthService
	admin   *service.AdminService
	emitter *telemetry.AuditEmitter
	now     func() time.Time
}

// NewAdminHandler builds an AdminHandler. emitter may be nil.
func NewAdminHandler(auth *service.AuthService, admin *service.AdminService, emitter *telemetry.AuditEmitter) *AdminHandler {
	return &AdminHandler{auth: auth, admin: admin, emitter: emitter, now: time.Now}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Auth dispatches the login, verify and createAdmin actions.
func (h *AdminHandler) Auth(c *gin.Context) {
	req, ok := bindAction(c)
	if !ok {
		return
	}

	switch req.Action {
	case "login":
		h.login(c, req)
	case "verify":
		h.verify(c, req)
	case "createAdmin":
		if _, ok := middleware.Authenticate(c, h.auth); !ok {
			return
		}
		h.createAdmin(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
	}
}

func (h *AdminHandler) login(c *gin.Context, req ActionRequest) {
	var data credentialsRequest
	if !bindData(c, req, &data) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			observability.IncAdminAction("login", "failure")
			emitAudit(c, h.emitter, telemetry.LevelWarn, "admin.login_failed", "admin login failed for "+data.Username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	c.Set(logging.FieldAdminID, res.Admin.ID)
	c.Set(middleware.AdminKey, res.Admin)
	observability.IncAdminAction("login", "success")
	emitAudit(c, h.emitter, telemetry.LevelInfo, "admin.login", "admin logged in")
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) verify(c *gin.Context, req ActionRequest) {
	var data struct {
		Token string `json:"token"`
	}
	if !bindData(c, req, &data) {
		return
	}
	token := data.Token
	if token == "" {
		token = req.Token
	}
	if token == "" {
		token = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	admin, err := h.auth.Verify(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

func (h *AdminHandler) createAdmin(c *gin.Context, req ActionRequest) {
	var data credentialsRequest
	if !bindData(c, req, &data) {
		return
	}

	admin, err := h.auth.CreateAdmin(c.Request.Context(), data.Username, data.Password, data.Email)
	if err != nil {
		observability.IncAdminAction("createAdmin", "failure")
		respondError(c, err)
		return
	}
	observability.IncAdminAction("createAdmin", "success")
	emitAudit(c, h.emitter, telemetry.LevelInfo, "admin.created", "admin "+admin.Username+" created")
	c.JSON(http.StatusCreated, gin.H{"admin": admin})
}

// Setup creates the first admin account. It answers 409 once any admin
// exists.
func (h *AdminHandler) Setup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	admin, err := h.auth.Setup(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		observability.IncAdminAction("setup", "failure")
		respondError(c, err)
		return
	}

	observability.IncAdminAction("setup", "success")
	emitAudit(c, h.emitter, telemetry.LevelInfo, "admin.setup", "first admin "+admin.Username+" created")
	c.JSON(http.StatusCreated, gin.H{"message": "admin created", "adminId": admin.ID})
}

type roomRequest struct {
	RoomID      string  `json:"roomId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Manage dispatches the moderation actions. The caller must have passed
// middleware.AdminAuth.
func (h *AdminHandler) Manage(c *gin.Context) {
	admin, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req, ok := bindAction(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		status = http.StatusOK
		body   any
		audit  string
		err    error
	)

	switch req.Action {
	case "deleteMessage":
		var data struct {
			MessageID string `json:"messageId"`
		}
		if !bindData(c, req, &data) {
			return
		}
		err = h.admin.DeleteMessage(ctx, data.MessageID)
		body = gin.H{"success": true}
		audit = "message " + data.MessageID + " deleted"

	case "createRoom":
		var data roomRequest
		if !bindData(c, req, &data) {
			return
		}
		room, e := h.admin.CreateRoom(ctx, data.Name, data.Description)
		err, body, status = e, room, http.StatusCreated
		audit = "room " + data.Name + " created"

	case "updateRoom":
		var data roomRequest
		if !bindData(c, req, &data) {
			return
		}
		room, e := h.admin.UpdateRoom(ctx, data.RoomID, data.Name, data.Description)
		err, body = e, room
		audit = "room " + data.RoomID + " updated"

	case "deleteRoom":
		var data roomRequest
		if !bindData(c, req, &data) {
			return
		}
		err = h.admin.DeleteRoom(ctx, data.RoomID)
		body = gin.H{"success": true}
		audit = "room " + data.RoomID + " deleted"

	case "getAllMessages":
		var data struct {
			RoomID string `json:"roomId"`
			Limit  int    `json:"limit"`
		}
		if !bindData(c, req, &data) {
			return
		}
		body, err = h.admin.ListAllMessages(ctx, data.RoomID, data.Limit)

	case "sendAdminMessage":
		var data struct {
			Content string `json:"content"`
			RoomID  string `json:"roomId"`
		}
		if !bindData(c, req, &data) {
			return
		}
		msg, e := h.admin.SendAdminMessage(ctx, admin, data.Content, data.RoomID)
		err, body, status = e, msg, http.StatusCreated
		audit = "admin message sent to room " + msg.RoomID

	case "getRoomStats":
		body, err = h.admin.GetRoomStats(ctx, h.now())

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
		return
	}

	if err != nil {
		observability.IncAdminAction(req.Action, "failure")
		respondError(c, err)
		return
	}

	observability.IncAdminAction(req.Action, "success")
	if audit != "" {
		emitAudit(c, h.emitter, telemetry.LevelInfo, "admin."+req.Action, audit)
	}
	c.JSON(status, body)
}
