package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/observability"
	"portfolio-chat/internal/repositories"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoomWebSocketHandler upgrades room subscriptions.
type RoomWebSocketHandler struct {
	hub      *Hub
	roomRepo repositories.RoomRepository
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(hub *Hub, roomRepo repositories.RoomRepository) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{hub: hub, roomRepo: roomRepo}
}

// Handle handles GET /ws/rooms/:room_id.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	roomID := c.Param("room_id")

	ctx, span := observability.Tracer("portfolio-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	room, err := h.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		log := logging.Ctx(ctx)
		log.Error().Err(err).Str(logging.FieldRoomID, roomID).Msg("load room for websocket")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !room.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   c.GetString(logging.RequestIDKey),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(roomID, conn, info)
	observability.IncWSActive()
	publishWSEvent(ctx, "ws_connect", roomID, info, "")

	// The read loop only detects disconnects; clients send through HTTP.
	// The request context ends when Handle returns.
	ctx = context.WithoutCancel(ctx)
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(roomID, conn)
			observability.DecWSActive()
			publishWSEvent(ctx, "ws_disconnect", roomID, info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishWSEvent(ctx, "ws_error", roomID, info, closeReason)
				}
				return
			}
		}
	}()
}
