package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/observability"
)

const writeWait = 5 * time.Second

type client struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains websocket subscribers per room.
type Hub struct {
	rooms map[string]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]*client)}
}

// AddClient registers a websocket connection to a room.
func (h *Hub) AddClient(roomID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[roomID][conn] = &client{conn: conn, info: info}
}

// RemoveClient removes a websocket connection from a room.
func (h *Hub) RemoveClient(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ClientCount returns the number of subscribers of a room.
func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastMessage sends a stored message to all subscribers of its room.
func (h *Hub) BroadcastMessage(msg models.Message) {
	h.broadcast(msg.RoomID, models.RoomEvent{Type: models.RoomEventMessage, RoomID: msg.RoomID, Message: &msg})
}

// BroadcastDeletion notifies subscribers that a message was deleted.
func (h *Hub) BroadcastDeletion(roomID string, messageID string) {
	h.broadcast(roomID, models.RoomEvent{Type: models.RoomEventDelete, RoomID: roomID, MessageID: messageID})
}

// BroadcastRoomDeleted notifies subscribers that their room is gone.
func (h *Hub) BroadcastRoomDeleted(roomID string) {
	h.broadcast(roomID, models.RoomEvent{Type: models.RoomEventRoomDeleted, RoomID: roomID})
}

func (h *Hub) broadcast(roomID string, event models.RoomEvent) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logging.L().Error().Err(err).Msg("marshal room event")
		return
	}
	for _, c := range clients {
		if err := c.write(payload); err != nil {
			logging.L().Warn().Err(err).Str(logging.FieldRoomID, roomID).Str("conn_id", c.info.ConnID).Msg("websocket write error")
			// The read loop of this connection reports the error and the disconnect.
			c.conn.Close()
			h.RemoveClient(roomID, c.conn)
		}
	}
}

func publishWSEvent(ctx context.Context, event, roomID string, info ConnInfo, reason string) {
	observability.IncWSEvent(event)
	_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		RequestID: info.RequestID,
		TraceID:   info.TraceID,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"room_id":     roomID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	})
}

const wsRoutingKey = "ws_events.rooms"
