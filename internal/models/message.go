package models

import "time"

// Message is a chat message. Messages are immutable once stored.
type Message struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	Username  string    `db:"username" json:"username"`
	UserEmail *string   `db:"user_email" json:"userEmail"`
	IsAdmin   bool      `db:"is_admin" json:"isAdmin"`
	RoomID    string    `db:"room_id" json:"roomId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RoomEvent is pushed to websocket subscribers of a room.
type RoomEvent struct {
	Type      string   `json:"type"`
	RoomID    string   `json:"roomId"`
	Message   *Message `json:"message,omitempty"`
	MessageID string   `json:"messageId,omitempty"`
}

const (
	RoomEventMessage     = "message"
	RoomEventDelete      = "delete"
	RoomEventRoomDeleted = "room_deleted"
)
