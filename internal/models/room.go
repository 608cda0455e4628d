package models

import "time"

// Room is a chat room. Deleting a room deletes its messages.
type Room struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RoomSummary is a room together with its message count.
type RoomSummary struct {
	Room
	MessageCount int `db:"message_count" json:"messageCount"`
}

// RoomStats is the admin dashboard view over all rooms.
type RoomStats struct {
	Rooms         []RoomSummary `json:"rooms"`
	TotalMessages int           `json:"totalMessages"`
	TodayMessages int           `json:"todayMessages"`
}
