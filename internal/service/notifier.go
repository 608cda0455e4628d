package service

import "portfolio-chat/internal/models"

// RoomNotifier pushes room events to live subscribers. Delivery is
// best-effort; polling stays the source of truth.
type RoomNotifier interface {
	BroadcastMessage(msg models.Message)
	BroadcastDeletion(roomID string, messageID string)
	BroadcastRoomDeleted(roomID string)
}

type noopNotifier struct{}

func (noopNotifier) BroadcastMessage(models.Message)  {}
func (noopNotifier) BroadcastDeletion(string, string) {}
func (noopNotifier) BroadcastRoomDeleted(string)      {}

func notifierOrNoop(n RoomNotifier) RoomNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
