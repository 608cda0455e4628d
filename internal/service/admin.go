package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/repositories"
)

const (
	DefaultAdminMessageLimit = 100
	MaxAdminMessageLimit     = 500
)

// AdminService implements the moderation operations available to
// authenticated admins.
type AdminService struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	chat     *ChatService
	notifier RoomNotifier
}

func NewAdminService(rooms repositories.RoomRepository, messages repositories.MessageRepository, chat *ChatService, notifier RoomNotifier) *AdminService {
	return &AdminService{
		rooms:    rooms,
		messages: messages,
		chat:     chat,
		notifier: notifierOrNoop(notifier),
	}
}

// DeleteMessage removes one message.
func (s *AdminService) DeleteMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return validationError("messageId is required")
	}
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return fmt.Errorf("%w: message not found", ErrNotFound)
		}
		return fmt.Errorf("load message: %w", err)
	}
	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return fmt.Errorf("%w: message not found", ErrNotFound)
		}
		return fmt.Errorf("delete message: %w", err)
	}
	s.notifier.BroadcastDeletion(msg.RoomID, messageID)
	return nil
}

// CreateRoom adds an active room. Names are unique.
func (s *AdminService) CreateRoom(ctx context.Context, name string, description *string) (models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Room{}, validationError("room name is required")
	}
	room, err := s.rooms.CreateRoom(ctx, name, normalizeDescription(description))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Room{}, fmt.Errorf("%w: room name already exists", ErrConflict)
		}
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// UpdateRoom overwrites a room's name and description.
func (s *AdminService) UpdateRoom(ctx context.Context, roomID, name string, description *string) (models.Room, error) {
	name = strings.TrimSpace(name)
	if roomID == "" {
		return models.Room{}, validationError("roomId is required")
	}
	if name == "" {
		return models.Room{}, validationError("room name is required")
	}
	room, err := s.rooms.UpdateRoom(ctx, roomID, name, normalizeDescription(description))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			return models.Room{}, fmt.Errorf("%w: room not found", ErrNotFound)
		case errors.Is(err, repositories.ErrDuplicate):
			return models.Room{}, fmt.Errorf("%w: room name already exists", ErrConflict)
		}
		return models.Room{}, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

// DeleteRoom removes a room together with its messages.
func (s *AdminService) DeleteRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return validationError("roomId is required")
	}
	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return fmt.Errorf("%w: room not found", ErrNotFound)
		}
		return fmt.Errorf("delete room: %w", err)
	}
	s.notifier.BroadcastRoomDeleted(roomID)
	return nil
}

// ListAllMessages returns the most recent messages, optionally scoped to a
// room, in ascending order. limit is clamped to MaxAdminMessageLimit and
// defaults to DefaultAdminMessageLimit.
func (s *AdminService) ListAllMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	switch {
	case limit <= 0:
		limit = DefaultAdminMessageLimit
	case limit > MaxAdminMessageLimit:
		limit = MaxAdminMessageLimit
	}
	msgs, err := s.messages.ListRecentMessages(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// SendAdminMessage posts a message flagged as admin under the admin's name.
func (s *AdminService) SendAdminMessage(ctx context.Context, admin models.AdminIdentity, content, roomID string) (models.Message, error) {
	return s.chat.SendMessage(ctx, SendMessageInput{
		Content:   content,
		Username:  admin.Username,
		UserEmail: admin.Email,
		RoomID:    roomID,
		IsAdmin:   true,
	})
}

// GetRoomStats returns every room with its message count, the total number
// of messages and the number sent since local midnight of now.
func (s *AdminService) GetRoomStats(ctx context.Context, now time.Time) (models.RoomStats, error) {
	rooms, err := s.rooms.ListRoomSummaries(ctx, false)
	if err != nil {
		return models.RoomStats{}, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}

	total, err := s.messages.CountMessages(ctx, nil)
	if err != nil {
		return models.RoomStats{}, fmt.Errorf("count messages: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.messages.CountMessages(ctx, &midnight)
	if err != nil {
		return models.RoomStats{}, fmt.Errorf("count today's messages: %w", err)
	}

	return models.RoomStats{Rooms: rooms, TotalMessages: total, TodayMessages: today}, nil
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	d := strings.TrimSpace(*description)
	if d == "" {
		return nil
	}
	return &d
}
