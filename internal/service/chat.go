package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/observability"
	"portfolio-chat/internal/repositories"
)

// MessagePageLimit caps every message page returned to pollers.
const MessagePageLimit = 50

// SendMessageInput is a message submitted by a chat participant.
type SendMessageInput struct {
	Content   string
	Username  string
	UserEmail string
	RoomID    string
	IsAdmin   bool
}

// ChatService implements message exchange for pollers.
type ChatService struct {
	rooms         repositories.RoomRepository
	messages      repositories.MessageRepository
	notifier      RoomNotifier
	defaultRoomID string
}

// NewChatService constructs a ChatService. defaultRoomID is used when a
// request names no room; it may be empty, in which case such requests fail.
func NewChatService(rooms repositories.RoomRepository, messages repositories.MessageRepository, notifier RoomNotifier, defaultRoomID string) *ChatService {
	return &ChatService{
		rooms:         rooms,
		messages:      messages,
		notifier:      notifierOrNoop(notifier),
		defaultRoomID: defaultRoomID,
	}
}

// DefaultRoomID returns the configured default room.
func (s *ChatService) DefaultRoomID() string {
	return s.defaultRoomID
}

// ResolveDefaultRoom picks the default room at startup: roomID when set and
// present, otherwise the room called name.
func ResolveDefaultRoom(ctx context.Context, rooms repositories.RoomRepository, roomID, name string) (string, error) {
	if roomID != "" {
		room, err := rooms.GetRoom(ctx, roomID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoomNotFound) {
				return "", fmt.Errorf("%w: default room %q", ErrNotFound, roomID)
			}
			return "", err
		}
		return room.ID, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: no default room configured", ErrNotFound)
	}
	room, err := rooms.GetRoomByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return "", fmt.Errorf("%w: default room %q", ErrNotFound, name)
		}
		return "", err
	}
	return room.ID, nil
}

// SendMessage validates and stores a message, then pushes it to subscribers.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error) {
	content := strings.TrimSpace(in.Content)
	username := strings.TrimSpace(in.Username)
	if content == "" {
		return models.Message{}, validationError("content is required")
	}
	if username == "" {
		return models.Message{}, validationError("username is required")
	}

	roomID, err := s.targetRoom(ctx, in.RoomID)
	if err != nil {
		return models.Message{}, err
	}

	var email *string
	if e := strings.TrimSpace(in.UserEmail); e != "" {
		email = &e
	}

	msg, err := s.messages.CreateMessage(ctx, repositories.NewMessage{
		Content:   content,
		Username:  username,
		UserEmail: email,
		IsAdmin:   in.IsAdmin,
		RoomID:    roomID,
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("store message: %w", err)
	}

	source := "user"
	if msg.IsAdmin {
		source = "admin"
	}
	observability.IncMessageSent(source)
	s.notifier.BroadcastMessage(msg)
	return msg, nil
}

// ListMessages returns up to MessagePageLimit messages of a room in
// ascending order, strictly after since when given. An unknown room yields
// an empty page.
func (s *ChatService) ListMessages(ctx context.Context, roomID string, since *time.Time) ([]models.Message, error) {
	if roomID == "" {
		if s.defaultRoomID == "" {
			return []models.Message{}, nil
		}
		roomID = s.defaultRoomID
	}

	msgs, err := s.messages.ListRoomMessages(ctx, roomID, since, MessagePageLimit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// ListRoomsSummary returns active rooms with message counts, oldest first.
func (s *ChatService) ListRoomsSummary(ctx context.Context) ([]models.RoomSummary, error) {
	rooms, err := s.rooms.ListRoomSummaries(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}
	return rooms, nil
}

func (s *ChatService) targetRoom(ctx context.Context, roomID string) (string, error) {
	if roomID == "" {
		if s.defaultRoomID == "" {
			return "", fmt.Errorf("%w: no room given and no default room configured", ErrNotFound)
		}
		roomID = s.defaultRoomID
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			logging.Ctx(ctx).Debug().Str(logging.FieldRoomID, roomID).Msg("message for unknown room")
			return "", fmt.Errorf("%w: room not found", ErrNotFound)
		}
		return "", fmt.Errorf("load room: %w", err)
	}
	return roomID, nil
}
