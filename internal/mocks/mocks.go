package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, name string, description *string) (models.Room, error) {
	args := m.Called(ctx, name, description)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoomByName(ctx context.Context, name string) (models.Room, error) {
	args := m.Called(ctx, name)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) UpdateRoom(ctx context.Context, roomID string, name string, description *string) (models.Room, error) {
	args := m.Called(ctx, roomID, name, description)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ListRoomSummaries(ctx context.Context, activeOnly bool) ([]models.RoomSummary, error) {
	args := m.Called(ctx, activeOnly)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg repositories.NewMessage) (models.Message, error) {
	args := m.Called(ctx, msg)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID string, since *time.Time, limit int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, since, limit)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) CountMessages(ctx context.Context, since *time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

type AdminRepositoryMock struct {
	mock.Mock
}

func (m *AdminRepositoryMock) CreateAdmin(ctx context.Context, username, email, passwordHash string) (models.Admin, error) {
	args := m.Called(ctx, username, email, passwordHash)
	var admin models.Admin
	if val := args.Get(0); val != nil {
		admin = val.(models.Admin)
	}
	return admin, args.Error(1)
}

func (m *AdminRepositoryMock) GetAdmin(ctx context.Context, adminID string) (models.Admin, error) {
	args := m.Called(ctx, adminID)
	var admin models.Admin
	if val := args.Get(0); val != nil {
		admin = val.(models.Admin)
	}
	return admin, args.Error(1)
}

func (m *AdminRepositoryMock) GetAdminByUsername(ctx context.Context, username string) (models.Admin, error) {
	args := m.Called(ctx, username)
	var admin models.Admin
	if val := args.Get(0); val != nil {
		admin = val.(models.Admin)
	}
	return admin, args.Error(1)
}

func (m *AdminRepositoryMock) HasAnyAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type ContactRepositoryMock struct {
	mock.Mock
}

func (m *ContactRepositoryMock) CreateContact(ctx context.Context, name, email, subject, message string) (models.Contact, error) {
	args := m.Called(ctx, name, email, subject, message)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

var (
	_ repositories.RoomRepository    = (*RoomRepositoryMock)(nil)
	_ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
	_ repositories.AdminRepository   = (*AdminRepositoryMock)(nil)
	_ repositories.ContactRepository = (*ContactRepositoryMock)(nil)
)
