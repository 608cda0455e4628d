package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"portfolio-chat/internal/db"
	"portfolio-chat/internal/models"
)

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, name string, description *string) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.Room, error)
	GetRoomByName(ctx context.Context, name string) (models.Room, error)
	UpdateRoom(ctx context.Context, roomID string, name string, description *string) (models.Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
	ListRoomSummaries(ctx context.Context, activeOnly bool) ([]models.RoomSummary, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, description, is_active, created_at`

// CreateRoom inserts an active room. A taken name yields ErrDuplicate.
func (r *RoomRepo) CreateRoom(ctx context.Context, name string, description *string) (models.Room, error) {
	id, err := newID()
	if err != nil {
		return models.Room{}, err
	}
	room := models.Room{ID: id, Name: name, Description: description, IsActive: true, CreatedAt: db.Now()}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO rooms (`+roomColumns+`) VALUES (?, ?, ?, ?, ?)`),
		room.ID, room.Name, room.Description, room.IsActive, room.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Room{}, ErrDuplicate
		}
		return models.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a single room.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, r.db.Rebind(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`), roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// GetRoomByName fetches a room by its unique name.
func (r *RoomRepo) GetRoomByName(ctx context.Context, name string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, r.db.Rebind(`SELECT `+roomColumns+` FROM rooms WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// UpdateRoom overwrites name and description.
func (r *RoomRepo) UpdateRoom(ctx context.Context, roomID string, name string, description *string) (models.Room, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE rooms SET name = ?, description = ? WHERE id = ?`), name, description, roomID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Room{}, ErrDuplicate
		}
		return models.Room{}, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return models.Room{}, err
	}
	if count == 0 {
		return models.Room{}, ErrRoomNotFound
	}
	return r.GetRoom(ctx, roomID)
}

// DeleteRoom removes a room; the foreign key cascades to its messages.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM rooms WHERE id = ?`), roomID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// ListRoomSummaries returns rooms with their message counts, oldest first.
func (r *RoomRepo) ListRoomSummaries(ctx context.Context, activeOnly bool) ([]models.RoomSummary, error) {
	query := `SELECT r.id, r.name, r.description, r.is_active, r.created_at, COUNT(m.id) AS message_count
        FROM rooms r LEFT JOIN messages m ON m.room_id = r.id`
	args := []any{}
	if activeOnly {
		query += ` WHERE r.is_active = ?`
		args = append(args, true)
	}
	query += ` GROUP BY r.id, r.name, r.description, r.is_active, r.created_at ORDER BY r.created_at ASC, r.id ASC`

	rooms := []models.RoomSummary{}
	err := r.db.SelectContext(ctx, &rooms, r.db.Rebind(query), args...)
	return rooms, err
}
