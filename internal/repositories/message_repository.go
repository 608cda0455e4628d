package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"portfolio-chat/internal/db"
	"portfolio-chat/internal/models"
)

// NewMessage carries the caller-supplied fields of a message.
type NewMessage struct {
	Content   string
	Username  string
	UserEmail *string
	IsAdmin   bool
	RoomID    string
}

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg NewMessage) (models.Message, error)
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
	ListRoomMessages(ctx context.Context, roomID string, since *time.Time, limit int) ([]models.Message, error)
	ListRecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	DeleteMessage(ctx context.Context, messageID string) error
	CountMessages(ctx context.Context, since *time.Time) (int, error)
}

// MessageRepo is a sqlx-backed implementation.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, content, username, user_email, is_admin, room_id, created_at`

// CreateMessage persists a message with a server-assigned id and timestamp.
func (r *MessageRepo) CreateMessage(ctx context.Context, in NewMessage) (models.Message, error) {
	id, err := newID()
	if err != nil {
		return models.Message{}, err
	}
	msg := models.Message{
		ID:        id,
		Content:   in.Content,
		Username:  in.Username,
		UserEmail: in.UserEmail,
		IsAdmin:   in.IsAdmin,
		RoomID:    in.RoomID,
		CreatedAt: db.Now(),
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		msg.ID, msg.Content, msg.Username, msg.UserEmail, msg.IsAdmin, msg.RoomID, msg.CreatedAt)
	return msg, err
}

// GetMessage fetches a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, r.db.Rebind(`SELECT `+messageColumns+` FROM messages WHERE id = ?`), messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListRoomMessages returns a page of a room's messages in ascending order.
// With since set it is the oldest page strictly after since, which lets a
// cursor walk forward; without it, the newest page.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID string, since *time.Time, limit int) ([]models.Message, error) {
	msgs := []models.Message{}
	if since != nil {
		err := r.db.SelectContext(ctx, &msgs, r.db.Rebind(`SELECT `+messageColumns+` FROM messages
            WHERE room_id = ? AND created_at > ? ORDER BY created_at ASC, id ASC LIMIT ?`), roomID, since.UTC(), limit)
		return msgs, err
	}

	err := r.db.SelectContext(ctx, &msgs, r.db.Rebind(`SELECT `+messageColumns+` FROM messages
        WHERE room_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`), roomID, limit)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// ListRecentMessages returns the newest limit messages, optionally scoped to
// one room, in chronological order.
func (r *MessageRepo) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	args := []any{}
	if roomID != "" {
		query += ` WHERE room_id = ?`
		args = append(args, roomID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	msgs := []models.Message{}
	if err := r.db.SelectContext(ctx, &msgs, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// DeleteMessage hard-deletes a message.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM messages WHERE id = ?`), messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CountMessages counts all messages, or those created at or after since.
func (r *MessageRepo) CountMessages(ctx context.Context, since *time.Time) (int, error) {
	var count int
	if since == nil {
		err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`)
		return count, err
	}
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM messages WHERE created_at >= ?`), since.UTC())
	return count, err
}

func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
