package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"portfolio-chat/internal/db"
	"portfolio-chat/internal/models"
)

// AdminRepository abstracts admin account persistence.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, username, email, passwordHash string) (models.Admin, error)
	GetAdmin(ctx context.Context, adminID string) (models.Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (models.Admin, error)
	HasAnyAdmin(ctx context.Context) (bool, error)
}

// AdminRepo is a sqlx implementation of AdminRepository.
type AdminRepo struct {
	db *sqlx.DB
}

// NewAdminRepo constructs an AdminRepo.
func NewAdminRepo(db *sqlx.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

const adminColumns = `id, username, email, password_hash, is_active, created_at`

// CreateAdmin inserts an active admin. A taken username or email yields ErrDuplicate.
func (r *AdminRepo) CreateAdmin(ctx context.Context, username, email, passwordHash string) (models.Admin, error) {
	id, err := newID()
	if err != nil {
		return models.Admin{}, err
	}
	admin := models.Admin{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    db.Now(),
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO admins (`+adminColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.IsActive, admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Admin{}, ErrDuplicate
		}
		return models.Admin{}, err
	}
	return admin, nil
}

// GetAdmin fetches an admin by id.
func (r *AdminRepo) GetAdmin(ctx context.Context, adminID string) (models.Admin, error) {
	var admin models.Admin
	err := r.db.GetContext(ctx, &admin, r.db.Rebind(`SELECT `+adminColumns+` FROM admins WHERE id = ?`), adminID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrAdminNotFound
	}
	return admin, err
}

// GetAdminByUsername fetches an admin by username.
func (r *AdminRepo) GetAdminByUsername(ctx context.Context, username string) (models.Admin, error) {
	var admin models.Admin
	err := r.db.GetContext(ctx, &admin, r.db.Rebind(`SELECT `+adminColumns+` FROM admins WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrAdminNotFound
	}
	return admin, err
}

// HasAnyAdmin reports whether at least one admin row exists.
func (r *AdminRepo) HasAnyAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM admins)`)
	return exists, err
}
