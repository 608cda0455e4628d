package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"portfolio-chat/internal/db"
	"portfolio-chat/internal/models"
)

// ContactRepository stores contact-form inquiries.
type ContactRepository interface {
	CreateContact(ctx context.Context, name, email, subject, message string) (models.Contact, error)
}

// ContactRepo is a sqlx implementation of ContactRepository.
type ContactRepo struct {
	db *sqlx.DB
}

// NewContactRepo constructs a ContactRepo.
func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// CreateContact persists an inquiry.
func (r *ContactRepo) CreateContact(ctx context.Context, name, email, subject, message string) (models.Contact, error) {
	id, err := newID()
	if err != nil {
		return models.Contact{}, err
	}
	contact := models.Contact{ID: id, Name: name, Email: email, Subject: subject, Message: message, CreatedAt: db.Now()}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO contacts (id, name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		contact.ID, contact.Name, contact.Email, contact.Subject, contact.Message, contact.CreatedAt)
	return contact, err
}
