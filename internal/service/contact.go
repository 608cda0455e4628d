package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/repositories"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactService stores contact form submissions.
type ContactService struct {
	contacts repositories.ContactRepository
}

func NewContactService(contacts repositories.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// Submit validates and stores a contact request.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)

	if name == "" || email == "" || subject == "" || message == "" {
		return models.Contact{}, validationError("all fields are required")
	}
	if !emailPattern.MatchString(email) {
		return models.Contact{}, validationError("invalid email address")
	}

	contact, err := s.contacts.CreateContact(ctx, name, email, subject, message)
	if err != nil {
		return models.Contact{}, fmt.Errorf("store contact: %w", err)
	}
	return contact, nil
}
