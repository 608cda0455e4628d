package models

import "time"

// Admin is an administrator account. PasswordHash is a bcrypt hash.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// AdminIdentity is the public view of an authenticated admin.
type AdminIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity returns the public view of a.
func (a Admin) Identity() AdminIdentity {
	return AdminIdentity{ID: a.ID, Username: a.Username, Email: a.Email}
}
