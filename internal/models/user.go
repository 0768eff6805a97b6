package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account on the sync server.
// Client-side, only the email matters: it derives the storage partition key.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, used for login).
	Email string

	// DisplayName is the user's display name.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to JSON.
	PasswordHash string

	// CreatedAt is the Unix millisecond timestamp of registration.
	CreatedAt int64

	// UpdatedAt is the Unix millisecond timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser builds a User with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().UnixMilli()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
