package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID = errors.New("user ID cannot be empty")
	ErrEmptyEmail  = errors.New("email cannot be empty")
)

// User represents a policy holder imported from an uploaded file.
// Users are keyed by email: ingestion creates a user only when no record
// with the same email exists, and never updates an existing one.
type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstname"`
	DOB       string    `json:"dob,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	State     string    `json:"state,omitempty"`
	Zip       string    `json:"zip,omitempty"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender,omitempty"`
	UserType  string    `json:"user_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a User with a fresh ID and creation timestamp.
// Returns an error if validation fails.
func NewUser(email string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
