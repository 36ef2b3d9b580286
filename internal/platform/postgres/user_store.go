package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// UserStore implements store.UserStore.
//
// Users are deliberately not upserted: ingestion creates a user only when
// the email is unseen and never rewrites an existing record.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a UserStore on the given connection.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, firstname, dob, address, phone, state, zip, email, gender, user_type, created_at
		FROM users
		WHERE email = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.FirstName,
		&user.DOB,
		&user.Address,
		&user.Phone,
		&user.State,
		&user.Zip,
		&user.Email,
		&user.Gender,
		&user.UserType,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// Create implements store.UserStore.Create. A duplicate email maps to
// store.ErrEmailExists so callers can fall back to the existing record.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO users (id, firstname, dob, address, phone, state, zip, email, gender, user_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.DOB,
		user.Address,
		user.Phone,
		user.State,
		user.Zip,
		user.Email,
		user.Gender,
		user.UserType,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}
