package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
)

// AgentStore persists agents keyed by agent name.
type AgentStore interface {
	// UpsertByName creates the agent if absent and returns the stored
	// record either way. Repeating the call with the same name is a no-op.
	UpsertByName(ctx context.Context, name string) (*domain.Agent, error)
}

// UserStore persists users keyed by email.
//
// Note the asymmetry with the other entity stores: users are
// find-then-create, never find-then-merge. An existing user's fields are
// left untouched by later imports carrying the same email.
type UserStore interface {
	// GetByEmail returns the user with the given email, or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Create inserts a new user record.
	Create(ctx context.Context, user *domain.User) error
}

// AccountStore persists accounts keyed by account name.
type AccountStore interface {
	// UpsertByName creates or updates the account, always re-pointing its
	// user reference at userID.
	UpsertByName(ctx context.Context, name string, userID uuid.NullUUID) (*domain.Account, error)
}

// LobStore persists line-of-business categories keyed by category name.
type LobStore interface {
	UpsertByName(ctx context.Context, name string) (*domain.Lob, error)
}

// CarrierStore persists carriers keyed by company name.
type CarrierStore interface {
	UpsertByName(ctx context.Context, name string) (*domain.Carrier, error)
}

// PolicyStore persists policies keyed by policy number.
type PolicyStore interface {
	// UpsertByNumber creates or replaces the policy identified by
	// policy.Number, including all of its nullable references.
	UpsertByNumber(ctx context.Context, policy *domain.Policy) (*domain.Policy, error)
}

// EntityStores bundles everything the ingestion pipeline writes to.
type EntityStores struct {
	Agents   AgentStore
	Users    UserStore
	Accounts AccountStore
	Lobs     LobStore
	Carriers CarrierStore
	Policies PolicyStore
}
