package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// AgentStore implements store.AgentStore.
type AgentStore struct {
	db store.DBTX
}

// NewAgentStore creates an AgentStore on the given connection.
func NewAgentStore(db store.DBTX) *AgentStore {
	return &AgentStore{db: db}
}

var _ store.AgentStore = (*AgentStore)(nil)

// UpsertByName implements store.AgentStore.UpsertByName. The DO UPDATE
// arm is a no-op write of the same name; it exists so RETURNING yields
// the existing row on conflict.
func (s *AgentStore) UpsertByName(ctx context.Context, name string) (*domain.Agent, error) {
	const query = `
		INSERT INTO agents (id, agent, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (agent) DO UPDATE SET agent = EXCLUDED.agent
		RETURNING id, agent, created_at
	`

	var agent domain.Agent
	err := s.db.QueryRowContext(ctx, query, uuid.New(), name).
		Scan(&agent.ID, &agent.Name, &agent.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert agent: %w", err)
	}

	return &agent, nil
}

// LobStore implements store.LobStore.
type LobStore struct {
	db store.DBTX
}

// NewLobStore creates a LobStore on the given connection.
func NewLobStore(db store.DBTX) *LobStore {
	return &LobStore{db: db}
}

var _ store.LobStore = (*LobStore)(nil)

// UpsertByName implements store.LobStore.UpsertByName.
func (s *LobStore) UpsertByName(ctx context.Context, name string) (*domain.Lob, error) {
	const query = `
		INSERT INTO lobs (id, category_name, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (category_name) DO UPDATE SET category_name = EXCLUDED.category_name
		RETURNING id, category_name, created_at
	`

	var lob domain.Lob
	err := s.db.QueryRowContext(ctx, query, uuid.New(), name).
		Scan(&lob.ID, &lob.Name, &lob.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert lob: %w", err)
	}

	return &lob, nil
}

// CarrierStore implements store.CarrierStore.
type CarrierStore struct {
	db store.DBTX
}

// NewCarrierStore creates a CarrierStore on the given connection.
func NewCarrierStore(db store.DBTX) *CarrierStore {
	return &CarrierStore{db: db}
}

var _ store.CarrierStore = (*CarrierStore)(nil)

// UpsertByName implements store.CarrierStore.UpsertByName.
func (s *CarrierStore) UpsertByName(ctx context.Context, name string) (*domain.Carrier, error) {
	const query = `
		INSERT INTO carriers (id, company_name, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (company_name) DO UPDATE SET company_name = EXCLUDED.company_name
		RETURNING id, company_name, created_at
	`

	var carrier domain.Carrier
	err := s.db.QueryRowContext(ctx, query, uuid.New(), name).
		Scan(&carrier.ID, &carrier.Name, &carrier.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert carrier: %w", err)
	}

	return &carrier, nil
}

// AccountStore implements store.AccountStore.
type AccountStore struct {
	db store.DBTX
}

// NewAccountStore creates an AccountStore on the given connection.
func NewAccountStore(db store.DBTX) *AccountStore {
	return &AccountStore{db: db}
}

var _ store.AccountStore = (*AccountStore)(nil)

// UpsertByName implements store.AccountStore.UpsertByName. Unlike the
// name-only upserts above, an existing account's user reference is always
// refreshed to the given user.
func (s *AccountStore) UpsertByName(ctx context.Context, name string, userID uuid.NullUUID) (*domain.Account, error) {
	const query = `
		INSERT INTO accounts (id, account_name, user_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (account_name) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, account_name, user_id, created_at
	`

	var account domain.Account
	err := s.db.QueryRowContext(ctx, query, uuid.New(), name, userID).
		Scan(&account.ID, &account.Name, &account.UserID, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	return &account, nil
}
