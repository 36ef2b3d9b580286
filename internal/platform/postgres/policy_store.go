package postgres

import (
	"context"
	"fmt"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// PolicyStore implements store.PolicyStore.
type PolicyStore struct {
	db store.DBTX
}

// NewPolicyStore creates a PolicyStore on the given connection.
func NewPolicyStore(db store.DBTX) *PolicyStore {
	return &PolicyStore{db: db}
}

var _ store.PolicyStore = (*PolicyStore)(nil)

// UpsertByNumber implements store.PolicyStore.UpsertByNumber. On conflict
// every reference column is replaced: re-ingesting a row refreshes the
// policy's linkage without creating a second record.
func (s *PolicyStore) UpsertByNumber(ctx context.Context, policy *domain.Policy) (*domain.Policy, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO policies (
			id, policy_number, policy_start_date, policy_end_date,
			agent_id, user_id, account_id, lob_id, carrier_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (policy_number) DO UPDATE SET
			policy_start_date = EXCLUDED.policy_start_date,
			policy_end_date   = EXCLUDED.policy_end_date,
			agent_id          = EXCLUDED.agent_id,
			user_id           = EXCLUDED.user_id,
			account_id        = EXCLUDED.account_id,
			lob_id            = EXCLUDED.lob_id,
			carrier_id        = EXCLUDED.carrier_id
		RETURNING id, policy_number, policy_start_date, policy_end_date,
			agent_id, user_id, account_id, lob_id, carrier_id, created_at
	`

	var out domain.Policy
	err := s.db.QueryRowContext(ctx, query,
		policy.ID,
		policy.Number,
		policy.StartDate,
		policy.EndDate,
		policy.AgentID,
		policy.UserID,
		policy.AccountID,
		policy.LobID,
		policy.CarrierID,
	).Scan(
		&out.ID,
		&out.Number,
		&out.StartDate,
		&out.EndDate,
		&out.AgentID,
		&out.UserID,
		&out.AccountID,
		&out.LobID,
		&out.CarrierID,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert policy: %w", err)
	}

	return &out, nil
}
