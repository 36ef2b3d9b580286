package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// PolicyReader implements store.PolicyReader.
type PolicyReader struct {
	db store.DBTX
}

// NewPolicyReader creates a PolicyReader on the given connection.
func NewPolicyReader(db store.DBTX) *PolicyReader {
	return &PolicyReader{db: db}
}

var _ store.PolicyReader = (*PolicyReader)(nil)

// SearchByFirstName implements store.PolicyReader.SearchByFirstName.
func (s *PolicyReader) SearchByFirstName(ctx context.Context, firstName string) ([]store.PolicyWithRefs, error) {
	const query = `
		SELECT
			p.id, p.policy_number, p.policy_start_date, p.policy_end_date,
			p.agent_id, p.user_id, p.account_id, p.lob_id, p.carrier_id, p.created_at,
			u.id, u.firstname, u.email, u.created_at,
			ag.id, ag.agent, ag.created_at,
			ac.id, ac.account_name, ac.user_id, ac.created_at,
			l.id, l.category_name, l.created_at,
			c.id, c.company_name, c.created_at
		FROM policies p
		JOIN users u       ON u.id  = p.user_id
		LEFT JOIN agents ag   ON ag.id = p.agent_id
		LEFT JOIN accounts ac ON ac.id = p.account_id
		LEFT JOIN lobs l      ON l.id  = p.lob_id
		LEFT JOIN carriers c  ON c.id  = p.carrier_id
		WHERE lower(u.firstname) = lower($1)
		ORDER BY p.created_at
	`

	rows, err := s.db.QueryContext(ctx, query, firstName)
	if err != nil {
		return nil, fmt.Errorf("failed to search policies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []store.PolicyWithRefs{}
	for rows.Next() {
		var (
			out store.PolicyWithRefs

			user domain.User

			agentID, accountID, lobID, carrierID          uuid.NullUUID
			agentName, accountName, lobName, carrierName  sql.NullString
			agentAt, accountAt, lobAt, carrierAt          sql.NullTime
			accountUserID                                 uuid.NullUUID
		)

		if err := rows.Scan(
			&out.Policy.ID, &out.Policy.Number, &out.Policy.StartDate, &out.Policy.EndDate,
			&out.Policy.AgentID, &out.Policy.UserID, &out.Policy.AccountID,
			&out.Policy.LobID, &out.Policy.CarrierID, &out.Policy.CreatedAt,
			&user.ID, &user.FirstName, &user.Email, &user.CreatedAt,
			&agentID, &agentName, &agentAt,
			&accountID, &accountName, &accountUserID, &accountAt,
			&lobID, &lobName, &lobAt,
			&carrierID, &carrierName, &carrierAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan policy row: %w", err)
		}

		out.User = &user
		if agentID.Valid {
			out.Agent = &domain.Agent{ID: agentID.UUID, Name: agentName.String, CreatedAt: agentAt.Time}
		}
		if accountID.Valid {
			out.Account = &domain.Account{
				ID:        accountID.UUID,
				Name:      accountName.String,
				UserID:    accountUserID,
				CreatedAt: accountAt.Time,
			}
		}
		if lobID.Valid {
			out.Lob = &domain.Lob{ID: lobID.UUID, Name: lobName.String, CreatedAt: lobAt.Time}
		}
		if carrierID.Valid {
			out.Carrier = &domain.Carrier{ID: carrierID.UUID, Name: carrierName.String, CreatedAt: carrierAt.Time}
		}

		results = append(results, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy rows: %w", err)
	}

	return results, nil
}

// AggregateByUser implements store.PolicyReader.AggregateByUser. Policies
// are fetched user-ordered and folded in memory; policies with no user
// reference group under an empty user.
func (s *PolicyReader) AggregateByUser(ctx context.Context) ([]store.UserPolicySummary, error) {
	const query = `
		SELECT
			p.id, p.policy_number, p.policy_start_date, p.policy_end_date, p.created_at,
			u.id, u.firstname, u.email, u.created_at
		FROM policies p
		LEFT JOIN users u ON u.id = p.user_id
		ORDER BY u.id NULLS LAST, p.created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate policies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []store.UserPolicySummary{}
	for rows.Next() {
		var (
			policy domain.Policy

			userID    uuid.NullUUID
			firstName sql.NullString
			email     sql.NullString
			userAt    sql.NullTime
		)

		if err := rows.Scan(
			&policy.ID, &policy.Number, &policy.StartDate, &policy.EndDate, &policy.CreatedAt,
			&userID, &firstName, &email, &userAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation row: %w", err)
		}

		n := len(summaries)
		if n == 0 || summaries[n-1].User.ID != userID.UUID {
			summaries = append(summaries, store.UserPolicySummary{
				User: domain.User{
					ID:        userID.UUID,
					FirstName: firstName.String,
					Email:     email.String,
					CreatedAt: userAt.Time,
				},
			})
			n++
		}
		summaries[n-1].PolicyCount++
		summaries[n-1].Policies = append(summaries[n-1].Policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregation rows: %w", err)
	}

	return summaries, nil
}
