package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// Column names expected in uploaded files. Unknown columns are ignored.
const (
	colAgent       = "agent"
	colFirstName   = "firstname"
	colDOB         = "dob"
	colAddress     = "address"
	colPhone       = "phone"
	colState       = "state"
	colZip         = "zip"
	colEmail       = "email"
	colGender      = "gender"
	colUserType    = "userType"
	colAccountName = "account_name"
	colCategory    = "category_name"
	colCompany     = "company_name"
	colPolicyNum   = "policy_number"
	colPolicyStart = "policy_start_date"
	colPolicyEnd   = "policy_end_date"
)

// Date layouts accepted for dob and policy date columns, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
}

// Pipeline normalizes parsed rows into idempotent entity upserts against
// the store. It is best-effort per row: a fault in one row is logged and
// the remaining rows still run.
type Pipeline struct {
	stores store.EntityStores
	logger *slog.Logger
}

// NewPipeline creates a Pipeline writing through the given stores.
func NewPipeline(stores store.EntityStores, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		stores: stores,
		logger: logger,
	}
}

// Run parses the file and processes every row in file order. It returns
// the number of rows attempted, which includes rows that faulted and were
// skipped. A parse-level failure (unreadable file, unsupported format)
// aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, filePath, originalName string) (int, error) {
	rows, err := ParseFile(filePath, originalName)
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if err := p.processRow(ctx, row); err != nil {
			// Row-level fault isolation: log and continue.
			p.logger.Error("row processing failed",
				"row", i+1,
				"error", err)
		}
	}

	return len(rows), nil
}

// processRow resolves a single row into up to five related entity upserts
// plus a policy upsert linking them. Each resolved reference may be null;
// a row without a policy number still creates its entities but is not
// persisted as a policy.
func (p *Pipeline) processRow(ctx context.Context, row Row) error {
	var agentID, userID, accountID, lobID, carrierID uuid.NullUUID

	if name := row.Get(colAgent); name != "" {
		agent, err := p.stores.Agents.UpsertByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to upsert agent %q: %w", name, err)
		}
		agentID = uuid.NullUUID{UUID: agent.ID, Valid: true}
	}

	if email := row.Get(colEmail); email != "" {
		user, err := p.resolveUser(ctx, row, email)
		if err != nil {
			return err
		}
		userID = uuid.NullUUID{UUID: user.ID, Valid: true}
	}

	if name := row.Get(colAccountName); name != "" {
		account, err := p.stores.Accounts.UpsertByName(ctx, name, userID)
		if err != nil {
			return fmt.Errorf("failed to upsert account %q: %w", name, err)
		}
		accountID = uuid.NullUUID{UUID: account.ID, Valid: true}
	}

	if name := row.Get(colCategory); name != "" {
		lob, err := p.stores.Lobs.UpsertByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to upsert lob %q: %w", name, err)
		}
		lobID = uuid.NullUUID{UUID: lob.ID, Valid: true}
	}

	if name := row.Get(colCompany); name != "" {
		carrier, err := p.stores.Carriers.UpsertByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to upsert carrier %q: %w", name, err)
		}
		carrierID = uuid.NullUUID{UUID: carrier.ID, Valid: true}
	}

	number := row.Get(colPolicyNum)
	if number == "" {
		// Partial import: entities created, no policy linkage.
		return nil
	}

	policy := &domain.Policy{
		ID:        uuid.New(),
		Number:    number,
		StartDate: parseDate(row.Get(colPolicyStart)),
		EndDate:   parseDate(row.Get(colPolicyEnd)),
		AgentID:   agentID,
		UserID:    userID,
		AccountID: accountID,
		LobID:     lobID,
		CarrierID: carrierID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := p.stores.Policies.UpsertByNumber(ctx, policy); err != nil {
		return fmt.Errorf("failed to upsert policy %q: %w", number, err)
	}

	return nil
}

// resolveUser finds the user by email or creates one from the row's
// fields. An existing user is returned as-is: imports never overwrite
// user data, unlike the merge semantics of every other entity here.
func (p *Pipeline) resolveUser(ctx context.Context, row Row, email string) (*domain.User, error) {
	user, err := p.stores.Users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user %q: %w", email, err)
	}

	user = &domain.User{
		ID:        uuid.New(),
		FirstName: row.Get(colFirstName),
		DOB:       row.Get(colDOB),
		Address:   row.Get(colAddress),
		Phone:     row.Get(colPhone),
		State:     row.Get(colState),
		Zip:       row.Get(colZip),
		Email:     email,
		Gender:    row.Get(colGender),
		UserType:  row.Get(colUserType),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.stores.Users.Create(ctx, user); err != nil {
		// A concurrent import may have created the same email between our
		// lookup and insert; the existing record wins.
		if errors.Is(err, store.ErrEmailExists) {
			return p.stores.Users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user %q: %w", email, err)
	}

	return user, nil
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
