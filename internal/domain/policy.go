package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyPolicyNumber indicates a policy was constructed without a number.
var ErrEmptyPolicyNumber = errors.New("policy number cannot be empty")

// Policy links a policy number to the entities resolved during ingestion.
// All references are nullable: a row may carry a policy number without an
// agent, account, category or carrier, and the policy is stored with
// whatever subset was present.
type Policy struct {
	ID        uuid.UUID     `json:"id"`
	Number    string        `json:"policy_number"`
	StartDate *time.Time    `json:"policy_start_date,omitempty"`
	EndDate   *time.Time    `json:"policy_end_date,omitempty"`
	AgentID   uuid.NullUUID `json:"agent_id"`
	UserID    uuid.NullUUID `json:"user_id"`
	AccountID uuid.NullUUID `json:"account_id"`
	LobID     uuid.NullUUID `json:"lob_id"`
	CarrierID uuid.NullUUID `json:"carrier_id"`
	CreatedAt time.Time     `json:"created_at"`
}

// Validate checks if the Policy has valid data.
func (p *Policy) Validate() error {
	if p.Number == "" {
		return ErrEmptyPolicyNumber
	}
	return nil
}
