package store

import (
	"context"

	"github.com/pmorchard/polis-api/internal/domain"
)

// PolicyWithRefs is a policy joined with the entities it references, as
// returned by the search endpoint.
type PolicyWithRefs struct {
	Policy  domain.Policy   `json:"policy"`
	User    *domain.User    `json:"user,omitempty"`
	Agent   *domain.Agent   `json:"agent,omitempty"`
	Account *domain.Account `json:"account,omitempty"`
	Lob     *domain.Lob     `json:"lob,omitempty"`
	Carrier *domain.Carrier `json:"carrier,omitempty"`
}

// UserPolicySummary is one row of the per-user policy aggregation.
type UserPolicySummary struct {
	User        domain.User     `json:"user"`
	PolicyCount int             `json:"policy_count"`
	Policies    []domain.Policy `json:"policies"`
}

// PolicyReader serves the read-side policy endpoints.
type PolicyReader interface {
	// SearchByFirstName returns the policies of every user whose first
	// name matches (case-insensitive, exact). An unknown name yields an
	// empty slice, not an error.
	SearchByFirstName(ctx context.Context, firstName string) ([]PolicyWithRefs, error)

	// AggregateByUser groups policies per user with a count and a summary
	// of each policy.
	AggregateByUser(ctx context.Context) ([]UserPolicySummary, error)
}
