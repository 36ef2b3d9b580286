package api

import (
	"net/http"
	"strings"

	"github.com/pmorchard/polis-api/internal/api/shared"
	"github.com/pmorchard/polis-api/internal/platform/logger"
	"github.com/pmorchard/polis-api/internal/store"
)

// PolicyHandler serves the policy read endpoints.
type PolicyHandler struct {
	reader store.PolicyReader
}

// NewPolicyHandler creates a PolicyHandler backed by the given reader.
func NewPolicyHandler(reader store.PolicyReader) *PolicyHandler {
	return &PolicyHandler{reader: reader}
}

// SearchResponse is the payload of the policy search endpoint.
type SearchResponse struct {
	Count    int                    `json:"count"`
	Policies []store.PolicyWithRefs `json:"policies"`
}

// SearchPolicies handles GET /api/policies/search?username=<firstname>.
// Matching is case-insensitive and exact on the user's first name.
func (h *PolicyHandler) SearchPolicies(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "The username query parameter is required")
		return
	}

	policies, err := h.reader.SearchByFirstName(r.Context(), username)
	if err != nil {
		logger.FromContext(r.Context()).Error("policy search failed", "error", err, "username", username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to search policies")
		return
	}

	if policies == nil {
		policies = []store.PolicyWithRefs{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SearchResponse{
		Count:    len(policies),
		Policies: policies,
	})
}

// AggregateResponse is the payload of the per-user aggregation endpoint.
type AggregateResponse struct {
	Count int                       `json:"count"`
	Users []store.UserPolicySummary `json:"users"`
}

// AggregatePolicies handles GET /api/policies/aggregate.
func (h *PolicyHandler) AggregatePolicies(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.reader.AggregateByUser(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("policy aggregation failed", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to aggregate policies")
		return
	}

	if summaries == nil {
		summaries = []store.UserPolicySummary{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AggregateResponse{
		Count: len(summaries),
		Users: summaries,
	})
}
