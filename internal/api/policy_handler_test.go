package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// fakePolicyReader serves canned search and aggregation results.
type fakePolicyReader struct {
	searchResults []store.PolicyWithRefs
	searchErr     error
	summaries     []store.UserPolicySummary
	aggregateErr  error

	gotFirstName string
}

func (f *fakePolicyReader) SearchByFirstName(_ context.Context, firstName string) ([]store.PolicyWithRefs, error) {
	f.gotFirstName = firstName
	return f.searchResults, f.searchErr
}

func (f *fakePolicyReader) AggregateByUser(_ context.Context) ([]store.UserPolicySummary, error) {
	return f.summaries, f.aggregateErr
}

func TestPolicyHandler_Search(t *testing.T) {
	t.Parallel()

	reader := &fakePolicyReader{
		searchResults: []store.PolicyWithRefs{
			{Policy: domain.Policy{Number: "POL-100"}},
			{Policy: domain.Policy{Number: "POL-200"}},
		},
	}
	handler := NewPolicyHandler(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/policies/search?username=Alex", nil)
	rr := httptest.NewRecorder()
	handler.SearchPolicies(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alex", reader.gotFirstName)
	assert.Contains(t, rr.Body.String(), `"count":2`)
	assert.Contains(t, rr.Body.String(), "POL-100")
}

func TestPolicyHandler_Search_MissingUsername(t *testing.T) {
	t.Parallel()

	handler := NewPolicyHandler(&fakePolicyReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/policies/search", nil)
	rr := httptest.NewRecorder()
	handler.SearchPolicies(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "username")
}

func TestPolicyHandler_Search_NoMatches(t *testing.T) {
	t.Parallel()

	handler := NewPolicyHandler(&fakePolicyReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/policies/search?username=Nobody", nil)
	rr := httptest.NewRecorder()
	handler.SearchPolicies(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":0`)
	assert.Contains(t, rr.Body.String(), `"policies":[]`)
}

func TestPolicyHandler_Search_ReaderFault(t *testing.T) {
	t.Parallel()

	reader := &fakePolicyReader{searchErr: errors.New("db down")}
	handler := NewPolicyHandler(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/policies/search?username=Alex", nil)
	rr := httptest.NewRecorder()
	handler.SearchPolicies(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}

func TestPolicyHandler_Aggregate(t *testing.T) {
	t.Parallel()

	reader := &fakePolicyReader{
		summaries: []store.UserPolicySummary{
			{
				User:        domain.User{FirstName: "Alex", Email: "alex@example.com"},
				PolicyCount: 2,
				Policies: []domain.Policy{
					{Number: "POL-100"},
					{Number: "POL-200"},
				},
			},
		},
	}
	handler := NewPolicyHandler(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/policies/aggregate", nil)
	rr := httptest.NewRecorder()
	handler.AggregatePolicies(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"policy_count":2`)
	assert.Contains(t, rr.Body.String(), "alex@example.com")
}

func TestPolicyHandler_Aggregate_Empty(t *testing.T) {
	t.Parallel()

	handler := NewPolicyHandler(&fakePolicyReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/policies/aggregate", nil)
	rr := httptest.NewRecorder()
	handler.AggregatePolicies(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"users":[]`)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	router := NewRouter(discardLogger(), Handlers{
		Upload:   NewUploadHandler(&fakeRunner{}, t.TempDir()),
		Schedule: NewScheduleHandler(&fakeScheduler{}),
		Policy:   NewPolicyHandler(&fakePolicyReader{}),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok":true`)
	assert.Contains(t, rr.Body.String(), `"pid"`)
}

func TestRouter_AttachesRequestScopedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	router := NewRouter(log, Handlers{
		Upload:   NewUploadHandler(&fakeRunner{}, t.TempDir()),
		Schedule: NewScheduleHandler(&fakeScheduler{err: errors.New("connection refused")}),
		Policy:   NewPolicyHandler(&fakePolicyReader{}),
	})

	body := strings.NewReader(`{"message":"x","run_at":"2026-09-01T10:30:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/schedules", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	// The handler logged through the context logger, which carries the
	// request ID stamped by the middleware.
	assert.Contains(t, buf.String(), "failed to schedule message")
	assert.Contains(t, buf.String(), "request_id")
}
