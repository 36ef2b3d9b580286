package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = "agent,firstname,dob,email,account_name,category_name,company_name,policy_number,policy_start_date,policy_end_date\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	csv := sampleHeader +
		"Smith,Ann,1990-05-01,ann@example.com,Ann Account,Auto,Acme Insurance,P-100,2024-01-01,2025-01-01\n" +
		"Smith,Bob,1985-02-11,bob@example.com,Bob Account,Home,Acme Insurance,P-200,2024-06-01,2025-06-01\n"
	path := writeTempFile(t, "policies.csv", csv)

	stores := newMemStores()
	p := NewPipeline(stores.entityStores(), discardLogger())

	n, err := p.Run(context.Background(), path, "policies.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Shared agent and carrier collapse onto one record each.
	assert.Len(t, stores.agents, 1)
	assert.Len(t, stores.carriers, 1)
	assert.Len(t, stores.users, 2)
	assert.Len(t, stores.accounts, 2)
	assert.Len(t, stores.lobs, 2)
	assert.Len(t, stores.policies, 2)

	policy := stores.policies["P-100"]
	require.NotNil(t, policy)
	assert.True(t, policy.AgentID.Valid)
	assert.True(t, policy.UserID.Valid)
	assert.Equal(t, stores.users["ann@example.com"].ID, policy.UserID.UUID)
	require.NotNil(t, policy.StartDate)
	assert.Equal(t, "2024-01-01", policy.StartDate.Format("2006-01-02"))
}

func TestPipeline_ReingestIsIdempotent(t *testing.T) {
	t.Parallel()

	csv := sampleHeader +
		"Smith,Ann,1990-05-01,ann@example.com,Ann Account,Auto,Acme Insurance,P-100,2024-01-01,2025-01-01\n"
	path := writeTempFile(t, "policies.csv", csv)

	stores := newMemStores()
	p := NewPipeline(stores.entityStores(), discardLogger())

	_, err := p.Run(context.Background(), path, "policies.csv")
	require.NoError(t, err)
	firstPolicyID := stores.policies["P-100"].ID

	_, err = p.Run(context.Background(), path, "policies.csv")
	require.NoError(t, err)

	assert.Len(t, stores.agents, 1)
	assert.Len(t, stores.users, 1)
	assert.Len(t, stores.accounts, 1)
	assert.Len(t, stores.lobs, 1)
	assert.Len(t, stores.carriers, 1)
	assert.Len(t, stores.policies, 1)
	assert.Equal(t, firstPolicyID, stores.policies["P-100"].ID)
}

func TestPipeline_ExistingUserNeverUpdated(t *testing.T) {
	t.Parallel()

	first := sampleHeader +
		"Smith,Ann,1990-05-01,ann@example.com,,,,P-100,,\n"
	second := sampleHeader +
		"Smith,Annabelle,1991-06-02,ann@example.com,,,,P-101,,\n"

	stores := newMemStores()
	p := NewPipeline(stores.entityStores(), discardLogger())

	_, err := p.Run(context.Background(), writeTempFile(t, "first.csv", first), "first.csv")
	require.NoError(t, err)
	_, err = p.Run(context.Background(), writeTempFile(t, "second.csv", second), "second.csv")
	require.NoError(t, err)

	// Same email: the second row resolves to the original record and its
	// differing fields are discarded.
	require.Len(t, stores.users, 1)
	user := stores.users["ann@example.com"]
	assert.Equal(t, "Ann", user.FirstName)
	assert.Equal(t, "1990-05-01", user.DOB)

	// Both policies still link to that one user.
	assert.Equal(t, user.ID, stores.policies["P-100"].UserID.UUID)
	assert.Equal(t, user.ID, stores.policies["P-101"].UserID.UUID)
}

func TestPipeline_RowFaultDoesNotAbortRun(t *testing.T) {
	t.Parallel()

	csv := sampleHeader +
		"BadAgent,Ann,1990-05-01,ann@example.com,,,,P-100,,\n" +
		"Smith,Bob,1985-02-11,bob@example.com,,,,P-200,,\n"
	path := writeTempFile(t, "policies.csv", csv)

	stores := newMemStores()
	stores.failAgent = "BadAgent"
	p := NewPipeline(stores.entityStores(), discardLogger())

	n, err := p.Run(context.Background(), path, "policies.csv")
	require.NoError(t, err)

	// Both rows were attempted; only the healthy one persisted anything.
	assert.Equal(t, 2, n)
	assert.Len(t, stores.policies, 1)
	assert.NotNil(t, stores.policies["P-200"])
	assert.Nil(t, stores.users["ann@example.com"])
}

func TestPipeline_RowWithoutPolicyNumber(t *testing.T) {
	t.Parallel()

	csv := sampleHeader +
		"Smith,Ann,1990-05-01,ann@example.com,Ann Account,Auto,Acme Insurance,,,\n"
	path := writeTempFile(t, "policies.csv", csv)

	stores := newMemStores()
	p := NewPipeline(stores.entityStores(), discardLogger())

	n, err := p.Run(context.Background(), path, "policies.csv")
	require.NoError(t, err)

	// Partial import: entities exist, no policy record.
	assert.Equal(t, 1, n)
	assert.Len(t, stores.users, 1)
	assert.Len(t, stores.accounts, 1)
	assert.Empty(t, stores.policies)
}

func TestPipeline_UnsupportedFormatWritesNothing(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notes.txt", "email\nann@example.com\n")

	stores := newMemStores()
	p := NewPipeline(stores.entityStores(), discardLogger())

	_, err := p.Run(context.Background(), path, "notes.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Empty(t, stores.users)
	assert.Empty(t, stores.policies)
}
