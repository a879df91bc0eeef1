package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemoryBatch(t *testing.T, store *MemoryStore) (*Batch, *Candidate) {
	t.Helper()
	batch := &Batch{Name: "seed", RecruiterID: "r1", UploadType: "csv"}
	candidate := &Candidate{
		FullName:   "Jane Doe",
		Employment: []Employment{{CompanyName: "Acme", Position: "Engineer", Ordinal: 0}},
		Education:  []Education{{Institution: "MIT", Degree: "BSc", Ordinal: 0}},
	}
	require.NoError(t, store.CreateBatch(context.Background(), batch, []*Candidate{candidate}))
	return batch, candidate
}

func TestCreateBatchAssignsIDsAndDefaults(t *testing.T) {
	store := NewMemoryStore()
	batch, candidate := seedMemoryBatch(t, store)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, StatusPending, batch.Status)
	assert.Equal(t, 1, batch.TotalCandidates)

	loaded, err := store.GetCandidate(context.Background(), candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, loaded.BatchID)
	assert.Equal(t, StatusPending, loaded.VerificationStatus)
	require.Len(t, loaded.Employment, 1)
	assert.Equal(t, ClaimPending, loaded.Employment[0].ClaimStatus)
	require.Len(t, loaded.Education, 1)
	assert.Equal(t, ClaimPending, loaded.Education[0].ClaimStatus)
}

func TestGetCandidateReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	_, candidate := seedMemoryBatch(t, store)
	ctx := context.Background()

	first, err := store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	first.FullName = "mutated"
	first.Employment[0].CompanyName = "mutated"

	second, err := store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", second.FullName)
	assert.Equal(t, "Acme", second.Employment[0].CompanyName)
}

func TestDeleteBatchCascades(t *testing.T) {
	store := NewMemoryStore()
	batch, candidate := seedMemoryBatch(t, store)
	ctx := context.Background()

	loaded, err := store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	employmentID := loaded.Employment[0].ID
	educationID := loaded.Education[0].ID

	require.NoError(t, store.DeleteBatch(ctx, batch.ID))

	_, err = store.GetBatch(ctx, batch.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetCandidate(ctx, candidate.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetEmployment(ctx, employmentID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetEducation(ctx, educationID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBatchMissing(t *testing.T) {
	store := NewMemoryStore()
	err := store.DeleteBatch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimCandidateCheckAndSet(t *testing.T) {
	store := NewMemoryStore()
	_, candidate := seedMemoryBatch(t, store)
	ctx := context.Background()

	claimed, err := store.ClaimCandidate(ctx, candidate.ID, "v1")
	require.NoError(t, err)
	assert.True(t, claimed)

	// The second claim observes IN_PROGRESS and loses without error.
	claimed, err = store.ClaimCandidate(ctx, candidate.ID, "v2")
	require.NoError(t, err)
	assert.False(t, claimed)

	loaded, err := store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", loaded.VerifierID)

	_, err = store.ClaimCandidate(ctx, "nope", "v1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountPendingClaims(t *testing.T) {
	store := NewMemoryStore()
	_, candidate := seedMemoryBatch(t, store)
	ctx := context.Background()

	emp, edu, err := store.CountPendingClaims(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, emp)
	assert.Equal(t, 1, edu)

	loaded, err := store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, store.UpdateEmploymentVerification(ctx, loaded.Employment[0].ID, ClaimVerified, "", nil, now))

	emp, edu, err = store.CountPendingClaims(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, emp)
	assert.Equal(t, 1, edu)
}

func TestRecountBatchProgress(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	batch := &Batch{Name: "pair", RecruiterID: "r1", UploadType: "csv"}
	first := &Candidate{FullName: "Jane Doe"}
	second := &Candidate{FullName: "John Roe"}
	require.NoError(t, store.CreateBatch(ctx, batch, []*Candidate{first, second}))

	now := time.Now().UTC()
	require.NoError(t, store.CompleteCandidate(ctx, first.ID, now))

	updated, err := store.RecountBatchProgress(ctx, batch.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.VerifiedCount)
	assert.Equal(t, StatusPending, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	require.NoError(t, store.CompleteCandidate(ctx, second.ID, now))
	updated, err = store.RecountBatchProgress(ctx, batch.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.VerifiedCount)
	assert.Equal(t, StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
}

func TestListBatchesScopedByRecruiter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateBatch(ctx, &Batch{Name: "a", RecruiterID: "r1"}, nil))
	require.NoError(t, store.CreateBatch(ctx, &Batch{Name: "b", RecruiterID: "r2"}, nil))

	all, err := store.ListBatches(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.ListBatches(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].Name)
}
