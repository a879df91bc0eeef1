package verify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

var (
	verifier      = storage.User{ID: "verifier-1", Role: storage.RoleVerifier}
	otherVerifier = storage.User{ID: "verifier-2", Role: storage.RoleVerifier}
	recruiter     = storage.User{ID: "recruiter-1", Role: storage.RoleRecruiter}
)

// seedBatch stores one batch with the given candidates, each carrying
// one employment and one education claim.
func seedBatch(t *testing.T, store storage.Store, names ...string) (*storage.Batch, []*storage.Candidate) {
	t.Helper()
	ctx := context.Background()

	var candidates []*storage.Candidate
	for _, name := range names {
		candidates = append(candidates, &storage.Candidate{
			FullName: name,
			Employment: []storage.Employment{
				{CompanyName: "Acme", Position: "Engineer", Ordinal: 0},
			},
			Education: []storage.Education{
				{Institution: "MIT", Degree: "BSc", Ordinal: 0},
			},
		})
	}

	batch := &storage.Batch{Name: "test batch", RecruiterID: recruiter.ID, UploadType: "csv"}
	require.NoError(t, store.CreateBatch(ctx, batch, candidates))
	return batch, candidates
}

// adjudicateAll marks every claim of the candidate with the given status.
func adjudicateAll(t *testing.T, w *Workflow, c *storage.Candidate, by storage.User, status storage.ClaimStatus) {
	t.Helper()
	ctx := context.Background()
	for _, e := range c.Employment {
		_, err := w.SetEmploymentStatus(ctx, e.ID, by, status, "checked", []string{"registry"})
		require.NoError(t, err)
	}
	for _, e := range c.Education {
		_, err := w.SetEducationStatus(ctx, e.ID, by, status, "checked", []string{"registry"})
		require.NoError(t, err)
	}
}

func TestClaimAssignsVerifier(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))

	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusInProgress, c.VerificationStatus)
	assert.Equal(t, verifier.ID, c.VerifierID)
}

func TestClaimRequiresVerifierRole(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")

	err := w.Claim(context.Background(), candidates[0].ID, recruiter)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClaimAlreadyInProgress(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))

	err := w.Claim(ctx, candidates[0].ID, otherVerifier)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// The assigned verifier is untouched by the failed claim.
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, verifier.ID, c.VerifierID)
}

func TestClaimMissingCandidate(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	seedBatch(t, store, "Jane Doe")

	err := w.Claim(context.Background(), "no-such-id", verifier)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClaimRaceExactlyOneWinner(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	contenders := []storage.User{verifier, otherVerifier}
	errs := make([]error, len(contenders))

	var wg sync.WaitGroup
	for i, u := range contenders {
		wg.Add(1)
		go func(i int, u storage.User) {
			defer wg.Done()
			errs[i] = w.Claim(ctx, candidates[0].ID, u)
		}(i, u)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestSetClaimStatusRequiresInProgress(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)

	_, err = w.SetEmploymentStatus(ctx, c.Employment[0].ID, verifier, storage.ClaimVerified, "", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetClaimStatusNotOwner(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)

	_, err = w.SetEmploymentStatus(ctx, c.Employment[0].ID, otherVerifier, storage.ClaimVerified, "", nil)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSetClaimStatusOverwrites(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	empID := c.Employment[0].ID

	first, err := w.SetEmploymentStatus(ctx, empID, verifier, storage.ClaimVerified, "looks right", []string{"employer call"})
	require.NoError(t, err)
	assert.Equal(t, storage.ClaimVerified, first.ClaimStatus)
	require.NotNil(t, first.VerifiedAt)

	// Re-verification overwrites, it does not append.
	second, err := w.SetEmploymentStatus(ctx, empID, verifier, storage.ClaimUncertain, "dates disputed", []string{"registry"})
	require.NoError(t, err)
	assert.Equal(t, storage.ClaimUncertain, second.ClaimStatus)
	assert.Equal(t, "dates disputed", second.VerificationNote)
	assert.Equal(t, []string{"registry"}, second.VerificationSources)
}

func TestSetClaimStatusRejectsUnknownStatus(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)

	_, err = w.SetEmploymentStatus(ctx, c.Employment[0].ID, verifier, storage.ClaimStatus("MAYBE"), "", nil)
	assert.Error(t, err)
}

func TestCompleteReportsPendingCounts(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))

	_, err := w.Complete(ctx, candidates[0].ID, verifier)
	var incomplete *IncompleteClaimsError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, incomplete.PendingEmployment)
	assert.Equal(t, 1, incomplete.PendingEducation)

	// Candidate state is untouched by the failed completion.
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusInProgress, c.VerificationStatus)
	assert.Nil(t, c.VerifiedAt)
}

func TestCompleteOnlyByOwner(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	adjudicateAll(t, w, c, verifier, storage.ClaimVerified)

	_, err = w.Complete(ctx, candidates[0].ID, otherVerifier)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")

	_, err := w.Complete(context.Background(), candidates[0].ID, verifier)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteSetsTimestampAndBatchCount(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	batch, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	adjudicateAll(t, w, c, verifier, storage.ClaimVerified)

	updated, err := w.Complete(ctx, candidates[0].ID, verifier)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.VerifiedCount)
	assert.Equal(t, storage.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	done, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusCompleted, done.VerificationStatus)
	require.NotNil(t, done.VerifiedAt)

	stored, err := store.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.VerifiedCount)
}

func TestBatchCountConvergesAcrossCompletions(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	batch, candidates := seedBatch(t, store, "Jane Doe", "John Roe", "Ann Poe")
	ctx := context.Background()

	// Complete candidates out of source order; the count is recomputed
	// from stored statuses each time, never incremented.
	order := []int{2, 0, 1}
	for step, idx := range order {
		require.NoError(t, w.Claim(ctx, candidates[idx].ID, verifier))
		c, err := store.GetCandidate(ctx, candidates[idx].ID)
		require.NoError(t, err)
		adjudicateAll(t, w, c, verifier, storage.ClaimVerified)

		updated, err := w.Complete(ctx, candidates[idx].ID, verifier)
		require.NoError(t, err)
		assert.Equal(t, step+1, updated.VerifiedCount)

		if step < len(order)-1 {
			assert.Equal(t, storage.StatusPending, updated.Status)
			assert.Nil(t, updated.CompletedAt)
		}
	}

	final, err := store.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, final.VerifiedCount)
	assert.Equal(t, storage.StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
}

func TestNoRevisionAfterCompletion(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	adjudicateAll(t, w, c, verifier, storage.ClaimVerified)
	_, err = w.Complete(ctx, candidates[0].ID, verifier)
	require.NoError(t, err)

	_, err = w.SetEmploymentStatus(ctx, c.Employment[0].ID, verifier, storage.ClaimInconsistent, "", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQueues(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe", "John Roe")
	ctx := context.Background()

	pending, err := w.PendingQueue(ctx, verifier)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))

	pending, err = w.PendingQueue(ctx, verifier)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	mine, err := w.MyQueue(ctx, verifier)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, candidates[0].ID, mine[0].ID)

	theirs, err := w.MyQueue(ctx, otherVerifier)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestStats(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewWorkflow(store)
	_, candidates := seedBatch(t, store, "Jane Doe", "John Roe")
	ctx := context.Background()

	require.NoError(t, w.Claim(ctx, candidates[0].ID, verifier))
	c, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	adjudicateAll(t, w, c, verifier, storage.ClaimVerified)
	_, err = w.Complete(ctx, candidates[0].ID, verifier)
	require.NoError(t, err)

	vs, err := w.VerifierStatsFor(ctx, verifier)
	require.NoError(t, err)
	assert.Equal(t, 1, vs.TotalVerified)
	assert.Equal(t, 0, vs.InProgress)
	assert.Equal(t, 1, vs.Available)

	rs, err := w.RecruiterStatsFor(ctx, recruiter)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.TotalBatches)
	assert.Equal(t, 2, rs.TotalCandidates)
	assert.Equal(t, 1, rs.VerifiedCandidates)
	assert.Equal(t, 1, rs.PendingCandidates)
}
