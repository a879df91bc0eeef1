package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no entity has the given ID.
var ErrNotFound = errors.New("storage: not found")

// Store is the record store the verification core runs against.
// Implementations must make CreateBatch atomic (all candidates and
// claims of an upload commit together or not at all) and must make
// ClaimCandidate a single check-and-set against the stored PENDING
// status, so two concurrent claims cannot both succeed.
type Store interface {
	// CreateBatch persists the batch and all of its candidates with
	// their employment/education claims in one transaction. IDs are
	// assigned by the store.
	CreateBatch(ctx context.Context, batch *Batch, candidates []*Candidate) error

	GetBatch(ctx context.Context, id string) (*Batch, error)
	// ListBatches returns batches newest first. A non-empty recruiterID
	// restricts the result to that recruiter's uploads.
	ListBatches(ctx context.Context, recruiterID string) ([]*Batch, error)
	// ListBatchCandidates returns the batch's candidates in creation order.
	ListBatchCandidates(ctx context.Context, batchID string) ([]*Candidate, error)
	// DeleteBatch removes a batch and cascades to its candidates and claims.
	DeleteBatch(ctx context.Context, id string) error

	// GetCandidate loads a candidate with its claims ordered by ordinal.
	GetCandidate(ctx context.Context, id string) (*Candidate, error)
	ListCandidatesByStatus(ctx context.Context, status VerificationStatus) ([]*Candidate, error)
	ListCandidatesByVerifier(ctx context.Context, verifierID string, status VerificationStatus) ([]*Candidate, error)
	CountCandidatesByVerifier(ctx context.Context, verifierID string, status VerificationStatus) (int, error)
	CountCandidatesByStatus(ctx context.Context, status VerificationStatus) (int, error)

	// ClaimCandidate atomically moves the candidate from PENDING to
	// IN_PROGRESS and assigns the verifier. It returns false when the
	// candidate exists but is no longer PENDING.
	ClaimCandidate(ctx context.Context, candidateID, verifierID string) (bool, error)

	GetEmployment(ctx context.Context, id string) (*Employment, error)
	GetEducation(ctx context.Context, id string) (*Education, error)
	UpdateEmploymentVerification(ctx context.Context, id string, status ClaimStatus, note string, sources []string, at time.Time) error
	UpdateEducationVerification(ctx context.Context, id string, status ClaimStatus, note string, sources []string, at time.Time) error

	// CountPendingClaims returns how many employment and education
	// claims of the candidate are still PENDING.
	CountPendingClaims(ctx context.Context, candidateID string) (pendingEmployment, pendingEducation int, err error)

	// CompleteCandidate marks the candidate COMPLETED with the given
	// verification timestamp.
	CompleteCandidate(ctx context.Context, candidateID string, at time.Time) error

	// RecountBatchProgress recomputes verified_count from the batch's
	// COMPLETED candidates and, when every candidate is done, marks the
	// batch COMPLETED. The updated batch is returned.
	RecountBatchProgress(ctx context.Context, batchID string, at time.Time) (*Batch, error)
}
