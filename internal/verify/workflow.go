// Package verify implements the verification workflow that moves a
// candidate from PENDING through IN_PROGRESS to COMPLETED and keeps
// the owning batch's aggregate counts consistent.
package verify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// Workflow runs the candidate lifecycle against the record store. It
// holds no state of its own; every operation is one short-lived unit
// of work.
type Workflow struct {
	store storage.Store
}

func NewWorkflow(store storage.Store) *Workflow {
	return &Workflow{store: store}
}

func canVerify(principal storage.User) bool {
	return principal.Role == storage.RoleVerifier || principal.Role == storage.RoleAdmin
}

// Claim assigns the principal as the candidate's verifier and moves it
// to IN_PROGRESS. The underlying store update is a compare-and-swap on
// the PENDING status, so a concurrent duplicate claim loses with
// ErrInvalidTransition and the assigned verifier is left unchanged.
func (w *Workflow) Claim(ctx context.Context, candidateID string, principal storage.User) error {
	if !canVerify(principal) {
		return ErrForbidden
	}

	// Existence check up front; the CAS below cannot tell a missing
	// candidate from a lost race.
	if _, err := w.store.GetCandidate(ctx, candidateID); err != nil {
		return err
	}

	claimed, err := w.store.ClaimCandidate(ctx, candidateID, principal.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("%w: candidate %s already claimed or completed", ErrInvalidTransition, candidateID)
	}

	log.Printf("candidate %s claimed by verifier %s", candidateID, principal.ID)
	return nil
}

// SetEmploymentStatus adjudicates one employment claim: status, note
// and evidence sources are overwritten together with a fresh
// verification timestamp. Legal only while the owning candidate is
// IN_PROGRESS and only for its assigned verifier.
func (w *Workflow) SetEmploymentStatus(ctx context.Context, employmentID string, principal storage.User, status storage.ClaimStatus, note string, sources []string) (*storage.Employment, error) {
	if !canVerify(principal) {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown claim status %q", status)
	}

	employment, err := w.store.GetEmployment(ctx, employmentID)
	if err != nil {
		return nil, err
	}
	if err := w.checkOwnership(ctx, employment.CandidateID, principal); err != nil {
		return nil, err
	}

	if err := w.store.UpdateEmploymentVerification(ctx, employmentID, status, note, sources, time.Now().UTC()); err != nil {
		return nil, err
	}
	return w.store.GetEmployment(ctx, employmentID)
}

// SetEducationStatus is the education counterpart of
// SetEmploymentStatus, with identical preconditions.
func (w *Workflow) SetEducationStatus(ctx context.Context, educationID string, principal storage.User, status storage.ClaimStatus, note string, sources []string) (*storage.Education, error) {
	if !canVerify(principal) {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown claim status %q", status)
	}

	education, err := w.store.GetEducation(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if err := w.checkOwnership(ctx, education.CandidateID, principal); err != nil {
		return nil, err
	}

	if err := w.store.UpdateEducationVerification(ctx, educationID, status, note, sources, time.Now().UTC()); err != nil {
		return nil, err
	}
	return w.store.GetEducation(ctx, educationID)
}

// checkOwnership enforces that the candidate is IN_PROGRESS and that
// the principal is its assigned verifier. Claim statuses may only be
// revised during IN_PROGRESS, never after completion.
func (w *Workflow) checkOwnership(ctx context.Context, candidateID string, principal storage.User) error {
	candidate, err := w.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate.VerificationStatus != storage.StatusInProgress {
		return fmt.Errorf("%w: candidate %s is %s", ErrInvalidTransition, candidateID, candidate.VerificationStatus)
	}
	if candidate.VerifierID != principal.ID {
		return ErrNotOwner
	}
	return nil
}

// Complete moves an IN_PROGRESS candidate to COMPLETED once no claim
// is left PENDING, then recomputes the batch's verified count from the
// authoritative candidate statuses. Counting instead of incrementing
// keeps concurrent completions in the same batch convergent.
func (w *Workflow) Complete(ctx context.Context, candidateID string, principal storage.User) (*storage.Batch, error) {
	if !canVerify(principal) {
		return nil, ErrForbidden
	}

	candidate, err := w.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !candidate.VerificationStatus.CanTransition(storage.StatusCompleted) {
		return nil, fmt.Errorf("%w: candidate %s is %s", ErrInvalidTransition, candidateID, candidate.VerificationStatus)
	}
	if candidate.VerifierID != principal.ID {
		return nil, ErrNotOwner
	}

	pendingEmployment, pendingEducation, err := w.store.CountPendingClaims(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if pendingEmployment > 0 || pendingEducation > 0 {
		return nil, &IncompleteClaimsError{
			PendingEmployment: pendingEmployment,
			PendingEducation:  pendingEducation,
		}
	}

	now := time.Now().UTC()
	if err := w.store.CompleteCandidate(ctx, candidateID, now); err != nil {
		return nil, err
	}

	batch, err := w.store.RecountBatchProgress(ctx, candidate.BatchID, now)
	if err != nil {
		return nil, err
	}

	log.Printf("candidate %s completed by verifier %s (batch %s: %d/%d verified)",
		candidateID, principal.ID, batch.ID, batch.VerifiedCount, batch.TotalCandidates)
	return batch, nil
}

// PendingQueue lists candidates nobody has claimed yet, oldest first.
func (w *Workflow) PendingQueue(ctx context.Context, principal storage.User) ([]*storage.Candidate, error) {
	if !canVerify(principal) {
		return nil, ErrForbidden
	}
	return w.store.ListCandidatesByStatus(ctx, storage.StatusPending)
}

// MyQueue lists the candidates the principal has claimed and not yet
// completed.
func (w *Workflow) MyQueue(ctx context.Context, principal storage.User) ([]*storage.Candidate, error) {
	if !canVerify(principal) {
		return nil, ErrForbidden
	}
	return w.store.ListCandidatesByVerifier(ctx, principal.ID, storage.StatusInProgress)
}

// VerifierStats summarizes a verifier's workload.
type VerifierStats struct {
	TotalVerified int `json:"total_verified"`
	InProgress    int `json:"in_progress"`
	Available     int `json:"available"`
}

// RecruiterStats aggregates a recruiter's batches.
type RecruiterStats struct {
	TotalBatches       int `json:"total_batches"`
	TotalCandidates    int `json:"total_candidates"`
	VerifiedCandidates int `json:"verified_candidates"`
	PendingCandidates  int `json:"pending_candidates"`
}

// VerifierStatsFor computes queue counts for one verifier.
func (w *Workflow) VerifierStatsFor(ctx context.Context, principal storage.User) (*VerifierStats, error) {
	verified, err := w.store.CountCandidatesByVerifier(ctx, principal.ID, storage.StatusCompleted)
	if err != nil {
		return nil, err
	}
	inProgress, err := w.store.CountCandidatesByVerifier(ctx, principal.ID, storage.StatusInProgress)
	if err != nil {
		return nil, err
	}
	available, err := w.store.CountCandidatesByStatus(ctx, storage.StatusPending)
	if err != nil {
		return nil, err
	}
	return &VerifierStats{TotalVerified: verified, InProgress: inProgress, Available: available}, nil
}

// RecruiterStatsFor aggregates the recruiter's batch counters.
func (w *Workflow) RecruiterStatsFor(ctx context.Context, principal storage.User) (*RecruiterStats, error) {
	batches, err := w.store.ListBatches(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	stats := &RecruiterStats{TotalBatches: len(batches)}
	for _, b := range batches {
		stats.TotalCandidates += b.TotalCandidates
		stats.VerifiedCandidates += b.VerifiedCount
	}
	stats.PendingCandidates = stats.TotalCandidates - stats.VerifiedCandidates
	return stats, nil
}
