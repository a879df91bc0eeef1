package verify

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition means the candidate is not in the state the
	// operation requires (e.g. claiming a non-PENDING candidate).
	ErrInvalidTransition = errors.New("invalid verification transition")

	// ErrNotOwner means the acting principal is not the candidate's
	// assigned verifier.
	ErrNotOwner = errors.New("candidate is assigned to another verifier")

	// ErrForbidden means the principal's role cannot perform the
	// operation at all.
	ErrForbidden = errors.New("role not allowed")
)

// IncompleteClaimsError blocks complete() while claims are still
// PENDING; it reports the exact counts so the caller can act.
type IncompleteClaimsError struct {
	PendingEmployment int
	PendingEducation  int
}

func (e *IncompleteClaimsError) Error() string {
	return fmt.Sprintf("cannot complete: %d employment and %d education entries still pending",
		e.PendingEmployment, e.PendingEducation)
}
