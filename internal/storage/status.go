package storage

// ClaimStatus is the verification outcome of a single employment or
// education claim.
type ClaimStatus string

const (
	ClaimPending      ClaimStatus = "PENDING"
	ClaimVerified     ClaimStatus = "VERIFIED"
	ClaimUncertain    ClaimStatus = "UNCERTAIN"
	ClaimInconsistent ClaimStatus = "INCONSISTENT"
)

// Valid reports whether s is one of the known claim statuses.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimVerified, ClaimUncertain, ClaimInconsistent:
		return true
	}
	return false
}

// VerificationStatus is the lifecycle state of a candidate or a batch.
// Candidates walk it one step at a time; batches only ever occupy the
// endpoints (PENDING until the recount sees every candidate COMPLETED).
type VerificationStatus string

const (
	StatusPending    VerificationStatus = "PENDING"
	StatusInProgress VerificationStatus = "IN_PROGRESS"
	StatusCompleted  VerificationStatus = "COMPLETED"
)

// rank orders the lifecycle; transitions only ever move to a higher rank.
func (s VerificationStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// CanTransition reports whether moving from s to next is a legal,
// strictly forward step of the candidate lifecycle. PENDING ->
// IN_PROGRESS -> COMPLETED, no skipping and no regression. Batch
// status is derived by the recount, not stepped, so it never goes
// through this check.
func (s VerificationStatus) CanTransition(next VerificationStatus) bool {
	return s.rank() >= 0 && next.rank() == s.rank()+1
}

// UserRole is the role attached to an authenticated principal by the
// upstream identity provider.
type UserRole string

const (
	RoleRecruiter UserRole = "recruiter"
	RoleVerifier  UserRole = "verifier"
	RoleAdmin     UserRole = "admin"
)
