package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local runs
// without Postgres. All methods copy entities on the way in and out so
// callers never share memory with the store.
type MemoryStore struct {
	mu         sync.Mutex
	batches    map[string]*Batch
	candidates map[string]*Candidate
	employment map[string]*Employment
	education  map[string]*Education
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches:    make(map[string]*Batch),
		candidates: make(map[string]*Candidate),
		employment: make(map[string]*Employment),
		education:  make(map[string]*Education),
	}
}

func copyBatch(b *Batch) *Batch {
	out := *b
	return &out
}

func copyCandidate(c *Candidate) *Candidate {
	out := *c
	out.Employment = nil
	out.Education = nil
	return &out
}

func copyEmployment(e *Employment) *Employment {
	out := *e
	out.VerificationSources = append([]string(nil), e.VerificationSources...)
	return &out
}

func copyEducation(e *Education) *Education {
	out := *e
	out.VerificationSources = append([]string(nil), e.VerificationSources...)
	return &out
}

func (m *MemoryStore) CreateBatch(ctx context.Context, batch *Batch, candidates []*Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	batch.ID = uuid.NewString()
	batch.Status = StatusPending
	batch.UploadedAt = now
	batch.TotalCandidates = len(candidates)
	m.batches[batch.ID] = copyBatch(batch)

	for _, c := range candidates {
		c.ID = uuid.NewString()
		c.BatchID = batch.ID
		c.VerificationStatus = StatusPending
		c.CreatedAt = now
		c.UpdatedAt = now
		m.candidates[c.ID] = copyCandidate(c)

		for i := range c.Employment {
			e := &c.Employment[i]
			e.ID = uuid.NewString()
			e.CandidateID = c.ID
			e.ClaimStatus = ClaimPending
			m.employment[e.ID] = copyEmployment(e)
		}
		for i := range c.Education {
			e := &c.Education[i]
			e.ID = uuid.NewString()
			e.CandidateID = c.ID
			e.ClaimStatus = ClaimPending
			m.education[e.ID] = copyEducation(e)
		}
	}
	return nil
}

func (m *MemoryStore) GetBatch(ctx context.Context, id string) (*Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBatch(b), nil
}

func (m *MemoryStore) ListBatches(ctx context.Context, recruiterID string) ([]*Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Batch
	for _, b := range m.batches {
		if recruiterID != "" && b.RecruiterID != recruiterID {
			continue
		}
		res = append(res, copyBatch(b))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UploadedAt.After(res[j].UploadedAt) })
	return res, nil
}

func (m *MemoryStore) ListBatchCandidates(ctx context.Context, batchID string) ([]*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Candidate
	for _, c := range m.candidates {
		if c.BatchID == batchID {
			res = append(res, copyCandidate(c))
		}
	}
	sortCandidates(res)
	return res, nil
}

func (m *MemoryStore) DeleteBatch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[id]; !ok {
		return ErrNotFound
	}
	delete(m.batches, id)
	for cid, c := range m.candidates {
		if c.BatchID != id {
			continue
		}
		delete(m.candidates, cid)
		for eid, e := range m.employment {
			if e.CandidateID == cid {
				delete(m.employment, eid)
			}
		}
		for eid, e := range m.education {
			if e.CandidateID == cid {
				delete(m.education, eid)
			}
		}
	}
	return nil
}

func (m *MemoryStore) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyCandidate(c)
	for _, e := range m.employment {
		if e.CandidateID == id {
			out.Employment = append(out.Employment, *copyEmployment(e))
		}
	}
	sort.Slice(out.Employment, func(i, j int) bool { return out.Employment[i].Ordinal < out.Employment[j].Ordinal })
	for _, e := range m.education {
		if e.CandidateID == id {
			out.Education = append(out.Education, *copyEducation(e))
		}
	}
	sort.Slice(out.Education, func(i, j int) bool { return out.Education[i].Ordinal < out.Education[j].Ordinal })
	return out, nil
}

func (m *MemoryStore) ListCandidatesByStatus(ctx context.Context, status VerificationStatus) ([]*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Candidate
	for _, c := range m.candidates {
		if c.VerificationStatus == status {
			res = append(res, copyCandidate(c))
		}
	}
	sortCandidates(res)
	return res, nil
}

func (m *MemoryStore) ListCandidatesByVerifier(ctx context.Context, verifierID string, status VerificationStatus) ([]*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Candidate
	for _, c := range m.candidates {
		if c.VerifierID == verifierID && c.VerificationStatus == status {
			res = append(res, copyCandidate(c))
		}
	}
	sortCandidates(res)
	return res, nil
}

func (m *MemoryStore) CountCandidatesByVerifier(ctx context.Context, verifierID string, status VerificationStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.candidates {
		if c.VerifierID == verifierID && c.VerificationStatus == status {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CountCandidatesByStatus(ctx context.Context, status VerificationStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.candidates {
		if c.VerificationStatus == status {
			n++
		}
	}
	return n, nil
}

// ClaimCandidate performs the check-and-set under the store mutex;
// only one of two racing claims can observe PENDING.
func (m *MemoryStore) ClaimCandidate(ctx context.Context, candidateID, verifierID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[candidateID]
	if !ok {
		return false, ErrNotFound
	}
	if c.VerificationStatus != StatusPending {
		return false, nil
	}
	c.VerificationStatus = StatusInProgress
	c.VerifierID = verifierID
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MemoryStore) GetEmployment(ctx context.Context, id string) (*Employment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employment[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEmployment(e), nil
}

func (m *MemoryStore) GetEducation(ctx context.Context, id string) (*Education, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.education[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEducation(e), nil
}

func (m *MemoryStore) UpdateEmploymentVerification(ctx context.Context, id string, status ClaimStatus, note string, sources []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employment[id]
	if !ok {
		return ErrNotFound
	}
	e.ClaimStatus = status
	e.VerificationNote = note
	e.VerificationSources = append([]string(nil), sources...)
	verifiedAt := at
	e.VerifiedAt = &verifiedAt
	return nil
}

func (m *MemoryStore) UpdateEducationVerification(ctx context.Context, id string, status ClaimStatus, note string, sources []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.education[id]
	if !ok {
		return ErrNotFound
	}
	e.ClaimStatus = status
	e.VerificationNote = note
	e.VerificationSources = append([]string(nil), sources...)
	verifiedAt := at
	e.VerifiedAt = &verifiedAt
	return nil
}

func (m *MemoryStore) CountPendingClaims(ctx context.Context, candidateID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pendingEmployment, pendingEducation int
	for _, e := range m.employment {
		if e.CandidateID == candidateID && e.ClaimStatus == ClaimPending {
			pendingEmployment++
		}
	}
	for _, e := range m.education {
		if e.CandidateID == candidateID && e.ClaimStatus == ClaimPending {
			pendingEducation++
		}
	}
	return pendingEmployment, pendingEducation, nil
}

func (m *MemoryStore) CompleteCandidate(ctx context.Context, candidateID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[candidateID]
	if !ok {
		return ErrNotFound
	}
	c.VerificationStatus = StatusCompleted
	verifiedAt := at
	c.VerifiedAt = &verifiedAt
	c.UpdatedAt = at
	return nil
}

func (m *MemoryStore) RecountBatchProgress(ctx context.Context, batchID string, at time.Time) (*Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return nil, ErrNotFound
	}
	verified := 0
	for _, c := range m.candidates {
		if c.BatchID == batchID && c.VerificationStatus == StatusCompleted {
			verified++
		}
	}
	b.VerifiedCount = verified
	if b.VerifiedCount == b.TotalCandidates && b.Status != StatusCompleted {
		b.Status = StatusCompleted
		completedAt := at
		b.CompletedAt = &completedAt
	}
	return copyBatch(b), nil
}

func sortCandidates(cs []*Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].ID < cs[j].ID
		}
		return cs[i].CreatedAt.Before(cs[j].CreatedAt)
	})
}
