package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// Builder turns intermediate candidates into one persisted batch with
// its candidate records and PENDING claims. The store's batch insert
// is transactional, so a failed row rejects the whole upload.
type Builder struct {
	store storage.Store
}

func NewBuilder(store storage.Store) *Builder {
	return &Builder{store: store}
}

// BuildBatch validates and persists every parsed candidate under a new
// batch. Claim ordinals are the array indexes of the source, so they
// are contiguous from 0 and preserve original document order.
func (b *Builder) BuildBatch(ctx context.Context, batchName, recruiterID, uploadType string, parsed []ParsedCandidate) (*storage.Batch, error) {
	candidates := make([]*storage.Candidate, 0, len(parsed))

	for row, p := range parsed {
		if p.FullName == "" {
			return nil, &RowConstructionError{Row: row, Reason: "full name is required"}
		}

		raw, err := json.Marshal(p)
		if err != nil {
			return nil, &RowConstructionError{Row: row, Reason: fmt.Sprintf("cannot snapshot raw data: %v", err)}
		}

		candidate := &storage.Candidate{
			FullName:    p.FullName,
			Email:       p.Email,
			Phone:       p.Phone,
			LinkedInURL: p.LinkedInURL,
			RawData:     raw,
		}

		for i, emp := range p.Employment {
			candidate.Employment = append(candidate.Employment, storage.Employment{
				CompanyName: emp.Company,
				Position:    emp.Position,
				StartDate:   emp.StartDate,
				EndDate:     emp.EndDate,
				IsCurrent:   emp.IsCurrent,
				Description: emp.Description,
				ClaimStatus: storage.ClaimPending,
				Ordinal:     i,
			})
		}

		for i, edu := range p.Education {
			candidate.Education = append(candidate.Education, storage.Education{
				Institution:  edu.Institution,
				Degree:       edu.Degree,
				FieldOfStudy: edu.Field,
				StartDate:    edu.StartDate,
				EndDate:      edu.EndDate,
				IsCurrent:    edu.IsCurrent,
				ClaimStatus:  storage.ClaimPending,
				Ordinal:      i,
			})
		}

		candidates = append(candidates, candidate)
	}

	batch := &storage.Batch{
		Name:        batchName,
		RecruiterID: recruiterID,
		UploadType:  uploadType,
	}
	if err := b.store.CreateBatch(ctx, batch, candidates); err != nil {
		return nil, fmt.Errorf("persist batch %q: %w", batchName, err)
	}

	return batch, nil
}
