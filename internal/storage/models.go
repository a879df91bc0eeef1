package storage

import (
	"encoding/json"
	"time"
)

// User is the authenticated principal handed to the core by the
// identity provider. The core only ever looks at the ID and the role.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name,omitempty"`
	Role     UserRole `json:"role"`
}

// Batch groups candidates uploaded together in one operation.
type Batch struct {
	ID              string             `json:"id"`
	Name            string             `json:"batch_name"`
	RecruiterID     string             `json:"recruiter_id"`
	UploadType      string             `json:"upload_type"` // "csv" or "document"
	Status          VerificationStatus `json:"status"`
	UploadedAt      time.Time          `json:"uploaded_at"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	TotalCandidates int                `json:"total_candidates"`
	VerifiedCount   int                `json:"verified_count"`
}

// Candidate is one canonical candidate record inside a batch.
// Employment and Education are populated on detail reads and carried
// through batch inserts; list queries leave them nil.
type Candidate struct {
	ID                 string             `json:"id"`
	BatchID            string             `json:"batch_id"`
	FullName           string             `json:"full_name"`
	Email              string             `json:"email,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	LinkedInURL        string             `json:"linkedin_url,omitempty"`
	RawData            json.RawMessage    `json:"raw_cv_data,omitempty"`
	VerifierID         string             `json:"verifier_id,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	Employment []Employment `json:"employment_history,omitempty"`
	Education  []Education  `json:"education_history,omitempty"`
}

// Employment is a single employment claim. Dates are free-form strings
// exactly as they appeared in the source document.
type Employment struct {
	ID                  string      `json:"id"`
	CandidateID         string      `json:"candidate_id"`
	CompanyName         string      `json:"company_name"`
	Position            string      `json:"position"`
	StartDate           string      `json:"start_date,omitempty"`
	EndDate             string      `json:"end_date,omitempty"`
	IsCurrent           bool        `json:"is_current"`
	Description         string      `json:"description,omitempty"`
	ClaimStatus         ClaimStatus `json:"claim_status"`
	VerificationNote    string      `json:"verification_note,omitempty"`
	VerificationSources []string    `json:"verification_sources,omitempty"`
	VerifiedAt          *time.Time  `json:"verified_at,omitempty"`
	Ordinal             int         `json:"order"`
}

// Education is a single education claim.
type Education struct {
	ID                  string      `json:"id"`
	CandidateID         string      `json:"candidate_id"`
	Institution         string      `json:"institution"`
	Degree              string      `json:"degree,omitempty"`
	FieldOfStudy        string      `json:"field_of_study,omitempty"`
	StartDate           string      `json:"start_date,omitempty"`
	EndDate             string      `json:"end_date,omitempty"`
	IsCurrent           bool        `json:"is_current"`
	ClaimStatus         ClaimStatus `json:"claim_status"`
	VerificationNote    string      `json:"verification_note,omitempty"`
	VerificationSources []string    `json:"verification_sources,omitempty"`
	VerifiedAt          *time.Time  `json:"verified_at,omitempty"`
	Ordinal             int         `json:"order"`
}
