// Package ingest normalizes raw candidate uploads (delimited tabular
// exports and free-text CV documents) into intermediate candidate
// records and builds them into persisted, unverified batches.
package ingest

// ParsedCandidate is the intermediate candidate produced by either
// ingestion path before anything is persisted. All dates stay as
// free-form strings exactly as they appeared in the source.
type ParsedCandidate struct {
	FullName    string             `json:"full_name"`
	Email       string             `json:"email,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	LinkedInURL string             `json:"linkedin_url,omitempty"`
	Employment  []ParsedEmployment `json:"employment"`
	Education   []ParsedEducation  `json:"education"`
}

type ParsedEmployment struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	IsCurrent   bool   `json:"is_current"`
	Description string `json:"description,omitempty"`
}

type ParsedEducation struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	IsCurrent   bool   `json:"is_current"`
}
