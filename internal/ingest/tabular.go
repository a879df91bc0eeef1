package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Ordered alias tables for the contact fields. The first alias present
// in the header row wins, regardless of which columns hold values.
var (
	nameAliases     = []string{"full name", "name", "candidate name", "full_name"}
	emailAliases    = []string{"email", "email address", "e-mail"}
	phoneAliases    = []string{"phone", "phone number", "telephone", "mobile"}
	linkedinAliases = []string{"linkedin", "linkedin url", "linkedin_url", "linkedin profile"}
)

const (
	maxEmploymentBlocks = 5
	maxEducationBlocks  = 3

	// Placeholder for an employment block whose position column is
	// missing or unfilled while the company column is populated.
	unknownPosition = "Unknown"
)

// trueWords are the case-insensitive literals coerced to true for the
// "current" flags; anything else is false.
var trueWords = map[string]bool{"true": true, "yes": true, "1": true, "current": true}

// tabularRow is one data row keyed by the normalized header names.
type tabularRow map[string]string

// value returns the trimmed cell under the first alias that exists as
// a column, and whether any alias resolved to a non-empty value.
func (r tabularRow) value(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := r[alias]; ok {
			v = strings.TrimSpace(v)
			return v, v != ""
		}
	}
	return "", false
}

// ParseTabular maps a delimited export with a header row onto
// intermediate candidates, one per data row. Rows without a resolvable
// non-empty name are skipped; they carry no signal. A byte stream that
// cannot be read as CSV fails with a DecodeError.
func ParseTabular(data []byte) ([]ParsedCandidate, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &DecodeError{Format: "csv", Err: err}
	}
	if len(records) == 0 {
		return nil, &DecodeError{Format: "csv", Err: fmt.Errorf("missing header row")}
	}

	// Header names are case-folded and trimmed before any matching.
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	candidates := []ParsedCandidate{}
	for _, record := range records[1:] {
		row := make(tabularRow, len(header))
		for i, col := range header {
			if i >= len(record) {
				break
			}
			if _, seen := row[col]; !seen {
				row[col] = record[i]
			}
		}

		name, ok := row.value(nameAliases...)
		if !ok {
			continue
		}

		candidate := ParsedCandidate{
			FullName:   name,
			Employment: []ParsedEmployment{},
			Education:  []ParsedEducation{},
		}
		candidate.Email, _ = row.value(emailAliases...)
		candidate.Phone, _ = row.value(phoneAliases...)
		candidate.LinkedInURL, _ = row.value(linkedinAliases...)

		candidate.Employment = parseEmploymentBlocks(row)
		candidate.Education = parseEducationBlocks(row)

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// spellings returns the two accepted header spellings for a repeated
// block sub-field: "label i" and the underscore form.
func spellings(spaced, underscore string, i int) []string {
	return []string{fmt.Sprintf(spaced, i), fmt.Sprintf(underscore, i)}
}

// parseEmploymentBlocks probes indexes 1..5. A block exists only when
// its company column is present and non-empty for the row; emission
// order, not the header suffix, decides the ordinal.
func parseEmploymentBlocks(row tabularRow) []ParsedEmployment {
	blocks := []ParsedEmployment{}
	for i := 1; i <= maxEmploymentBlocks; i++ {
		company, ok := row.value(spellings("company %d", "company%d", i)...)
		if !ok {
			continue
		}

		block := ParsedEmployment{
			Company:  company,
			Position: unknownPosition,
		}
		if position, ok := row.value(spellings("position %d", "position%d", i)...); ok {
			block.Position = position
		}
		block.StartDate, _ = row.value(spellings("start date %d", "start_date_%d", i)...)
		block.EndDate, _ = row.value(spellings("end date %d", "end_date_%d", i)...)
		if current, ok := row.value(spellings("current %d", "current_%d", i)...); ok {
			block.IsCurrent = trueWords[strings.ToLower(current)]
		}
		block.Description, _ = row.value(spellings("description %d", "description_%d", i)...)

		blocks = append(blocks, block)
	}
	return blocks
}

// parseEducationBlocks probes indexes 1..3. The institution column
// doubles as the block's presence marker and accepts either the
// "education i" or "institution i" spelling.
func parseEducationBlocks(row tabularRow) []ParsedEducation {
	blocks := []ParsedEducation{}
	for i := 1; i <= maxEducationBlocks; i++ {
		institution, ok := row.value(spellings("education %d", "institution %d", i)...)
		if !ok {
			continue
		}

		block := ParsedEducation{Institution: institution}
		block.Degree, _ = row.value(spellings("degree %d", "degree_%d", i)...)
		block.Field, _ = row.value(spellings("field %d", "field_of_study_%d", i)...)
		block.StartDate, _ = row.value(spellings("edu start %d", "edu_start_%d", i)...)
		block.EndDate, _ = row.value(spellings("edu end %d", "edu_end_%d", i)...)

		blocks = append(blocks, block)
	}
	return blocks
}
