package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Manual-review sentinels emitted when segmentation finds no
// recognizable entries. The upload still commits; a human follows up.
const (
	ManualReviewSource      = "See document for details"
	ManualReviewTitle       = "Unable to parse automatically"
	ManualReviewDescription = "Please review document manually"
)

// Entry defaults used before a "position | company" split resolves.
const (
	unknownCompany     = "Unknown Company"
	unknownPositionDoc = "Unknown Position"
	unknownInstitution = "Unknown Institution"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Phone matchers form an ordered priority list: the first pattern
	// that yields any match wins, and its first match is used.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	}

	linkedinPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`)

	// The employment range accepts a month-qualified start/end while
	// the education range is year-only. The two contracts differ on
	// purpose and are kept as separate patterns.
	employmentDateRange = regexp.MustCompile(`(?i)(\d{4}|[A-Za-z]{3}\s+\d{4})\s*[-–—]\s*(\d{4}|[A-Za-z]{3}\s+\d{4}|Present|Current)`)
	educationYearRange  = regexp.MustCompile(`(?i)(\d{4})\s*[-–—]\s*(\d{4}|Present|Current)`)
)

var (
	employmentHeaders = []string{"experience", "work experience", "professional experience", "employment history", "work history"}
	educationHeaders  = []string{"education", "academic background", "qualifications", "academic history"}

	// Any of these, on a line of its own, terminates the section being
	// collected (unless it is the header that opened it).
	sectionBoundaries = []string{
		"education", "experience", "skills", "projects", "certifications",
		"awards", "publications", "languages", "references",
	}
)

var degreeKeywords = []string{
	"bachelor", "master", "phd", "doctorate", "diploma",
	"bsc", "msc", "ba", "ma", "mba",
}

// ExtractDocument recovers one intermediate candidate from the linear
// text stream of a CV document. It is best-effort by contract: fields
// that cannot be found stay empty, and sections that cannot be
// segmented fall back to a single manual-review placeholder entry.
// It never fails; an empty text stream is the caller's decode error.
func ExtractDocument(text string) ParsedCandidate {
	candidate := ParsedCandidate{
		Employment: []ParsedEmployment{},
		Education:  []ParsedEducation{},
	}

	// Name: first non-empty line longer than 2 characters.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > 2 {
			candidate.FullName = line
			break
		}
	}

	candidate.Email = emailPattern.FindString(text)

	for _, pattern := range phonePatterns {
		if match := pattern.FindString(text); match != "" {
			candidate.Phone = match
			break
		}
	}

	candidate.LinkedInURL = linkedinPattern.FindString(text)

	// Run segmentation even when no section header was found: an
	// unrecognizable document still yields one placeholder entry per
	// history so a human has something to follow up on.
	candidate.Employment = segmentEmployment(extractSection(text, employmentHeaders))
	candidate.Education = segmentEducation(extractSection(text, educationHeaders))

	return candidate
}

// headerLinePattern matches header alone on its own line, bounded by
// line breaks, with optional surrounding blanks.
func headerLinePattern(header string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\n[ \t]*` + regexp.QuoteMeta(header) + `[ \t]*\r?\n`)
}

// extractSection isolates the body following the first synonym header
// found, up to the nearest line that equals any other known section
// header, or end of document.
func extractSection(text string, headers []string) string {
	// A leading newline lets a header on the document's first line match.
	padded := "\n" + text

	for _, header := range headers {
		loc := headerLinePattern(header).FindStringIndex(padded)
		if loc == nil {
			continue
		}
		body := padded[loc[1]:]

		end := len(body)
		for _, boundary := range sectionBoundaries {
			if strings.EqualFold(boundary, header) {
				continue
			}
			if next := headerLinePattern(boundary).FindStringIndex("\n" + body); next != nil && next[0] < end {
				end = next[0]
			}
		}
		return strings.TrimSpace(body[:end])
	}

	return ""
}

// segmentEmployment walks the section line by line with a two-state
// scan: a date-range line opens a new entry (flushing any open one),
// any other line extends the open entry's description.
func segmentEmployment(section string) []ParsedEmployment {
	entries := []ParsedEmployment{}
	var open *ParsedEmployment

	flush := func() {
		if open != nil {
			entries = append(entries, *open)
			open = nil
		}
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := employmentDateRange.FindStringSubmatchIndex(line)
		if idx == nil {
			if open != nil {
				if open.Description == "" {
					open.Description = line
				} else {
					open.Description += " " + line
				}
			}
			continue
		}

		flush()
		start := line[idx[2]:idx[3]]
		end := line[idx[4]:idx[5]]
		open = &ParsedEmployment{
			Company:   unknownCompany,
			Position:  unknownPositionDoc,
			StartDate: start,
			EndDate:   end,
			IsCurrent: isCurrentToken(end),
		}

		// Text before the date range carries "position | company".
		prefix := strings.TrimSpace(line[:idx[0]])
		if prefix != "" {
			parts := strings.Split(prefix, "|")
			if len(parts) >= 2 {
				open.Position = strings.TrimSpace(parts[0])
				open.Company = strings.TrimSpace(parts[1])
			} else {
				open.Position = prefix
			}
		}
	}
	flush()

	if len(entries) == 0 {
		entries = append(entries, ParsedEmployment{
			Company:     ManualReviewSource,
			Position:    ManualReviewTitle,
			Description: ManualReviewDescription,
		})
	}
	return entries
}

// segmentEducation walks the section line by line. A degree-keyword
// line opens a new entry; a year-range line updates the open entry's
// dates without opening one; any other line overwrites the open
// entry's institution, last writer wins.
func segmentEducation(section string) []ParsedEducation {
	entries := []ParsedEducation{}
	var open *ParsedEducation

	flush := func() {
		if open != nil {
			entries = append(entries, *open)
			open = nil
		}
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		degreeLine := hasDegreeKeyword(line)
		if degreeLine {
			flush()
			open = &ParsedEducation{
				Institution: unknownInstitution,
				Degree:      line,
			}
		}

		dated := educationYearRange.FindStringSubmatch(line)
		if dated != nil && open != nil {
			open.StartDate = dated[1]
			open.EndDate = dated[2]
			open.IsCurrent = isCurrentToken(dated[2])
		}

		if open != nil && !degreeLine && dated == nil {
			open.Institution = line
		}
	}
	flush()

	if len(entries) == 0 {
		entries = append(entries, ParsedEducation{
			Institution: ManualReviewSource,
			Degree:      ManualReviewTitle,
		})
	}
	return entries
}

func hasDegreeKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range degreeKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isCurrentToken(end string) bool {
	lower := strings.ToLower(end)
	return strings.Contains(lower, "present") || strings.Contains(lower, "current")
}
