package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `Jane Doe
jane.doe@example.com | +1 415 555 0199
linkedin.com/in/janedoe

Experience
Engineer | Acme | 2019 - 2021
Built the billing pipeline.
Shipped v2 of the API.
Manager | Beta | 2021 - Present
Runs the platform team.

Education
BSc Computer Science
MIT
2012 - 2016

Skills
Go, SQL
`

func TestExtractDocumentContactFields(t *testing.T) {
	c := ExtractDocument(sampleCV)

	assert.Equal(t, "Jane Doe", c.FullName)
	assert.Equal(t, "jane.doe@example.com", c.Email)
	assert.NotEmpty(t, c.Phone)
	assert.Equal(t, "linkedin.com/in/janedoe", c.LinkedInURL)
}

func TestExtractDocumentNameSkipsShortLines(t *testing.T) {
	c := ExtractDocument("A\n\nJD\nJane Doe\n")
	assert.Equal(t, "Jane Doe", c.FullName)
}

func TestExtractDocumentNoName(t *testing.T) {
	c := ExtractDocument("..\n")
	assert.Empty(t, c.FullName)
}

func TestExtractDocumentEmploymentSegmentation(t *testing.T) {
	c := ExtractDocument(sampleCV)

	require.Len(t, c.Employment, 2)

	first := c.Employment[0]
	assert.Equal(t, "Engineer", first.Position)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "2019", first.StartDate)
	assert.Equal(t, "2021", first.EndDate)
	assert.False(t, first.IsCurrent)
	assert.Equal(t, "Built the billing pipeline. Shipped v2 of the API.", first.Description)

	second := c.Employment[1]
	assert.Equal(t, "Manager", second.Position)
	assert.Equal(t, "Beta", second.Company)
	assert.Equal(t, "2021", second.StartDate)
	assert.Equal(t, "Present", second.EndDate)
	assert.True(t, second.IsCurrent)
	assert.Equal(t, "Runs the platform team.", second.Description)
}

func TestExtractDocumentEmploymentWithoutPipe(t *testing.T) {
	text := "Jane Doe\n\nWork History\nFreelance Consultant 2018 - 2020\n"
	c := ExtractDocument(text)

	require.Len(t, c.Employment, 1)
	assert.Equal(t, "Freelance Consultant", c.Employment[0].Position)
	assert.Equal(t, "Unknown Company", c.Employment[0].Company)
}

func TestExtractDocumentMonthQualifiedRange(t *testing.T) {
	text := "Jane Doe\n\nExperience\nEngineer | Acme | Mar 2019 - Jun 2021\n"
	c := ExtractDocument(text)

	require.Len(t, c.Employment, 1)
	assert.Equal(t, "Mar 2019", c.Employment[0].StartDate)
	assert.Equal(t, "Jun 2021", c.Employment[0].EndDate)
}

func TestExtractDocumentSectionEndsAtNextHeader(t *testing.T) {
	// The skills header terminates the experience section, so the
	// skills list must not leak into a description.
	c := ExtractDocument(sampleCV)
	for _, e := range c.Employment {
		assert.NotContains(t, e.Description, "Go, SQL")
	}
}

func TestExtractDocumentEducationSegmentation(t *testing.T) {
	c := ExtractDocument(sampleCV)

	require.Len(t, c.Education, 1)
	edu := c.Education[0]
	assert.Equal(t, "BSc Computer Science", edu.Degree)
	assert.Equal(t, "MIT", edu.Institution)
	assert.Equal(t, "2012", edu.StartDate)
	assert.Equal(t, "2016", edu.EndDate)
	assert.False(t, edu.IsCurrent)
}

func TestExtractDocumentEducationMultipleEntries(t *testing.T) {
	text := `Jane Doe

Education
MSc Artificial Intelligence
Stanford University
2016 - 2018
Bachelor of Science
MIT
2012 - 2016
`
	c := ExtractDocument(text)

	require.Len(t, c.Education, 2)
	assert.Equal(t, "MSc Artificial Intelligence", c.Education[0].Degree)
	assert.Equal(t, "Stanford University", c.Education[0].Institution)
	assert.Equal(t, "2016", c.Education[0].StartDate)
	assert.Equal(t, "Bachelor of Science", c.Education[1].Degree)
	assert.Equal(t, "MIT", c.Education[1].Institution)
}

func TestExtractDocumentEducationInstitutionLastLineWins(t *testing.T) {
	text := `Jane Doe

Education
MSc Artificial Intelligence
Department of Computing
Stanford University
`
	c := ExtractDocument(text)

	require.Len(t, c.Education, 1)
	assert.Equal(t, "Stanford University", c.Education[0].Institution)
}

func TestExtractDocumentEmploymentPlaceholder(t *testing.T) {
	// No recognizable employment section: exactly one manual-review
	// placeholder entry comes back.
	c := ExtractDocument("Jane Doe\nSome unstructured text with no sections.\n")

	require.Len(t, c.Employment, 1)
	assert.Equal(t, ManualReviewSource, c.Employment[0].Company)
	assert.Equal(t, ManualReviewTitle, c.Employment[0].Position)
	assert.Equal(t, ManualReviewDescription, c.Employment[0].Description)
}

func TestExtractDocumentEducationPlaceholder(t *testing.T) {
	c := ExtractDocument("Jane Doe\nNothing here either.\n")

	require.Len(t, c.Education, 1)
	assert.Equal(t, ManualReviewSource, c.Education[0].Institution)
	assert.Equal(t, ManualReviewTitle, c.Education[0].Degree)
}

func TestExtractDocumentSectionWithNoDatedLines(t *testing.T) {
	// A section exists but nothing in it looks like an entry: the
	// placeholder policy applies the same way.
	text := "Jane Doe\n\nExperience\nVaried roles across several companies.\n"
	c := ExtractDocument(text)

	require.Len(t, c.Employment, 1)
	assert.Equal(t, ManualReviewSource, c.Employment[0].Company)
}

func TestExtractDocumentPhonePatternPriority(t *testing.T) {
	// The international matcher runs first; its first match wins over
	// the NA-style number further down.
	c := ExtractDocument("Jane Doe\n+44 20 7946 0958\n(415) 555-0199\n")
	assert.Equal(t, "+44 20 7946 0958", c.Phone)
}

func TestExtractDocumentEmailWordBoundary(t *testing.T) {
	// Trailing digits glued onto the TLD break the word boundary, so
	// the mangled address is not extracted at all.
	c := ExtractDocument("Jane Doe\nref jane@example.com123\n")
	assert.Empty(t, c.Email)

	c = ExtractDocument("Jane Doe\ncontact: jane@example.com.\n")
	assert.Equal(t, "jane@example.com", c.Email)
}

func TestExtractDocumentCaseInsensitiveHeaders(t *testing.T) {
	text := "Jane Doe\n\nWORK EXPERIENCE\nEngineer | Acme | 2019 - 2021\n"
	c := ExtractDocument(text)

	require.Len(t, c.Employment, 1)
	assert.Equal(t, "Acme", c.Employment[0].Company)
}
