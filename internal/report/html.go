// Package report renders a completed candidate record as a
// self-contained HTML verification report.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// badge is the visual treatment of one claim status.
type badge struct {
	Icon  string
	Color string
	Bg    string
	Label string
}

var badges = map[storage.ClaimStatus]badge{
	storage.ClaimVerified:     {Icon: "✓", Color: "#22c55e", Bg: "#f0fdf4", Label: "Verified"},
	storage.ClaimUncertain:    {Icon: "?", Color: "#f59e0b", Bg: "#fffbeb", Label: "Uncertain"},
	storage.ClaimInconsistent: {Icon: "✗", Color: "#ef4444", Bg: "#fef2f2", Label: "Inconsistent"},
	storage.ClaimPending:      {Icon: "○", Color: "#9ca3af", Bg: "#f9fafb", Label: "Not Verified"},
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"badge": func(s storage.ClaimStatus) badge { return badges[s] },
	"dates": func(start, end string, current bool) string {
		if start == "" && end == "" {
			return ""
		}
		if current {
			end = "Present"
		}
		return fmt.Sprintf("%s – %s", start, end)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Verified CV - {{.Candidate.FullName}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1f2937; background: #f9fafb; padding: 2rem; }
.container { max-width: 850px; margin: 0 auto; background: white; box-shadow: 0 1px 3px rgba(0,0,0,0.1); padding: 3rem; }
.header { border-bottom: 3px solid #2563eb; padding-bottom: 2rem; margin-bottom: 2rem; }
.name { font-size: 2.5rem; font-weight: 700; color: #111827; }
.contact { color: #6b7280; margin-top: 0.5rem; }
.section-title { font-size: 1.3rem; font-weight: 600; margin: 2rem 0 1rem; color: #111827; }
.entry { border-left: 3px solid #e5e7eb; padding: 0.75rem 1rem; margin-bottom: 1rem; }
.entry-title { font-weight: 600; }
.entry-sub { color: #6b7280; font-size: 0.9rem; }
.entry-desc { margin-top: 0.4rem; font-size: 0.95rem; }
.note { margin-top: 0.4rem; font-size: 0.85rem; color: #6b7280; font-style: italic; }
.status { display: inline-block; padding: 0.1rem 0.6rem; border-radius: 9999px; font-size: 0.8rem; font-weight: 600; margin-left: 0.5rem; }
.footer { margin-top: 3rem; padding-top: 1rem; border-top: 1px solid #e5e7eb; color: #9ca3af; font-size: 0.8rem; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <div class="name">{{.Candidate.FullName}}</div>
    <div class="contact">
      {{if .Candidate.Email}}{{.Candidate.Email}}{{end}}
      {{if .Candidate.Phone}} · {{.Candidate.Phone}}{{end}}
      {{if .Candidate.LinkedInURL}} · {{.Candidate.LinkedInURL}}{{end}}
    </div>
  </div>

  <div class="section-title">Employment History</div>
  {{range .Candidate.Employment}}{{$b := badge .ClaimStatus}}
  <div class="entry" style="border-left-color: {{$b.Color}}">
    <div class="entry-title">{{.Position}} at {{.CompanyName}}
      <span class="status" style="color: {{$b.Color}}; background: {{$b.Bg}}">{{$b.Icon}} {{$b.Label}}</span>
    </div>
    <div class="entry-sub">{{dates .StartDate .EndDate .IsCurrent}}</div>
    {{if .Description}}<div class="entry-desc">{{.Description}}</div>{{end}}
    {{if .VerificationNote}}<div class="note">Verifier note: {{.VerificationNote}}</div>{{end}}
  </div>
  {{else}}<div class="entry-sub">No employment history on record.</div>{{end}}

  <div class="section-title">Education</div>
  {{range .Candidate.Education}}{{$b := badge .ClaimStatus}}
  <div class="entry" style="border-left-color: {{$b.Color}}">
    <div class="entry-title">{{if .Degree}}{{.Degree}}{{else}}{{.Institution}}{{end}}
      <span class="status" style="color: {{$b.Color}}; background: {{$b.Bg}}">{{$b.Icon}} {{$b.Label}}</span>
    </div>
    <div class="entry-sub">{{.Institution}}{{if .FieldOfStudy}} · {{.FieldOfStudy}}{{end}} {{dates .StartDate .EndDate .IsCurrent}}</div>
    {{if .VerificationNote}}<div class="note">Verifier note: {{.VerificationNote}}</div>{{end}}
  </div>
  {{else}}<div class="entry-sub">No education history on record.</div>{{end}}

  <div class="footer">
    Verification completed {{.VerifiedAt}} · Generated {{.GeneratedAt}}
  </div>
</div>
</body>
</html>
`))

// Render produces the HTML report for a COMPLETED candidate. The
// caller is responsible for checking the candidate's status first.
func Render(candidate *storage.Candidate) (string, error) {
	verifiedAt := ""
	if candidate.VerifiedAt != nil {
		verifiedAt = candidate.VerifiedAt.Format("2006-01-02 15:04 UTC")
	}
	data := struct {
		Candidate   *storage.Candidate
		VerifiedAt  string
		GeneratedAt string
	}{
		Candidate:   candidate,
		VerifiedAt:  verifiedAt,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 UTC"),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, &data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}
