package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/KRdoubleL/cv-verification/internal/report"
	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// ReportHandler renders the verified CV report
// @Summary Get verified CV report
// @Description Returns the HTML verification report for a COMPLETED candidate.
// @Tags reports
// @Produce html
// @Param id path string true "Candidate ID"
// @Success 200 {string} string "HTML report"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reports/{id} [get]
func (a *API) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}

	candidate, err := a.store.GetCandidate(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "candidate not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load candidate")
		return
	}

	if candidate.VerificationStatus != storage.StatusCompleted {
		writeError(w, http.StatusBadRequest, "verification not completed for this candidate")
		return
	}

	html, err := report.Render(candidate)
	if err != nil {
		log.Printf("report render failed for %s: %v", candidate.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
