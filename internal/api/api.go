package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/KRdoubleL/cv-verification/internal/cv"
	"github.com/KRdoubleL/cv-verification/internal/ingest"
	"github.com/KRdoubleL/cv-verification/internal/storage"
	"github.com/KRdoubleL/cv-verification/internal/verify"
)

type API struct {
	store     storage.Store
	extractor *cv.TextExtractor
	builder   *ingest.Builder
	workflow  *verify.Workflow
}

func NewAPI(store storage.Store, uploadsDir string) *API {
	return &API{
		store:     store,
		extractor: cv.NewTextExtractor(uploadsDir),
		builder:   ingest.NewBuilder(store),
		workflow:  verify.NewWorkflow(store),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeWorkflowError maps the verification error taxonomy onto HTTP
// statuses. Workflow failures leave all stored state untouched, so the
// caller can correct the precondition and retry.
func writeWorkflowError(w http.ResponseWriter, err error) {
	var incomplete *verify.IncompleteClaimsError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, verify.ErrForbidden), errors.Is(err, verify.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, verify.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"detail":             incomplete.Error(),
			"pending_employment": incomplete.PendingEmployment,
			"pending_education":  incomplete.PendingEducation,
		})
	default:
		log.Printf("verification operation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
