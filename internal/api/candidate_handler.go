package api

import (
	"errors"
	"net/http"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// ListBatchesHandler lists upload batches
// @Summary List batches
// @Description Recruiters see their own batches; verifiers and admins see all.
// @Tags candidates
// @Produce json
// @Success 200 {array} storage.Batch
// @Router /candidates/batches [get]
func (a *API) ListBatchesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	recruiterID := ""
	if user.Role == storage.RoleRecruiter {
		recruiterID = user.ID
	}

	batches, err := a.store.ListBatches(r.Context(), recruiterID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}
	if batches == nil {
		batches = []*storage.Batch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

// batchDetail is a batch plus its candidates in creation order.
type batchDetail struct {
	storage.Batch
	Candidates []*storage.Candidate `json:"candidates"`
}

// GetBatchHandler returns one batch with its candidates
// @Summary Get batch detail
// @Tags candidates
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} batchDetail
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /candidates/batches/{id} [get]
func (a *API) GetBatchHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	batch, err := a.store.GetBatch(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load batch")
		return
	}

	if user.Role == storage.RoleRecruiter && batch.RecruiterID != user.ID {
		writeError(w, http.StatusForbidden, "not authorized to view this batch")
		return
	}

	candidates, err := a.store.ListBatchCandidates(r.Context(), batch.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load candidates")
		return
	}
	if candidates == nil {
		candidates = []*storage.Candidate{}
	}

	writeJSON(w, http.StatusOK, batchDetail{Batch: *batch, Candidates: candidates})
}

// DeleteBatchHandler removes a batch and everything under it
// @Summary Delete a batch
// @Description Deletes the batch with all of its candidates and claims. Owner recruiter or admin only.
// @Tags candidates
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /candidates/batches/{id} [delete]
func (a *API) DeleteBatchHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	batch, err := a.store.GetBatch(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load batch")
		return
	}

	// Only the uploading recruiter (or an admin) may remove an upload.
	if user.Role != storage.RoleAdmin && !(user.Role == storage.RoleRecruiter && batch.RecruiterID == user.ID) {
		writeError(w, http.StatusForbidden, "not authorized to delete this batch")
		return
	}

	if err := a.store.DeleteBatch(r.Context(), batch.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete batch")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Batch deleted"})
}

// GetCandidateHandler returns one candidate with all claims
// @Summary Get candidate detail
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} storage.Candidate
// @Failure 404 {object} map[string]string
// @Router /candidates/{id} [get]
func (a *API) GetCandidateHandler(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, candidate)
}
