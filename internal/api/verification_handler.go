package api

import (
	"encoding/json"
	"net/http"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// claimUpdate is the body of both claim-status update endpoints.
type claimUpdate struct {
	ClaimStatus         storage.ClaimStatus `json:"claim_status"`
	VerificationNote    string              `json:"verification_note"`
	VerificationSources []string            `json:"verification_sources"`
}

// PendingHandler lists unclaimed candidates
// @Summary List pending candidates
// @Tags verification
// @Produce json
// @Success 200 {array} storage.Candidate
// @Failure 403 {object} map[string]string
// @Router /verification/pending [get]
func (a *API) PendingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	candidates, err := a.workflow.PendingQueue(r.Context(), user)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if candidates == nil {
		candidates = []*storage.Candidate{}
	}
	writeJSON(w, http.StatusOK, candidates)
}

// ClaimHandler assigns a pending candidate to the caller
// @Summary Claim a candidate for verification
// @Description Moves a PENDING candidate to IN_PROGRESS with the caller as verifier. Exactly one of two concurrent claims succeeds.
// @Tags verification
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /verification/claim/{id} [post]
func (a *API) ClaimHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	if err := a.workflow.Claim(r.Context(), r.PathValue("id"), user); err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Candidate claimed successfully"})
}

// MyQueueHandler lists the caller's in-progress candidates
// @Summary List my verification queue
// @Tags verification
// @Produce json
// @Success 200 {array} storage.Candidate
// @Failure 403 {object} map[string]string
// @Router /verification/my-queue [get]
func (a *API) MyQueueHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	candidates, err := a.workflow.MyQueue(r.Context(), user)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if candidates == nil {
		candidates = []*storage.Candidate{}
	}
	writeJSON(w, http.StatusOK, candidates)
}

// UpdateEmploymentHandler adjudicates one employment claim
// @Summary Update employment claim verification
// @Tags verification
// @Accept json
// @Produce json
// @Param id path string true "Employment claim ID"
// @Param update body claimUpdate true "New status, note and evidence sources"
// @Success 200 {object} storage.Employment
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /verification/employment/{id} [put]
func (a *API) UpdateEmploymentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	var update claimUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	employment, err := a.workflow.SetEmploymentStatus(r.Context(), r.PathValue("id"), user,
		update.ClaimStatus, update.VerificationNote, update.VerificationSources)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employment)
}

// UpdateEducationHandler adjudicates one education claim
// @Summary Update education claim verification
// @Tags verification
// @Accept json
// @Produce json
// @Param id path string true "Education claim ID"
// @Param update body claimUpdate true "New status, note and evidence sources"
// @Success 200 {object} storage.Education
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /verification/education/{id} [put]
func (a *API) UpdateEducationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	var update claimUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	education, err := a.workflow.SetEducationStatus(r.Context(), r.PathValue("id"), user,
		update.ClaimStatus, update.VerificationNote, update.VerificationSources)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, education)
}

// CompleteHandler finishes a candidate's verification
// @Summary Complete candidate verification
// @Description Legal only while IN_PROGRESS, by the assigned verifier, with zero PENDING claims. Recomputes the batch's verified count.
// @Tags verification
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /verification/complete/{id} [post]
func (a *API) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	batch, err := a.workflow.Complete(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Verification completed successfully",
		"batch_id":       batch.ID,
		"verified_count": batch.VerifiedCount,
		"batch_status":   batch.Status,
	})
}

// StatsHandler returns role-shaped verification stats
// @Summary Verification statistics
// @Description Verifiers get queue counts; recruiters get batch aggregates.
// @Tags verification
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /verification/stats [get]
func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}

	switch user.Role {
	case storage.RoleVerifier, storage.RoleAdmin:
		stats, err := a.workflow.VerifierStatsFor(r.Context(), user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	case storage.RoleRecruiter:
		stats, err := a.workflow.RecruiterStatsFor(r.Context(), user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	}
}
