package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/KRdoubleL/cv-verification/internal/cv"
	"github.com/KRdoubleL/cv-verification/internal/ingest"
	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// uploadResponse mirrors what recruiters see after a successful upload.
type uploadResponse struct {
	BatchID         string `json:"batch_id"`
	BatchName       string `json:"batch_name"`
	TotalCandidates int    `json:"total_candidates"`
	Message         string `json:"message"`
}

// readUpload handles the multipart plumbing shared by both upload
// endpoints and enforces the recruiter-only rule.
func (a *API) readUpload(w http.ResponseWriter, r *http.Request) (user storage.User, batchName, filename string, file io.ReadCloser, ok bool) {
	user, ok = principal(w, r)
	if !ok {
		return
	}
	if user.Role != storage.RoleRecruiter {
		writeError(w, http.StatusForbidden, "only recruiters can upload candidates")
		ok = false
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		ok = false
		return
	}

	batchName = r.FormValue("batch_name")
	if batchName == "" {
		writeError(w, http.StatusBadRequest, "batch_name is required")
		ok = false
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		ok = false
		return
	}

	return user, batchName, header.Filename, f, true
}

// CSVUploadHandler ingests a tabular export of candidates
// @Summary Upload candidates from a CSV export
// @Description Upload a delimited file with a header row; one candidate per data row. The whole upload commits atomically.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param batch_name formData string true "Name for the new batch"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /candidates/upload/csv [post]
func (a *API) CSVUploadHandler(w http.ResponseWriter, r *http.Request) {
	user, batchName, filename, file, ok := a.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	parsed, err := ingest.ParseTabular(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("error processing CSV: %v", err))
		return
	}

	batch, err := a.builder.BuildBatch(r.Context(), batchName, user.ID, "csv", parsed)
	if err != nil {
		a.writeBuildError(w, err)
		return
	}

	log.Printf("CSV upload %s: batch %s with %d candidates", filename, batch.ID, batch.TotalCandidates)

	writeJSON(w, http.StatusOK, uploadResponse{
		BatchID:         batch.ID,
		BatchName:       batch.Name,
		TotalCandidates: batch.TotalCandidates,
		Message:         fmt.Sprintf("Successfully uploaded %d candidates", batch.TotalCandidates),
	})
}

// DocumentUploadHandler ingests a single free-text CV document
// @Summary Upload a CV document
// @Description Upload a PDF/DOCX/TXT CV. The text layer is extracted and segmented heuristically; unparseable sections yield manual-review placeholder entries.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CV document (PDF, DOCX, DOC, RTF, ODT or TXT)"
// @Param batch_name formData string true "Name for the new batch"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /candidates/upload/document [post]
func (a *API) DocumentUploadHandler(w http.ResponseWriter, r *http.Request) {
	user, batchName, filename, file, ok := a.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	if !cv.SupportedExt(filepath.Ext(filename)) {
		writeError(w, http.StatusBadRequest, "invalid file type (supported: PDF, DOCX, DOC, RTF, ODT, TXT)")
		return
	}

	text, err := a.extractor.ExtractText(filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("error processing document: %v", err))
		return
	}

	parsed := ingest.ExtractDocument(text)
	batch, err := a.builder.BuildBatch(r.Context(), batchName, user.ID, "document", []ingest.ParsedCandidate{parsed})
	if err != nil {
		a.writeBuildError(w, err)
		return
	}

	log.Printf("document upload %s: batch %s (%d bytes text)", filename, batch.ID, len(text))

	writeJSON(w, http.StatusOK, uploadResponse{
		BatchID:         batch.ID,
		BatchName:       batch.Name,
		TotalCandidates: batch.TotalCandidates,
		Message:         "Successfully uploaded CV document",
	})
}

// writeBuildError distinguishes caller mistakes (bad rows) from
// storage failures. Either way nothing partial was committed.
func (a *API) writeBuildError(w http.ResponseWriter, err error) {
	var rowErr *ingest.RowConstructionError
	if errors.As(err, &rowErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("upload rejected: %v", rowErr))
		return
	}
	log.Printf("batch persist failed: %v", err)
	writeError(w, http.StatusInternalServerError, "failed to store batch")
}
