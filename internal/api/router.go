package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Ingestion endpoints
	mux.HandleFunc("POST /api/candidates/upload/csv", a.CSVUploadHandler)
	mux.HandleFunc("POST /api/candidates/upload/document", a.DocumentUploadHandler)

	// Batch & candidate browsing
	mux.HandleFunc("GET /api/candidates/batches", a.ListBatchesHandler)
	mux.HandleFunc("GET /api/candidates/batches/{id}", a.GetBatchHandler)
	mux.HandleFunc("DELETE /api/candidates/batches/{id}", a.DeleteBatchHandler)
	mux.HandleFunc("GET /api/candidates/{id}", a.GetCandidateHandler)

	// Verification workflow
	mux.HandleFunc("GET /api/verification/pending", a.PendingHandler)
	mux.HandleFunc("POST /api/verification/claim/{id}", a.ClaimHandler)
	mux.HandleFunc("GET /api/verification/my-queue", a.MyQueueHandler)
	mux.HandleFunc("PUT /api/verification/employment/{id}", a.UpdateEmploymentHandler)
	mux.HandleFunc("PUT /api/verification/education/{id}", a.UpdateEducationHandler)
	mux.HandleFunc("POST /api/verification/complete/{id}", a.CompleteHandler)
	mux.HandleFunc("GET /api/verification/stats", a.StatsHandler)

	// Reports
	mux.HandleFunc("GET /api/reports/{id}", a.ReportHandler)

	return mux
}
