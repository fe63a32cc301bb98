package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taxmitra/taxmitra/internal/api/middleware"
	"github.com/taxmitra/taxmitra/internal/domain"
	"github.com/taxmitra/taxmitra/internal/jobs"
	"github.com/taxmitra/taxmitra/internal/receipts"
	"github.com/taxmitra/taxmitra/internal/store"
	"github.com/taxmitra/taxmitra/internal/tax"
)

// TransactionStore is the slice of the file store the handlers need.
type TransactionStore interface {
	LoadAll(ctx context.Context) ([]domain.Transaction, error)
	Update(ctx context.Context, id string, upd *domain.TransactionUpdate) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) (string, error)
}

// ReceiptsHandler handles receipt upload and processing endpoints.
type ReceiptsHandler struct {
	receipts  *receipts.Service
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(svc *receipts.Service, publisher jobs.Publisher, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		receipts:  svc,
		publisher: publisher,
		log:       log,
	}
}

// UploadReceipt handles POST /api/receipts. The request body is the raw
// receipt file; the filename comes from the query string. The receipt is
// stored in GCS and a processing job is enqueued.
func (h *ReceiptsHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "filename is required")
		return
	}
	filename = filepath.Base(filename)

	objectName := fmt.Sprintf("receipts/%s/%s", time.Now().Format("2006/01/02"), uuid.NewString()+"-"+filename)

	gcsURI, err := h.receipts.Upload(ctx, objectName, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upload receipt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload receipt")
		return
	}

	job := &jobs.ProcessReceiptJob{
		GCSURI:   gcsURI,
		Filename: filename,
	}
	if err := h.publisher.PublishProcessReceipt(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue receipt job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue receipt job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", gcsURI).Msg("Receipt job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": gcsURI,
		"status":  string(job.Status),
	})
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(r.URL.Query().Get("status")),
		Limit:  50,
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// TransactionsHandler handles transaction CRUD endpoints.
type TransactionsHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(s TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: s, log: log}
}

// ListTransactions handles GET /api/transactions, most recent first.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.LoadAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var upd domain.TransactionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.store.Update(r.Context(), id, &upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, t)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// TaxHandler serves tax summary and advice endpoints.
type TaxHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewTaxHandler creates a new tax handler.
func NewTaxHandler(s TransactionStore, log zerolog.Logger) *TaxHandler {
	return &TaxHandler{store: s, log: log}
}

// GetTaxSummary handles GET /api/tax-summary
func (h *TaxHandler) GetTaxSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.LoadAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tax.Summarize(txs))
}

// GetTaxAdvice handles GET /api/tax-advice
func (h *TaxHandler) GetTaxAdvice(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.LoadAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for advice")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	summary := tax.Summarize(txs)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"advice":          tax.Advice(summary),
		"recommendations": tax.Recommendations(summary),
	})
}

// ExportHandler serves the tax data export endpoint.
type ExportHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(s TransactionStore, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{store: s, log: log}
}

// CreateExport handles POST /api/export
func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	path, err := h.store.Export(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create export")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "exported",
		"path":   path,
	})
}
