package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/taxmitra/taxmitra/internal/api/handlers"
	"github.com/taxmitra/taxmitra/internal/api/middleware"
	"github.com/taxmitra/taxmitra/internal/jobs"
	"github.com/taxmitra/taxmitra/internal/jobs/inmemory"
	"github.com/taxmitra/taxmitra/internal/logger"
	"github.com/taxmitra/taxmitra/internal/pipeline"
	"github.com/taxmitra/taxmitra/internal/receipts"
	"github.com/taxmitra/taxmitra/internal/store"
)

func main() {
	// Parse command-line flags
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		bucket    = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name for receipt uploads (or set GCS_BUCKET env)")
		dataFile  = flag.String("data-file", "data/transactions.json", "Path to the transactions data file")
		exportDir = flag.String("export-dir", "exports", "Directory for tax export files")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - receipt uploads will be disabled")
	}

	ctx := context.Background()

	// Initialize storage and pipeline
	txStore := store.New(*dataFile, *exportDir, log)
	receiptSvc := receipts.NewService(*bucket)
	ingestor := pipeline.NewIngestor(receiptSvc, pipeline.NewGeminiParser(), txStore, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Create job handler for processing receipt jobs
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		receiptJob, ok := job.(*jobs.ProcessReceiptJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", receiptJob.JobID).
			Str("gcs_uri", receiptJob.GCSURI).
			Msg("Processing receipt job")

		t, err := ingestor.IngestReceiptFromGCS(ctx, receiptJob.GCSURI)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", receiptJob.JobID).
				Str("gcs_uri", receiptJob.GCSURI).
				Msg("Receipt ingestion failed")
			return err
		}
		receiptJob.TransactionID = t.ID

		log.Info().
			Str("job_id", receiptJob.JobID).
			Str("transaction_id", t.ID).
			Msg("Receipt ingestion completed successfully")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	receiptsHandler := handlers.NewReceiptsHandler(receiptSvc, jobQueue, log)
	transactionsHandler := handlers.NewTransactionsHandler(txStore, log)
	taxHandler := handlers.NewTaxHandler(txStore, log)
	exportHandler := handlers.NewExportHandler(txStore, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Receipts endpoints
	mux.HandleFunc("/api/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.UploadReceipt(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		// Extract transaction ID from path
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.UpdateTransaction(w, r, id)
		case http.MethodDelete:
			transactionsHandler.DeleteTransaction(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Tax endpoints
	mux.HandleFunc("/api/tax-summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			taxHandler.GetTaxSummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/tax-advice", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			taxHandler.GetTaxAdvice(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Export endpoint
	mux.HandleFunc("/api/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			exportHandler.CreateExport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
