package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeProcessReceipt represents a receipt parsing job.
	JobTypeProcessReceipt JobType = "process_receipt"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ProcessReceiptJob is a job to fetch, parse, validate and store one
// uploaded receipt.
type ProcessReceiptJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// GCSURI is the location of the uploaded receipt.
	GCSURI string `json:"gcs_uri"`

	// Filename is the receipt's original filename.
	Filename string `json:"filename,omitempty"`

	// TransactionID is set once the pipeline has stored the transaction.
	TransactionID string `json:"transaction_id,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ProcessReceiptJob) GetID() string        { return j.JobID }
func (j *ProcessReceiptJob) GetType() JobType     { return JobTypeProcessReceipt }
func (j *ProcessReceiptJob) GetStatus() JobStatus { return j.Status }

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishProcessReceipt publishes a receipt processing job.
	PublishProcessReceipt(ctx context.Context, job *ProcessReceiptJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs; handler is called for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job; a non-nil error triggers a retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ProcessReceiptJob) error
	GetJob(ctx context.Context, jobID string) (*ProcessReceiptJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ProcessReceiptJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
}
