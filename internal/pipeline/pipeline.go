package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taxmitra/taxmitra/internal/domain"
)

// Ingestor wires the receipt ingestion pipeline: fetch bytes from GCS,
// parse with the AI model, validate the untrusted output, store the
// transaction. Parse failures still produce a stored low-confidence
// transaction; only storage and fetch failures abort the run.
type Ingestor struct {
	fetcher ReceiptFetcher
	parser  AIParser
	store   TransactionStore
	log     zerolog.Logger
}

// NewIngestor creates an ingestor with explicit dependencies.
func NewIngestor(fetcher ReceiptFetcher, parser AIParser, store TransactionStore, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		log:     log,
	}
}

// State holds the shared state across all pipeline steps.
type State struct {
	GCSURI      string
	Filename    string
	MIMEType    string
	FileBytes   []byte
	RawOutput   map[string]interface{}
	Transaction *domain.Transaction
}

// Step is a single stage of the ingestion pipeline.
type Step interface {
	Execute(ctx context.Context, in *Ingestor, state *State) error
}

// FetchReceiptStep downloads the receipt bytes from GCS.
type FetchReceiptStep struct{}

func (s *FetchReceiptStep) Execute(ctx context.Context, in *Ingestor, state *State) error {
	data, err := in.fetcher.FetchFromGCS(ctx, state.GCSURI)
	if err != nil {
		return err
	}
	state.FileBytes = data
	state.Filename = in.fetcher.ExtractFilenameFromGCSURI(state.GCSURI)
	state.MIMEType = detectMIMEType(state.Filename)
	return nil
}

// ParseReceiptStep calls the AI model. A model failure is downgraded to a
// nil raw record so validation can produce the fallback transaction; the
// user still gets a reviewable entry instead of an error page.
type ParseReceiptStep struct{}

func (s *ParseReceiptStep) Execute(ctx context.Context, in *Ingestor, state *State) error {
	raw, err := in.parser.ParseReceipt(ctx, state.FileBytes, state.MIMEType)
	if err != nil {
		in.log.Warn().Err(err).Str("gcs_uri", state.GCSURI).Msg("Model parse failed, storing fallback record")
		state.RawOutput = nil
		return nil
	}
	state.RawOutput = raw
	return nil
}

// ValidateRecordStep normalizes the raw model output into a transaction.
type ValidateRecordStep struct{}

func (s *ValidateRecordStep) Execute(ctx context.Context, in *Ingestor, state *State) error {
	t := ValidateRecord(state.RawOutput)
	t.OriginalFilename = state.Filename
	state.Transaction = t
	return nil
}

// StoreTransactionStep persists the validated transaction. This is the
// only step whose failure reaches the caller as a hard error.
type StoreTransactionStep struct{}

func (s *StoreTransactionStep) Execute(ctx context.Context, in *Ingestor, state *State) error {
	stored, err := in.store.Create(ctx, state.Transaction)
	if err != nil {
		return err
	}
	state.Transaction = stored
	return nil
}

// IngestReceiptFromGCS runs the full pipeline for one receipt.
// gcsURI should look like "gs://bucket/path/to/receipt.pdf".
func (in *Ingestor) IngestReceiptFromGCS(ctx context.Context, gcsURI string) (*domain.Transaction, error) {
	state := &State{GCSURI: gcsURI}

	steps := []Step{
		&FetchReceiptStep{},
		&ParseReceiptStep{},
		&ValidateRecordStep{},
		&StoreTransactionStep{},
	}

	for i, step := range steps {
		if err := step.Execute(ctx, in, state); err != nil {
			return nil, fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}

	in.log.Info().
		Str("transaction_id", state.Transaction.ID).
		Str("type", string(state.Transaction.Type)).
		Float64("amount", state.Transaction.Amount).
		Float64("confidence", state.Transaction.Confidence).
		Msg("Receipt ingested")

	return state.Transaction, nil
}

// IngestExtractedText runs the classification half of the pipeline on text
// the OCR collaborator already extracted.
func (in *Ingestor) IngestExtractedText(ctx context.Context, text string) (*domain.Transaction, error) {
	raw, err := in.parser.ParseText(ctx, text)
	if err != nil {
		in.log.Warn().Err(err).Msg("Model parse failed, storing fallback record")
		raw = nil
	}

	t := ValidateRecord(raw)
	t.ExtractedText = truncateRunes(text, maxExtractedText)

	stored, err := in.store.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("IngestExtractedText: store transaction: %w", err)
	}
	return stored, nil
}

// detectMIMEType maps a receipt filename to its content type.
func detectMIMEType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return DefaultMIMEType
	}
}
