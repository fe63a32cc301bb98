package pipeline

import (
	"context"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// ReceiptFetcher retrieves receipt bytes from object storage.
type ReceiptFetcher interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
	ExtractFilenameFromGCSURI(uri string) string
}

// AIParser provides AI-powered receipt parsing. The returned map is raw,
// possibly-malformed model output; only ValidateRecord may consume it.
// The interface exists so tests can substitute a deterministic parser.
type AIParser interface {
	// ParseReceipt sends the receipt bytes to the model directly.
	ParseReceipt(ctx context.Context, data []byte, mimeType string) (map[string]interface{}, error)

	// ParseText classifies pre-extracted OCR text.
	ParseText(ctx context.Context, text string) (map[string]interface{}, error)
}

// TransactionStore persists validated transactions. Only the create path is
// needed by the pipeline; full CRUD lives on the concrete store.
type TransactionStore interface {
	Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
}
