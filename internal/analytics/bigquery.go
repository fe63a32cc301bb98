// Package analytics streams validated transactions to BigQuery as an
// optional reporting sink. The JSON file store remains the source of
// truth; this table only serves ad-hoc analysis.
package analytics

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// Defaults for the analytics dataset.
const (
	DefaultDatasetID = "taxmitra"
	DefaultTableID   = "transactions"
)

// TransactionRow is the BigQuery schema for one exported transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	Type   string   `bigquery:"type"`   // REQUIRED
	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	ClientVendor string `bigquery:"client_vendor"`
	Description  string `bigquery:"description"`
	Category     string `bigquery:"category"`

	GSTApplicable bool     `bigquery:"gst_applicable"`
	GSTAmount     *big.Rat `bigquery:"gst_amount"` // NUMERIC

	Currency   string  `bigquery:"currency"`
	Confidence float64 `bigquery:"confidence"`

	OriginalFilename bigquery.NullString `bigquery:"original_filename"` // NULLABLE

	CreatedTS  time.Time `bigquery:"created_ts"`
	ExportedTS time.Time `bigquery:"exported_ts"`
}

// Sink writes transactions to a BigQuery table.
type Sink struct {
	projectID string
	datasetID string
	tableID   string
}

// NewSink creates a sink for the given project. Empty dataset/table fall
// back to the defaults.
func NewSink(projectID, datasetID, tableID string) *Sink {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	if tableID == "" {
		tableID = DefaultTableID
	}
	return &Sink{projectID: projectID, datasetID: datasetID, tableID: tableID}
}

// ExportTransactions streams the given transactions into the table.
func (s *Sink) ExportTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	client, err := bigquery.NewClient(ctx, s.projectID)
	if err != nil {
		return fmt.Errorf("ExportTransactions: bigquery client: %w", err)
	}
	defer client.Close()

	now := time.Now()
	rows := make([]*TransactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, rowFromTransaction(t, now))
	}

	inserter := client.Dataset(s.datasetID).Table(s.tableID).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("ExportTransactions: inserting %d rows: %w", len(rows), err)
	}
	return nil
}

// CountExported returns the number of rows currently in the table.
func (s *Sink) CountExported(ctx context.Context) (int64, error) {
	client, err := bigquery.NewClient(ctx, s.projectID)
	if err != nil {
		return 0, fmt.Errorf("CountExported: bigquery client: %w", err)
	}
	defer client.Close()

	q := client.Query(fmt.Sprintf("SELECT COUNT(*) AS n FROM `%s.%s`", s.datasetID, s.tableID))

	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountExported: running query: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return 0, fmt.Errorf("CountExported: reading result: %w", err)
	}
	return row.N, nil
}

func rowFromTransaction(t domain.Transaction, exportedAt time.Time) *TransactionRow {
	row := &TransactionRow{
		TransactionID: t.ID,
		Type:          string(t.Type),
		Amount:        new(big.Rat).SetFloat64(t.Amount),
		ClientVendor:  t.ClientVendor,
		Description:   t.Description,
		Category:      t.Category,
		GSTApplicable: t.GSTApplicable,
		GSTAmount:     new(big.Rat).SetFloat64(t.GSTAmount),
		Currency:      t.Currency,
		Confidence:    t.Confidence,
		CreatedTS:     t.Timestamp,
		ExportedTS:    exportedAt,
	}

	if d, ok := t.DateTime(); ok {
		row.TransactionDate = civil.DateOf(d)
	} else {
		row.TransactionDate = civil.DateOf(t.Timestamp)
	}
	if t.OriginalFilename != "" {
		row.OriginalFilename = bigquery.NullString{StringVal: t.OriginalFilename, Valid: true}
	}

	return row
}
