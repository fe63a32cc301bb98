package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/taxmitra/taxmitra/internal/domain"
	"github.com/taxmitra/taxmitra/internal/tax"
)

// ExportDocument is the complete tax-filing export payload. All amounts
// are plain decimal numbers; currency formatting is display-side only.
type ExportDocument struct {
	ExportInfo         ExportInfo                    `json:"export_info"`
	TaxSummary         tax.Summary                   `json:"tax_summary"`
	TaxAdvice          []string                      `json:"tax_advice"`
	Transactions       []domain.Transaction          `json:"transactions"`
	SummaryByCategory  map[string]tax.CategoryTotals `json:"summary_by_category"`
	AdvanceTaxSchedule []tax.Installment             `json:"advance_tax_schedule"`
	Recommendations    []string                      `json:"recommendations"`
}

// ExportInfo describes the export run itself.
type ExportInfo struct {
	GeneratedOn       string    `json:"generated_on"`
	TotalTransactions int       `json:"total_transactions"`
	DateRange         DateRange `json:"date_range"`
	ExportType        string    `json:"export_type"`
}

// DateRange is the inclusive span of transaction dates in the export.
type DateRange struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Export writes the full tax data export to a timestamped JSON file in the
// export directory and returns its path.
func (s *FileStore) Export(ctx context.Context) (string, error) {
	txs, err := s.LoadAll(ctx)
	if err != nil {
		return "", err
	}

	summary := tax.Summarize(txs)

	doc := ExportDocument{
		ExportInfo: ExportInfo{
			GeneratedOn:       time.Now().Format(time.RFC3339),
			TotalTransactions: len(txs),
			DateRange:         dateRange(txs),
			ExportType:        "Complete Tax Data Export",
		},
		TaxSummary:         summary,
		TaxAdvice:          tax.Advice(summary),
		Transactions:       txs,
		SummaryByCategory:  summary.CategoryBreakdown,
		AdvanceTaxSchedule: summary.AdvanceTaxSchedule,
		Recommendations:    tax.Recommendations(summary),
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("Export: create export dir: %w", err)
	}

	filename := fmt.Sprintf("freelancer_tax_export_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.exportDir, filename)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Export: marshal export document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("Export: write %s: %w", path, err)
	}

	s.log.Info().Str("path", path).Int("transactions", len(txs)).Msg("Created export file")
	return path, nil
}

// dateRange finds the earliest and latest parseable transaction dates.
func dateRange(txs []domain.Transaction) DateRange {
	var r DateRange
	for _, t := range txs {
		if _, ok := t.DateTime(); !ok {
			continue
		}
		if r.StartDate == "" || t.Date < r.StartDate {
			r.StartDate = t.Date
		}
		if r.EndDate == "" || t.Date > r.EndDate {
			r.EndDate = t.Date
		}
	}
	return r
}
