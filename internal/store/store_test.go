package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taxmitra/taxmitra/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "transactions.json"), filepath.Join(dir, "exports"), zerolog.Nop())
}

func sampleTransaction() *domain.Transaction {
	return &domain.Transaction{
		Type:         domain.TypeIncome,
		Amount:       45000,
		Date:         "2024-07-01",
		ClientVendor: "Acme Corp",
		Description:  "Consulting invoice",
		Category:     domain.CategoryConsulting,
		Currency:     "INR",
		Confidence:   0.9,
	}
}

func TestLoadAll_MissingFile(t *testing.T) {
	s := newTestStore(t)

	txs, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
}

func TestCreateAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleTransaction())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("Create did not assign an ID")
	}
	if created.Timestamp.IsZero() {
		t.Error("Create did not stamp a timestamp")
	}

	txs, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].ID != created.ID || txs[0].Amount != 45000 {
		t.Errorf("loaded transaction = %+v, want the created one", txs[0])
	}
}

func TestGetByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleTransaction())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ClientVendor != "Acme Corp" {
		t.Errorf("ClientVendor = %q, want Acme Corp", got.ClientVendor)
	}

	if _, err := s.GetByID(ctx, "no-such-id"); err != ErrNotFound {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleTransaction())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newAmount := 50000.0
	newCategory := domain.CategoryFreelanceIncome
	updated, err := s.Update(ctx, created.ID, &domain.TransactionUpdate{
		Amount:   &newAmount,
		Category: &newCategory,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Amount != 50000 {
		t.Errorf("Amount = %v, want 50000", updated.Amount)
	}
	if updated.Category != domain.CategoryFreelanceIncome {
		t.Errorf("Category = %q, want %q", updated.Category, domain.CategoryFreelanceIncome)
	}
	// Untouched fields survive the merge.
	if updated.ClientVendor != "Acme Corp" || updated.Date != "2024-07-01" {
		t.Errorf("merge clobbered untouched fields: %+v", updated)
	}
	if updated.LastUpdated == nil {
		t.Error("LastUpdated not stamped")
	}

	if _, err := s.Update(ctx, "no-such-id", &domain.TransactionUpdate{}); err != ErrNotFound {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleTransaction())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	txs, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions after delete, want 0", len(txs))
	}

	if err := s.Delete(ctx, created.ID); err != ErrNotFound {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestSave_WritesBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, sampleTransaction()); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := s.Create(ctx, sampleTransaction()); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	backup, err := os.ReadFile(s.path + ".backup")
	if err != nil {
		t.Fatalf("backup file not written: %v", err)
	}

	// Backup holds the state before the second write: one transaction.
	var txs []domain.Transaction
	if err := json.Unmarshal(backup, &txs); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("backup holds %d transactions, want 1", len(txs))
	}
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx := sampleTransaction()
	tx.GSTApplicable = true
	tx.GSTAmount = 8100
	if _, err := s.Create(ctx, tx); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exp := sampleTransaction()
	exp.Type = domain.TypeExpense
	exp.Amount = 12000
	exp.Date = "2024-05-15"
	exp.Category = domain.CategoryRent
	if _, err := s.Create(ctx, exp); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	if doc.ExportInfo.ExportType != "Complete Tax Data Export" {
		t.Errorf("ExportType = %q", doc.ExportInfo.ExportType)
	}
	if doc.ExportInfo.TotalTransactions != 2 {
		t.Errorf("TotalTransactions = %d, want 2", doc.ExportInfo.TotalTransactions)
	}
	if doc.ExportInfo.DateRange.StartDate != "2024-05-15" || doc.ExportInfo.DateRange.EndDate != "2024-07-01" {
		t.Errorf("DateRange = %+v, want 2024-05-15..2024-07-01", doc.ExportInfo.DateRange)
	}
	if len(doc.Transactions) != 2 {
		t.Errorf("exported %d transactions, want 2", len(doc.Transactions))
	}
	if doc.TaxSummary.GSTCollected != 8100 {
		t.Errorf("GSTCollected = %v, want 8100", doc.TaxSummary.GSTCollected)
	}
	if len(doc.AdvanceTaxSchedule) != 4 {
		t.Errorf("AdvanceTaxSchedule has %d entries, want 4", len(doc.AdvanceTaxSchedule))
	}
	if doc.SummaryByCategory == nil {
		t.Error("SummaryByCategory missing")
	}
}
