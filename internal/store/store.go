// Package store persists the transaction collection as a single JSON file
// with whole-collection read/replace semantics. Concurrent writers inside
// one process are serialized by the store's mutex; cross-process access
// needs external coordination.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taxmitra/taxmitra/internal/domain"
)

// ErrNotFound is returned when a transaction ID does not exist.
var ErrNotFound = errors.New("transaction not found")

// FileStore is a JSON-file-backed transaction store.
type FileStore struct {
	mu        sync.RWMutex
	path      string
	exportDir string
	log       zerolog.Logger
}

// New creates a file store. The data file and export directory paths are
// explicit configuration; the store creates missing parent directories on
// first write.
func New(path, exportDir string, log zerolog.Logger) *FileStore {
	return &FileStore{
		path:      path,
		exportDir: exportDir,
		log:       log,
	}
}

// LoadAll reads the full transaction collection. A missing data file is an
// empty collection, not an error.
func (s *FileStore) LoadAll(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() ([]domain.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Transaction{}, nil
		}
		return nil, fmt.Errorf("loadTransactions: read %s: %w", s.path, err)
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("loadTransactions: unmarshal %s: %w", s.path, err)
	}
	return txs, nil
}

// saveLocked replaces the whole collection on disk, keeping a .backup copy
// of the previous contents.
func (s *FileStore) saveLocked(txs []domain.Transaction) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("saveTransactions: create data dir: %w", err)
		}
	}

	if prev, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.path+".backup", prev, 0o644); err != nil {
			return fmt.Errorf("saveTransactions: write backup: %w", err)
		}
	}

	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return fmt.Errorf("saveTransactions: marshal: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("saveTransactions: write %s: %w", s.path, err)
	}

	s.log.Info().Int("count", len(txs)).Str("path", s.path).Msg("Saved transactions")
	return nil
}

// Create assigns an ID and creation timestamp, appends the transaction to
// the collection, and persists it.
func (s *FileStore) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	t.ID = uuid.NewString()
	t.Timestamp = time.Now()

	txs = append(txs, *t)
	if err := s.saveLocked(txs); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", t.ID).
		Str("type", string(t.Type)).
		Float64("amount", t.Amount).
		Msg("Saved transaction")

	return t, nil
}

// GetByID returns a single transaction.
func (s *FileStore) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].ID == id {
			return &txs[i], nil
		}
	}
	return nil, ErrNotFound
}

// Update merges the non-nil fields of upd into an existing transaction and
// stamps it with the update time.
func (s *FileStore) Update(ctx context.Context, id string, upd *domain.TransactionUpdate) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	for i := range txs {
		if txs[i].ID != id {
			continue
		}
		upd.Apply(&txs[i])
		now := time.Now()
		txs[i].LastUpdated = &now

		if err := s.saveLocked(txs); err != nil {
			return nil, err
		}
		s.log.Info().Str("transaction_id", id).Msg("Updated transaction")
		return &txs[i], nil
	}
	return nil, ErrNotFound
}

// Delete removes a transaction by ID.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadLocked()
	if err != nil {
		return err
	}

	kept := txs[:0]
	for _, t := range txs {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(txs) {
		return ErrNotFound
	}

	if err := s.saveLocked(kept); err != nil {
		return err
	}
	s.log.Info().Str("transaction_id", id).Msg("Deleted transaction")
	return nil
}
