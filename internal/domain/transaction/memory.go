package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory transaction store.
type MemoryRepository struct {
	mu  sync.RWMutex
	txs []ExtractedTransaction
}

// NewMemoryRepository creates an empty in-memory transaction store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) InsertBatch(_ context.Context, txs []ExtractedTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, txs...)
	return nil
}

func (r *MemoryRepository) ListByDocument(_ context.Context, documentID uuid.UUID) ([]ExtractedTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ExtractedTransaction
	for _, tx := range r.txs {
		if tx.DocumentID == documentID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *MemoryRepository) ListByDay(_ context.Context, day time.Time) ([]ExtractedTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	y, m, d := day.Date()
	var out []ExtractedTransaction
	for _, tx := range r.txs {
		ty, tm, td := tx.Date.Date()
		if ty == y && tm == m && td == d {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *MemoryRepository) DeleteByDocument(_ context.Context, documentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.txs[:0]
	for _, tx := range r.txs {
		if tx.DocumentID != documentID {
			kept = append(kept, tx)
		}
	}
	r.txs = kept
	return nil
}
