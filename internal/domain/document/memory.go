package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory document store. Writes are serialized by a
// single mutex, which also serializes the per-document status transitions.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]Document
}

// NewMemoryRepository creates an empty in-memory document store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[uuid.UUID]Document)}
}

func (r *MemoryRepository) Create(_ context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (r *MemoryRepository) GetByHash(_ context.Context, hash string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs {
		if doc.ContentHash == hash {
			d := doc
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetContent(_ context.Context, id uuid.UUID) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Content, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.Before(docs[j].UploadedAt) })
	return docs, nil
}

func (r *MemoryRepository) MarkCompleted(_ context.Context, id uuid.UUID, txCount int, periodStart, periodEnd *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	doc.Status = StatusCompleted
	doc.TransactionCount = txCount
	doc.PeriodStart = periodStart
	doc.PeriodEnd = periodEnd
	doc.ErrorMessage = ""
	doc.ProcessedAt = &now
	r.docs[id] = doc
	return nil
}

func (r *MemoryRepository) MarkError(_ context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	doc.Status = StatusError
	doc.ErrorMessage = message
	doc.ProcessedAt = &now
	r.docs[id] = doc
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}
