package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/knowledgecopilot/backend/internal/document"
)

// MemoryRepo is an in-memory Repository used by unit tests. It hands out
// copies so callers always operate on a snapshot.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
	seq   int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func clone(doc *document.Document) *document.Document {
	cp := *doc
	return &cp
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	m.seq++
	// map iteration is unordered; the sequence number breaks CreatedAt
	// ties so list order is deterministic in tests
	cp := clone(doc)
	cp.CreatedAt = cp.CreatedAt.Add(time.Duration(m.seq) * time.Microsecond)
	m.store[doc.ID] = cp
	return doc.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (m *MemoryRepo) ListByWorkspace(ctx context.Context, workspaceID string, f ListFilter) ([]*document.Document, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []*document.Document{}
	for _, doc := range m.store {
		if doc.WorkspaceID != workspaceID {
			continue
		}
		if f.Status != "" && doc.Status != f.Status {
			continue
		}
		matched = append(matched, clone(doc))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []*document.Document{}, total, nil
	}
	matched = matched[f.Offset:]
	if len(matched) > f.Limit+1 {
		matched = matched[:f.Limit+1]
	}
	return matched, total, nil
}

func (m *MemoryRepo) ListByStatus(ctx context.Context, status document.Status, limit int) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []*document.Document{}
	for _, doc := range m.store {
		if doc.Status == status {
			matched = append(matched, clone(doc))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryRepo) UpdateStatus(ctx context.Context, id string, status document.Status, errMsg string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc.Status = status
	if errMsg != "" {
		doc.ErrorMessage = errMsg
	}
	doc.UpdatedAt = time.Now().UTC()
	return clone(doc), nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) Stats(ctx context.Context, workspaceID string) (*document.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &document.Stats{ByStatus: make(map[document.Status]int64)}
	for _, doc := range m.store {
		if doc.WorkspaceID != workspaceID {
			continue
		}
		stats.ByStatus[doc.Status]++
		stats.Total++
		stats.TotalSize += doc.Size
	}
	return stats, nil
}
