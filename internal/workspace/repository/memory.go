package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/knowledgecopilot/backend/internal/workspace"
)

// MemoryRepo is an in-memory Repository used by unit tests. It honors the
// same compare-and-swap contract as the Mongo implementation and hands out
// copies so callers always operate on a snapshot, never shared state.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*workspace.Workspace
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*workspace.Workspace)}
}

func clone(ws *workspace.Workspace) *workspace.Workspace {
	cp := *ws
	cp.Members = make([]workspace.Member, len(ws.Members))
	copy(cp.Members, ws.Members)
	return &cp
}

func (m *MemoryRepo) Create(ctx context.Context, ws *workspace.Workspace) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if ws.ID == "" {
		ws.ID = primitive.NewObjectID().Hex()
	}
	ws.Version = 1
	ws.CreatedAt = now
	ws.UpdatedAt = now
	m.store[ws.ID] = clone(ws)
	return ws.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(ws), nil
}

func (m *MemoryRepo) ListForUser(ctx context.Context, userID string) ([]*workspace.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*workspace.Workspace{}
	for _, ws := range m.store {
		if ws.Member(userID) != nil {
			out = append(out, clone(ws))
		}
	}
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, ws *workspace.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[ws.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != ws.Version {
		return ErrVersionConflict
	}
	next := clone(ws)
	next.Version = cur.Version + 1
	next.UpdatedAt = time.Now().UTC()
	m.store[ws.ID] = next
	return nil
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
