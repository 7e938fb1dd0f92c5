package users

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/knowledgecopilot/backend/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository used in tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func (m *MemoryUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

func (m *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (m *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (m *MemoryUserRepository) Update(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return nil, nil
	}
	cur.UserName = u.UserName
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.AvatarURL = u.AvatarURL
	cur.UpdatedAt = time.Now().UTC()
	return cloneUser(cur), nil
}

func (m *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}
