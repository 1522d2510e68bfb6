package repo

import (
	"context"
	"sync"
)

// TokenStore persists the session token of each chat user.
type TokenStore interface {
	GetToken(ctx context.Context, userID int64) (string, error)
	SetToken(ctx context.Context, userID int64, token string) error
	ClearToken(ctx context.Context, userID int64) error
}

// MemoryTokenStore keeps tokens in process memory.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[int64]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[int64]string)}
}

func (m *MemoryTokenStore) GetToken(_ context.Context, userID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[userID], nil
}

func (m *MemoryTokenStore) SetToken(_ context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *MemoryTokenStore) ClearToken(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}
