package cart

import (
	"context"
	"sync"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

// MemoryStore keeps carts in process memory. Suited to tests and
// single-instance development runs.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.CartItem)}
}

func (m *MemoryStore) Load(_ context.Context, buyerID string) ([]domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items, ok := m.carts[buyerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, buyerID string, items []domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]domain.CartItem, len(items))
	copy(stored, items)
	m.carts[buyerID] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, buyerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.carts[buyerID]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, buyerID)
	return nil
}

// Has reports whether a persisted record exists for the buyer.
func (m *MemoryStore) Has(buyerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.carts[buyerID]
	return ok
}
