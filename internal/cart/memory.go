package cart

import (
	"context"
	"sync"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// MemoryStore is a process-local Service. Adding an entry that is already in
// the cart increases its quantity.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.CartEntry)}
}

// AddToCart implements Service.
func (s *MemoryStore) AddToCart(_ context.Context, owner string, entry domain.CartEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.carts[owner]
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i].Quantity += entry.Quantity
			return nil
		}
	}
	s.carts[owner] = append(entries, entry)
	return nil
}

// Entries implements Service.
func (s *MemoryStore) Entries(_ context.Context, owner string) ([]domain.CartEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartEntry, len(s.carts[owner]))
	copy(out, s.carts[owner])
	return out, nil
}

// Clear implements Service.
func (s *MemoryStore) Clear(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, owner)
	return nil
}
