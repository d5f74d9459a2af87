package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/abgdnv/marketplace/internal/product/errors"
)

// MemoryStore implements ProductStore using an in-memory map.
// Its content does not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
}

var _ ProductStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]Product),
	}
}

func (s *MemoryStore) ContainsKey(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.products[id]
	return ok, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Insert(_ context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = product
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	delete(s.products, id)
	return &p, nil
}

func (s *MemoryStore) Values(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Product) int {
		return strings.Compare(a.ID, b.ID)
	})
	return list, nil
}
