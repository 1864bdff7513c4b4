package action

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo keeps items in process memory. Used when no database is
// configured and in tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepo returns an empty repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[uuid.UUID]*Item)}
}

func (r *MemoryRepo) ListByCountry(_ context.Context, countryCode string) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Item{}
	for _, it := range r.items {
		if it.CountryCode == countryCode {
			out = append(out, it.Clone())
		}
	}
	SortItems(out)
	return out, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return it.Clone(), nil
}

// CreateBatch stores all items or none.
func (r *MemoryRepo) CreateBatch(_ context.Context, items []*Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		r.items[it.ID] = it.Clone()
	}
	return nil
}

func (r *MemoryRepo) Update(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[it.ID]; !ok {
		return ErrNotFound
	}
	r.items[it.ID] = it.Clone()
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepo) DeleteByCountry(_ context.Context, countryCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, it := range r.items {
		if it.CountryCode == countryCode {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}
