package memory

import (
	"context"
	"errors"
	"sync"

	"vet-clinic-records/internal/domain/pets"
)

type petRepo struct {
	mu    sync.RWMutex
	items []*pets.Pet
}

// NewPetRepo crea el store vacío. Se construye una vez por proceso y se inyecta.
func NewPetRepo() pets.Repository {
	return &petRepo{
		items: make([]*pets.Pet, 0),
	}
}

func (r *petRepo) Add(ctx context.Context, p *pets.Pet) error {
	if p == nil {
		return errors.New("pet required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, p)
	return nil
}

// FindByName devuelve la primera coincidencia exacta (case-sensitive).
func (r *petRepo) FindByName(ctx context.Context, name string) (*pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, pets.ErrNotFound
}

func (r *petRepo) FindByIndex(ctx context.Context, i int) (*pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 1 || i > len(r.items) {
		return nil, pets.ErrIndexOutOfRange
	}
	return r.items[i-1], nil
}

func (r *petRepo) List(ctx context.Context) ([]*pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*pets.Pet, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *petRepo) Len(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *petRepo) IsEmpty(ctx context.Context) bool {
	return r.Len(ctx) == 0
}

func (r *petRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make([]*pets.Pet, 0)
	return nil
}
