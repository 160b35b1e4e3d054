package pets

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("pet not found")
	ErrIndexOutOfRange = errors.New("pet number out of range")
)

// Repository es el record store: secuencia ordenada por inserción.
// Add no verifica unicidad de nombre; eso lo hace quien llama.
type Repository interface {
	Add(ctx context.Context, p *Pet) error
	FindByName(ctx context.Context, name string) (*Pet, error)
	// FindByIndex recibe un índice 1-based (el que ve el operador).
	FindByIndex(ctx context.Context, i int) (*Pet, error)
	List(ctx context.Context) ([]*Pet, error)
	Len(ctx context.Context) int
	IsEmpty(ctx context.Context) bool
	Clear(ctx context.Context) error
}
