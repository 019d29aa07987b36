package repository

import (
	"context"

	"github.com/fastygo/todos/domain"
)

// TodoRepository persists the todo collection. Every mutation rewrites the
// whole collection; implementations serialize writers within the process.
type TodoRepository interface {
	// List returns all todos in insertion order.
	List(ctx context.Context) ([]domain.Todo, error)
	GetByID(ctx context.Context, id string) (*domain.Todo, error)
	Create(ctx context.Context, input domain.TodoInput) (*domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id string) error
	ToggleCompleted(ctx context.Context, id string) (*domain.Todo, error)
	// Clear removes every todo.
	Clear(ctx context.Context) error
}
