package repository

import (
	"context"

	"github.com/fastygo/todos/domain"
)

// CategoryRepository persists the category collection.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id domain.CategoryID, patch domain.CategoryPatch) (*domain.Category, error)
	// Delete removes the category and clears the reference on every todo
	// pointing at it.
	Delete(ctx context.Context, id domain.CategoryID) error
}
