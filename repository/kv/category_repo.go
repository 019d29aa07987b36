package kv

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
)

type categoryRepository struct {
	store *Store
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.loadCategories(ctx), nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	found := domain.FindCategory(r.store.loadCategories(ctx), id)
	if found == nil {
		return nil, domain.ErrCategoryNotFound
	}
	category := *found
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	name, err := domain.NormalizeCategoryName(input.Name)
	if err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	category := domain.Category{
		ID:        domain.CategoryID(r.store.newID()),
		Name:      name,
		Color:     domain.NormalizeColor(input.Color),
		CreatedAt: r.store.timestamp(),
	}
	categories := append(r.store.loadCategories(ctx), category)
	if err := r.store.saveCategories(ctx, categories); err != nil {
		return nil, err
	}
	r.store.logger.Debug("category created", zap.String("category_id", string(category.ID)))
	return &category, nil
}

func (r *categoryRepository) Update(ctx context.Context, id domain.CategoryID, patch domain.CategoryPatch) (*domain.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	categories := r.store.loadCategories(ctx)
	idx := indexOfCategory(categories, id)
	if idx < 0 {
		return nil, domain.ErrCategoryNotFound
	}

	category := categories[idx]
	if patch.Name != nil {
		name, err := domain.NormalizeCategoryName(*patch.Name)
		if err != nil {
			return nil, err
		}
		category.Name = name
	}
	if patch.Color != nil {
		category.Color = domain.NormalizeColor(*patch.Color)
	}

	categories[idx] = category
	if err := r.store.saveCategories(ctx, categories); err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete clears the reference on every todo pointing at id, then removes the
// category. A failure to persist the todos does not stop the removal; the
// remaining references dangle and read as uncategorized.
func (r *categoryRepository) Delete(ctx context.Context, id domain.CategoryID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	categories := r.store.loadCategories(ctx)
	idx := indexOfCategory(categories, id)
	if idx < 0 {
		return domain.ErrCategoryNotFound
	}

	todos := r.store.loadTodos(ctx)
	cleared := 0
	for i := range todos {
		if todos[i].CategoryID == id {
			todos[i].CategoryID = ""
			cleared++
		}
	}
	if cleared > 0 {
		if err := r.store.saveTodos(ctx, todos); err != nil {
			r.store.logger.Warn("failed to clear category references",
				zap.String("category_id", string(id)),
				zap.Int("dangling", cleared),
				zap.Error(err),
			)
		}
	}

	remaining := append(categories[:idx:idx], categories[idx+1:]...)
	return r.store.saveCategories(ctx, remaining)
}

func indexOfCategory(categories []domain.Category, id domain.CategoryID) int {
	for i := range categories {
		if categories[i].ID == id {
			return i
		}
	}
	return -1
}
