package category

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/repository"
)

type UseCase struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func New(categories repository.CategoryRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{categories: categories, logger: logger}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Category, error) {
	return uc.categories.List(ctx)
}

func (uc *UseCase) Get(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	return uc.categories.GetByID(ctx, id)
}

func (uc *UseCase) Add(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	category, err := uc.categories.Create(ctx, input)
	if err != nil {
		uc.logFailure("add category", "", err)
		return nil, err
	}
	uc.logger.Info("category added", zap.String("category_id", string(category.ID)))
	return category, nil
}

func (uc *UseCase) Update(ctx context.Context, id domain.CategoryID, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := uc.categories.Update(ctx, id, patch)
	if err != nil {
		uc.logFailure("update category", id, err)
		return nil, err
	}
	return category, nil
}

// Delete removes the category; todos referencing it become uncategorized.
func (uc *UseCase) Delete(ctx context.Context, id domain.CategoryID) error {
	if err := uc.categories.Delete(ctx, id); err != nil {
		uc.logFailure("delete category", id, err)
		return err
	}
	uc.logger.Info("category deleted", zap.String("category_id", string(id)))
	return nil
}

// Resolve returns the category todo points at, or nil when it has none or the
// reference dangles.
func (uc *UseCase) Resolve(ctx context.Context, todo domain.Todo) (*domain.Category, error) {
	if !todo.HasCategory() {
		return nil, nil
	}
	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FindCategory(categories, todo.CategoryID), nil
}

func (uc *UseCase) logFailure(op string, id domain.CategoryID, err error) {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("category_id", string(id)))
	}
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalid, domain.ErrCodeNotFound:
		uc.logger.Debug("category operation rejected", fields...)
	default:
		uc.logger.Error("category operation failed", fields...)
	}
}
