package todo

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/repository"
)

// ListResult is a filtered listing plus stats over the unfiltered collection.
type ListResult struct {
	Todos []domain.Todo
	Stats Stats
}

type UseCase struct {
	todos      repository.TodoRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func New(todos repository.TodoRepository, categories repository.CategoryRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:      todos,
		categories: categories,
		logger:     logger,
	}
}

// List reads the collection fresh on every call.
func (uc *UseCase) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	todos, err := uc.todos.List(ctx)
	if err != nil {
		return ListResult{}, err
	}

	var categories []domain.Category
	if opts.Category == Uncategorized {
		if categories, err = uc.categories.List(ctx); err != nil {
			return ListResult{}, err
		}
	}

	return ListResult{
		Todos: Filter(todos, categories, opts),
		Stats: ComputeStats(todos),
	}, nil
}

func (uc *UseCase) Stats(ctx context.Context) (Stats, error) {
	todos, err := uc.todos.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(todos), nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Todo, error) {
	return uc.todos.GetByID(ctx, id)
}

func (uc *UseCase) Add(ctx context.Context, input domain.TodoInput) (*domain.Todo, error) {
	todo, err := uc.todos.Create(ctx, input)
	if err != nil {
		uc.logFailure("add todo", "", err)
		return nil, err
	}
	uc.logger.Info("todo added", zap.String("todo_id", todo.ID))
	return todo, nil
}

func (uc *UseCase) Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	todo, err := uc.todos.Update(ctx, id, patch)
	if err != nil {
		uc.logFailure("update todo", id, err)
		return nil, err
	}
	return todo, nil
}

func (uc *UseCase) Toggle(ctx context.Context, id string) (*domain.Todo, error) {
	todo, err := uc.todos.ToggleCompleted(ctx, id)
	if err != nil {
		uc.logFailure("toggle todo", id, err)
		return nil, err
	}
	return todo, nil
}

func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if err := uc.todos.Delete(ctx, id); err != nil {
		uc.logFailure("delete todo", id, err)
		return err
	}
	uc.logger.Info("todo deleted", zap.String("todo_id", id))
	return nil
}

// Clear removes every todo.
func (uc *UseCase) Clear(ctx context.Context) error {
	if err := uc.todos.Clear(ctx); err != nil {
		uc.logFailure("clear todos", "", err)
		return err
	}
	uc.logger.Warn("all todos cleared")
	return nil
}

// logFailure logs storage problems loudly and caller mistakes quietly.
func (uc *UseCase) logFailure(op, id string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("todo_id", id))
	}
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalid, domain.ErrCodeNotFound:
		uc.logger.Debug("todo operation rejected", fields...)
	default:
		uc.logger.Error("todo operation failed", fields...)
	}
}
