package kv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
)

type todoRepository struct {
	store *Store
}

func (r *todoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.loadTodos(ctx), nil
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todos := r.store.loadTodos(ctx)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return nil, domain.ErrTodoNotFound
	}
	todo := todos[idx]
	return &todo, nil
}

func (r *todoRepository) Create(ctx context.Context, input domain.TodoInput) (*domain.Todo, error) {
	title, err := domain.NormalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}
	priority := input.Priority.OrDefault()
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidPriority, input.Priority)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.timestamp()
	todo := domain.Todo{
		ID:          r.store.newID(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Deadline:    utcPtr(input.Deadline),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
		CategoryID:  input.CategoryID,
		Priority:    priority,
	}

	todos := append(r.store.loadTodos(ctx), todo)
	if err := r.store.saveTodos(ctx, todos); err != nil {
		return nil, err
	}
	r.store.logger.Debug("todo created", zap.String("todo_id", todo.ID))
	return &todo, nil
}

func (r *todoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.update(ctx, id, patch)
}

// update applies patch with the store lock held.
func (r *todoRepository) update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	todos := r.store.loadTodos(ctx)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return nil, domain.ErrTodoNotFound
	}

	todo := todos[idx]
	if patch.Title != nil {
		title, err := domain.NormalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		todo.Title = title
	}
	if patch.Description != nil {
		todo.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Deadline != nil {
		todo.Deadline = utcPtr(patch.Deadline)
	}
	if patch.ClearDeadline {
		todo.Deadline = nil
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if patch.CategoryID != nil {
		todo.CategoryID = *patch.CategoryID
	}
	if patch.Priority != nil {
		priority := patch.Priority.OrDefault()
		if !priority.IsValid() {
			return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidPriority, *patch.Priority)
		}
		todo.Priority = priority
	}
	todo.UpdatedAt = r.store.touch(todo.UpdatedAt)

	todos[idx] = todo
	if err := r.store.saveTodos(ctx, todos); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todos := r.store.loadTodos(ctx)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return domain.ErrTodoNotFound
	}
	remaining := append(todos[:idx:idx], todos[idx+1:]...)
	return r.store.saveTodos(ctx, remaining)
}

func (r *todoRepository) ToggleCompleted(ctx context.Context, id string) (*domain.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todos := r.store.loadTodos(ctx)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return nil, domain.ErrTodoNotFound
	}
	completed := !todos[idx].Completed
	return r.update(ctx, id, domain.TodoPatch{Completed: &completed})
}

func (r *todoRepository) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.saveTodos(ctx, []domain.Todo{})
}

func indexOfTodo(todos []domain.Todo, id string) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
