// Package kv implements the repositories on top of the key-value adapter.
// Each collection lives under one key as a JSON array and every mutation is a
// load, modify, save cycle of the whole array.
package kv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	kvstore "github.com/fastygo/todos/internal/infrastructure/kv"
	"github.com/fastygo/todos/repository"
)

// Persisted keys.
const (
	TodosKey      = "todos"
	CategoriesKey = "categories"
	VersionKey    = "app_version"
)

// Store owns the adapter and the writer lock shared by both repositories.
type Store struct {
	mu      sync.Mutex
	adapter *kvstore.Adapter
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a Store persisting through adapter.
func NewStore(adapter *kvstore.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Adapter exposes the underlying adapter.
func (s *Store) Adapter() *kvstore.Adapter {
	return s.adapter
}

// Todos returns the todo repository.
func (s *Store) Todos() repository.TodoRepository {
	return &todoRepository{store: s}
}

// Categories returns the category repository.
func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepository{store: s}
}

// timestamp returns the current instant in UTC without a monotonic reading,
// so values survive a JSON round trip unchanged.
func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// touch returns a timestamp strictly after prev.
func (s *Store) touch(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *Store) loadTodos(ctx context.Context) []domain.Todo {
	todos := kvstore.Load[domain.Todo](ctx, s.adapter, TodosKey)
	for i := range todos {
		todos[i].Priority = todos[i].Priority.OrDefault()
	}
	return todos
}

func (s *Store) saveTodos(ctx context.Context, todos []domain.Todo) error {
	if err := kvstore.Save(ctx, s.adapter, TodosKey, todos); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *Store) loadCategories(ctx context.Context) []domain.Category {
	return kvstore.Load[domain.Category](ctx, s.adapter, CategoriesKey)
}

func (s *Store) saveCategories(ctx context.Context, categories []domain.Category) error {
	if err := kvstore.Save(ctx, s.adapter, CategoriesKey, categories); err != nil {
		return storageError(err)
	}
	return nil
}

func storageError(err error) error {
	switch {
	case errors.Is(err, kvstore.ErrQuotaExceeded):
		return domain.WrapError(domain.ErrCodeQuotaExceeded, "storage quota exceeded", err)
	case errors.Is(err, kvstore.ErrUnavailable):
		return domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", err)
	default:
		return domain.WrapError(domain.ErrCodeInternal, "failed to persist changes", err)
	}
}
