package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/todos/domain"
	kvstore "github.com/fastygo/todos/internal/infrastructure/kv"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	mem     *kvstore.Memory
	store   *Store
	logs    *observer.ObservedLogs
	alerts  []string
	clock   time.Time
	nextID  int
	adapter *kvstore.Adapter
}

func newFixture(t *testing.T, quota int64) *fixture {
	t.Helper()
	return newFixtureWithOpener(t, nil, quota)
}

func newFixtureWithOpener(t *testing.T, open kvstore.Opener, quota int64) *fixture {
	t.Helper()
	f := &fixture{mem: kvstore.NewMemory(), clock: epoch}
	if open == nil {
		open = f.mem.Opener()
	}
	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs
	logger := zap.New(core)
	f.adapter = kvstore.New(open, kvstore.Options{
		Driver:     "memory",
		QuotaBytes: quota,
		Alerter:    kvstore.AlertFunc(func(msg string) { f.alerts = append(f.alerts, msg) }),
		Logger:     logger,
	})
	f.store = NewStore(f.adapter,
		WithLogger(logger),
		WithClock(func() time.Time { return f.clock }),
		WithIDGenerator(func() string {
			f.nextID++
			return fmt.Sprintf("id-%d", f.nextID)
		}),
	)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) raw(key string) string {
	v, _ := f.mem.Value(key)
	return string(v)
}

// failingKeys rejects writes to the listed keys.
type failingKeys struct {
	*kvstore.Memory
	keys map[string]bool
}

func (b failingKeys) Put(ctx context.Context, key string, value []byte) error {
	if b.keys[key] {
		return errors.New("write rejected")
	}
	return b.Memory.Put(ctx, key, value)
}

func strPtr(s string) *string { return &s }

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(kvstore.New(kvstore.NewMemory().Opener(), kvstore.Options{}))
	require.NotNil(t, s.Adapter())

	created, err := s.Todos().Create(context.Background(), domain.TodoInput{Title: "x"})
	require.NoError(t, err)
	assert.Len(t, created.ID, 36, "uuid ids")
	assert.Equal(t, time.UTC, created.CreatedAt.Location())
}

func TestStore_TouchIsStrictlyIncreasing(t *testing.T) {
	f := newFixture(t, 0)

	prev := f.store.timestamp()
	next := f.store.touch(prev)
	assert.True(t, next.After(prev))

	f.advance(time.Minute)
	assert.Equal(t, epoch.Add(time.Minute), f.store.touch(prev))
}

func TestStore_ConcurrentWritersAreSerialized(t *testing.T) {
	s := NewStore(kvstore.New(kvstore.NewMemory().Opener(), kvstore.Options{}))
	todos := s.Todos()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := todos.Create(ctx, domain.TodoInput{Title: fmt.Sprintf("task %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := todos.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestStorageErrorClassification(t *testing.T) {
	assert.True(t, domain.IsDomainError(storageError(fmt.Errorf("x: %w", kvstore.ErrQuotaExceeded)), domain.ErrCodeQuotaExceeded))
	assert.True(t, domain.IsDomainError(storageError(kvstore.ErrUnavailable), domain.ErrCodeUnavailable))
	assert.True(t, domain.IsDomainError(storageError(errors.New("boom")), domain.ErrCodeInternal))
	assert.ErrorIs(t, storageError(kvstore.ErrUnavailable), kvstore.ErrUnavailable)
}

func TestStore_UnavailableBackend(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWithOpener(t, func(context.Context) (kvstore.Backend, error) {
		return nil, errors.New("private mode")
	}, 0)

	todos, err := f.store.Todos().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)

	_, err = f.store.Todos().Create(ctx, domain.TodoInput{Title: "Buy milk"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))

	_, err = f.store.Categories().Create(ctx, domain.CategoryInput{Name: "Work"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}

func TestStore_QuotaExceededAlertsUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 300)

	_, err := f.store.Todos().Create(ctx, domain.TodoInput{Title: "small"})
	require.NoError(t, err)
	before := f.raw(TodosKey)

	_, err = f.store.Todos().Create(ctx, domain.TodoInput{
		Title:       "big",
		Description: strings.Repeat("d", 400),
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeQuotaExceeded))
	assert.Equal(t, []string{kvstore.QuotaAlertMessage}, f.alerts)
	assert.Equal(t, before, f.raw(TodosKey))
}
