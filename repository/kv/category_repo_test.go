package kv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todos/domain"
	kvstore "github.com/fastygo/todos/internal/infrastructure/kv"
)

func TestCategoryCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	repo := f.store.Categories()

	work, err := repo.Create(ctx, domain.CategoryInput{Name: "  Work ", Color: "#ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "Work", work.Name)
	assert.Equal(t, "#ff0000", work.Color)
	assert.Equal(t, epoch, work.CreatedAt)

	home, err := repo.Create(ctx, domain.CategoryInput{Name: "Home"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategoryColor, home.Color)
	assert.NotEqual(t, work.ID, home.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{*work, *home}, all)
	assert.Equal(t,
		`[{"id":"id-1","name":"Work","color":"#ff0000","createdAt":"2025-03-01T09:00:00Z"},{"id":"id-2","name":"Home","color":"#808080","createdAt":"2025-03-01T09:00:00Z"}]`,
		f.raw(CategoriesKey))
}

func TestCategoryCreate_NameBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	repo := f.store.Categories()

	_, err := repo.Create(ctx, domain.CategoryInput{Name: strings.Repeat("n", domain.MaxCategoryNameLength)})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrEmptyCategoryName)

	_, err = repo.Create(ctx, domain.CategoryInput{Name: strings.Repeat("n", domain.MaxCategoryNameLength+1)})
	assert.ErrorIs(t, err, domain.ErrCategoryNameTooLong)

	all, _ := repo.List(ctx)
	assert.Len(t, all, 1)
}

func TestCategoryGetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	created, err := f.store.Categories().Create(ctx, domain.CategoryInput{Name: "Work"})
	require.NoError(t, err)

	got, err := f.store.Categories().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = f.store.Categories().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	_, err = f.store.Categories().GetByID(ctx, "")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	repo := f.store.Categories()
	created, err := repo.Create(ctx, domain.CategoryInput{Name: "Work", Color: "#111111"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, domain.CategoryPatch{Name: strPtr(" Office ")})
	require.NoError(t, err)
	assert.Equal(t, "Office", updated.Name)
	assert.Equal(t, "#111111", updated.Color)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	updated, err = repo.Update(ctx, created.ID, domain.CategoryPatch{Color: strPtr(" ")})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategoryColor, updated.Color)

	before := f.raw(CategoriesKey)
	_, err = repo.Update(ctx, created.ID, domain.CategoryPatch{Name: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrEmptyCategoryName)
	_, err = repo.Update(ctx, "missing", domain.CategoryPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Equal(t, before, f.raw(CategoriesKey))
}

func TestCategoryDelete_ClearsExactlyReferencingTodos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	categories := f.store.Categories()
	todos := f.store.Todos()

	work, err := categories.Create(ctx, domain.CategoryInput{Name: "Work"})
	require.NoError(t, err)
	home, err := categories.Create(ctx, domain.CategoryInput{Name: "Home"})
	require.NoError(t, err)

	inputs := []domain.TodoInput{
		{Title: "w1", CategoryID: work.ID},
		{Title: "h1", CategoryID: home.ID},
		{Title: "w2", CategoryID: work.ID},
		{Title: "none"},
		{Title: "w3", CategoryID: work.ID},
	}
	for _, in := range inputs {
		_, err := todos.Create(ctx, in)
		require.NoError(t, err)
	}
	before, err := todos.List(ctx)
	require.NoError(t, err)

	require.NoError(t, categories.Delete(ctx, work.ID))

	after, err := todos.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))

	cleared := 0
	for i := range after {
		if before[i].CategoryID == work.ID {
			cleared++
			assert.False(t, after[i].HasCategory())
			before[i].CategoryID = ""
		}
		assert.Equal(t, before[i], after[i], "only the reference changes")
	}
	assert.Equal(t, 3, cleared)

	remaining, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{*home}, remaining)
}

func TestCategoryDelete_NoReferencesSkipsTodoWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	created, err := f.store.Categories().Create(ctx, domain.CategoryInput{Name: "Work"})
	require.NoError(t, err)

	require.NoError(t, f.store.Categories().Delete(ctx, created.ID))
	_, ok := f.mem.Value(TodosKey)
	assert.False(t, ok)
	assert.Equal(t, "[]", f.raw(CategoriesKey))
}

func TestCategoryDelete_Missing(t *testing.T) {
	f := newFixture(t, 0)
	err := f.store.Categories().Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryDelete_TodoPersistFailureStillRemovesCategory(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemory()
	backend := failingKeys{Memory: mem, keys: map[string]bool{}}
	f := newFixtureWithOpener(t, func(context.Context) (kvstore.Backend, error) { return backend, nil }, 0)
	f.mem = mem

	work, err := f.store.Categories().Create(ctx, domain.CategoryInput{Name: "Work"})
	require.NoError(t, err)
	_, err = f.store.Todos().Create(ctx, domain.TodoInput{Title: "w1", CategoryID: work.ID})
	require.NoError(t, err)

	backend.keys[TodosKey] = true
	require.NoError(t, f.store.Categories().Delete(ctx, work.ID))

	remaining, err := f.store.Categories().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	todos, err := f.store.Todos().List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, work.ID, todos[0].CategoryID, "reference dangles")

	entries := f.logs.FilterMessage("failed to clear category references").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["dangling"])
}
