package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todos/domain"
)

func ids(todos []domain.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.ID)
	}
	return out
}

func sample() ([]domain.Todo, []domain.Category) {
	categories := []domain.Category{{ID: "work", Name: "Work"}}
	todos := []domain.Todo{
		{ID: "1", Priority: domain.PriorityLow, CategoryID: "work"},
		{ID: "2", Priority: domain.PriorityHigh, Completed: true},
		{ID: "3", Priority: domain.PriorityMedium, CategoryID: "gone"},
		{ID: "4", Priority: domain.PriorityHigh, CategoryID: "work"},
		{ID: "5", Priority: domain.PriorityLow, Completed: true, CategoryID: "work"},
	}
	return todos, categories
}

func TestFilter(t *testing.T) {
	todos, categories := sample()

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "all", opts: ListOptions{}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "active", opts: ListOptions{Status: StatusActive}, want: []string{"1", "3", "4"}},
		{name: "completed", opts: ListOptions{Status: StatusCompleted}, want: []string{"2", "5"}},
		{name: "category", opts: ListOptions{Category: "work"}, want: []string{"1", "4", "5"}},
		{name: "uncategorized includes dangling", opts: ListOptions{Category: Uncategorized}, want: []string{"2", "3"}},
		{name: "active in category", opts: ListOptions{Status: StatusActive, Category: "work"}, want: []string{"1", "4"}},
		{name: "priority sort is stable", opts: ListOptions{SortByPriority: true}, want: []string{"2", "4", "3", "1", "5"}},
		{name: "unknown category", opts: ListOptions{Category: "nope"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(todos, categories, tt.opts)))
		})
	}

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(todos), "input is not reordered")
}

func TestComputeStats(t *testing.T) {
	todos, _ := sample()
	assert.Equal(t, Stats{Total: 5, Active: 3, Completed: 2}, ComputeStats(todos))
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestParseStatusFilter(t *testing.T) {
	for in, want := range map[string]StatusFilter{
		"":          StatusAll,
		"all":       StatusAll,
		" Active ":  StatusActive,
		"COMPLETED": StatusCompleted,
	} {
		got, err := ParseStatusFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatusFilter("done")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
