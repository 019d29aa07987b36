package todo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fastygo/todos/domain"
)

// StatusFilter narrows a listing by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// Uncategorized selects todos without a resolvable category.
const Uncategorized = "uncategorized"

// ParseStatusFilter parses user input. Empty input means all.
func ParseStatusFilter(value string) (StatusFilter, error) {
	switch s := StatusFilter(strings.ToLower(strings.TrimSpace(value))); s {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusCompleted:
		return s, nil
	default:
		return "", domain.WrapError(domain.ErrCodeInvalid, "status must be one of all, active, completed", fmt.Errorf("got %q", value))
	}
}

// ListOptions controls filtering and ordering of a listing.
type ListOptions struct {
	Status StatusFilter
	// Category is empty for all todos, Uncategorized, or a category id.
	Category string
	// SortByPriority orders high before medium before low, keeping insertion
	// order within a level.
	SortByPriority bool
}

// Stats counts todos by completion state.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// ComputeStats counts over the whole collection.
func ComputeStats(todos []domain.Todo) Stats {
	stats := Stats{Total: len(todos)}
	for i := range todos {
		if todos[i].Completed {
			stats.Completed++
		} else {
			stats.Active++
		}
	}
	return stats
}

// Filter applies opts to todos without modifying them. categories is used to
// treat references to deleted categories as uncategorized.
func Filter(todos []domain.Todo, categories []domain.Category, opts ListOptions) []domain.Todo {
	out := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if !matchesStatus(t, opts.Status) || !matchesCategory(t, categories, opts.Category) {
			continue
		}
		out = append(out, t)
	}
	if opts.SortByPriority {
		slices.SortStableFunc(out, func(a, b domain.Todo) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	}
	return out
}

func matchesStatus(t domain.Todo, status StatusFilter) bool {
	switch status {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

func matchesCategory(t domain.Todo, categories []domain.Category, category string) bool {
	switch category {
	case "":
		return true
	case Uncategorized:
		return domain.FindCategory(categories, t.CategoryID) == nil
	default:
		return t.CategoryID == domain.CategoryID(category)
	}
}
