package domain

import "time"

// Priority is the urgency level attached to a todo.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"

	// DefaultPriority is applied when a todo is created without one and to
	// records persisted before priorities existed.
	DefaultPriority = PriorityMedium
)

// Priorities returns the valid priorities, most urgent first.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting: high < medium < low. Unknown values
// rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// OrDefault returns p, or DefaultPriority when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return DefaultPriority
	}
	return p
}

// CategoryID is a weak reference to a Category. The zero value means the todo
// is uncategorized. It is never dereferenced implicitly; callers resolve it
// against the category collection.
type CategoryID string

// IsZero reports whether the reference is absent.
func (id CategoryID) IsZero() bool {
	return id == ""
}

// Todo represents a single task.
//
// Field order and JSON names match the persisted layout of the "todos" key.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CategoryID  CategoryID `json:"categoryId,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
}

// IsCompleted reports whether the todo is done.
func (t *Todo) IsCompleted() bool {
	return t != nil && t.Completed
}

// HasCategory reports whether the todo references a category.
func (t *Todo) HasCategory() bool {
	return t != nil && !t.CategoryID.IsZero()
}

// TodoInput carries the caller-supplied fields of a new todo.
type TodoInput struct {
	Title       string
	Description string
	Deadline    *time.Time
	CategoryID  CategoryID
	Priority    Priority
}

// TodoPatch describes a partial update. Nil pointers leave the field untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Completed   *bool
	CategoryID  *CategoryID
	Priority    *Priority

	// ClearDeadline removes the deadline. It wins over Deadline.
	ClearDeadline bool
}

// IsEmpty reports whether the patch supplies no field at all.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Deadline == nil &&
		p.Completed == nil && p.CategoryID == nil && p.Priority == nil && !p.ClearDeadline
}
