package transport

import (
	"strings"

	"github.com/fastygo/todos/domain"
)

// TodoRequest is the body of POST /api/v1/todos.
type TodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	CategoryID  string `json:"categoryId"`
	Priority    string `json:"priority"`
}

// ToInput validates the loosely typed fields.
func (r TodoRequest) ToInput() (domain.TodoInput, error) {
	deadline, err := domain.ParseDeadline(r.Deadline)
	if err != nil {
		return domain.TodoInput{}, err
	}
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.TodoInput{}, err
	}
	return domain.TodoInput{
		Title:       r.Title,
		Description: r.Description,
		Deadline:    deadline,
		CategoryID:  domain.CategoryID(strings.TrimSpace(r.CategoryID)),
		Priority:    priority,
	}, nil
}

// TodoPatchRequest is the body of PATCH /api/v1/todos/{id}. Omitted fields
// are left alone; an empty deadline or categoryId clears the field.
type TodoPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
	Completed   *bool   `json:"completed"`
	CategoryID  *string `json:"categoryId"`
	Priority    *string `json:"priority"`
}

func (r TodoPatchRequest) ToPatch() (domain.TodoPatch, error) {
	patch := domain.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.Deadline != nil {
		deadline, err := domain.ParseDeadline(*r.Deadline)
		if err != nil {
			return domain.TodoPatch{}, err
		}
		patch.Deadline = deadline
		patch.ClearDeadline = deadline == nil
	}
	if r.CategoryID != nil {
		id := domain.CategoryID(strings.TrimSpace(*r.CategoryID))
		patch.CategoryID = &id
	}
	if r.Priority != nil {
		priority, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return domain.TodoPatch{}, err
		}
		patch.Priority = &priority
	}
	return patch, nil
}

// CategoryRequest is the body of POST /api/v1/categories.
type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (r CategoryRequest) ToInput() domain.CategoryInput {
	return domain.CategoryInput{Name: r.Name, Color: r.Color}
}

// CategoryPatchRequest is the body of PATCH /api/v1/categories/{id}.
type CategoryPatchRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (r CategoryPatchRequest) ToPatch() domain.CategoryPatch {
	return domain.CategoryPatch{Name: r.Name, Color: r.Color}
}
