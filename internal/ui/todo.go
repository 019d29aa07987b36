package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fastygo/todos/domain"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true)

	priorityStyles = map[domain.Priority]lipgloss.Style{
		domain.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		domain.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		domain.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

// Priority renders p in its color.
func Priority(p domain.Priority) string {
	p = p.OrDefault()
	if style, ok := priorityStyles[p]; ok {
		return style.Render(string(p))
	}
	return string(p)
}

// Deadline formats an optional deadline; dates at midnight UTC print without a clock.
func Deadline(t *time.Time) string {
	if t == nil {
		return mutedStyle.Render("-")
	}
	u := t.UTC()
	if u.Equal(u.Truncate(24 * time.Hour)) {
		return u.Format(time.DateOnly)
	}
	return u.Format(time.RFC3339)
}

// CategoryLabel renders the category name of todo, or "-" when it has none or
// it no longer resolves.
func CategoryLabel(todo domain.Todo, categories []domain.Category) string {
	c := domain.FindCategory(categories, todo.CategoryID)
	if c == nil {
		return mutedStyle.Render("-")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Name)
}

// TodoTable renders todos as a table.
func TodoTable(todos []domain.Todo, categories []domain.Category) string {
	t := NewTable([]string{"ID", "DONE", "PRIORITY", "TITLE", "CATEGORY", "DEADLINE"}, len(todos))
	for _, todo := range todos {
		done := "[ ]"
		title := Truncate(todo.Title)
		if todo.Completed {
			done = "[x]"
			title = doneStyle.Render(title)
		}
		t.AddRow(todo.ID, done, Priority(todo.Priority), title, CategoryLabel(todo, categories), Deadline(todo.Deadline))
	}
	return t.String()
}

// TodoDetail renders every field of todo, one per line.
func TodoDetail(todo domain.Todo, category *domain.Category) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	line("id", todo.ID)
	line("title", todo.Title)
	if todo.Description != "" {
		line("description", todo.Description)
	}
	line("completed", fmt.Sprintf("%t", todo.Completed))
	line("priority", Priority(todo.Priority))
	if category != nil {
		line("category", category.Name)
	} else {
		line("category", mutedStyle.Render("-"))
	}
	line("deadline", Deadline(todo.Deadline))
	line("created", todo.CreatedAt.UTC().Format(time.RFC3339))
	line("updated", todo.UpdatedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// CategoryTable renders categories as a table.
func CategoryTable(categories []domain.Category) string {
	t := NewTable([]string{"ID", "NAME", "COLOR"}, len(categories))
	for _, c := range categories {
		t.AddRow(string(c.ID), Truncate(c.Name), lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Color))
	}
	return t.String()
}

// Stats renders the counts on one line.
func Stats(s todoUC.Stats) string {
	return fmt.Sprintf("total: %d  active: %d  completed: %d\n", s.Total, s.Active, s.Completed)
}
