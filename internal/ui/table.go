// Package ui renders todos and categories for the terminal.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// Table collects rows and renders them aligned under a header.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable returns a table with preallocated rows.
func NewTable(headers []string, capacity int) *Table {
	return &Table{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row. Cells may carry ANSI styling.
func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			b.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			pad := 0
			if i < len(widths) {
				pad = widths[i] - lipgloss.Width(cell)
			}
			b.WriteString(strings.Repeat(" ", pad+2))
		}
		b.WriteByte('\n')
	}

	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = headerStyle.Render(h)
	}
	writeRow(header)
	for _, row := range t.rows {
		writeRow(row)
	}
	return b.String()
}

// Truncate limits a cell to a readable width and flattens line breaks.
func Truncate(value string) string {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
	runes := []rune(value)
	if len(runes) <= tableCellMaxWidth {
		return value
	}
	return string(runes[:tableCellMaxWidth-len(tableCellEllipsis)]) + tableCellEllipsis
}
