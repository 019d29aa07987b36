package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxTitleLength is the maximum number of characters in a trimmed todo title.
	MaxTitleLength = 100

	// MaxCategoryNameLength is the maximum number of characters in a trimmed category name.
	MaxCategoryNameLength = 50
)

// NormalizeTitle trims title and checks its length bounds.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return "", fmt.Errorf("%w: %d > %d", ErrTitleTooLong, n, MaxTitleLength)
	}
	return title, nil
}

// NormalizeCategoryName trims name and checks its length bounds.
func NormalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategoryName
	}
	if n := utf8.RuneCountInString(name); n > MaxCategoryNameLength {
		return "", fmt.Errorf("%w: %d > %d", ErrCategoryNameTooLong, n, MaxCategoryNameLength)
	}
	return name, nil
}

// NormalizeColor trims color and substitutes the default when blank.
func NormalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return DefaultCategoryColor
	}
	return color
}

// ParsePriority parses user input into a Priority. Empty input yields the default.
func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if p == "" {
		return DefaultPriority, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidPriority, value)
	}
	return p, nil
}

// ParseDeadline accepts an RFC 3339 instant or a calendar date (YYYY-MM-DD,
// read as midnight UTC). Blank input yields nil.
func ParseDeadline(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDeadline, value)
}
