package domain

import "time"

// DefaultCategoryColor is used when a category is saved without a color.
const DefaultCategoryColor = "#808080"

// Category is a user-defined label with a display color.
type Category struct {
	ID        CategoryID `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CategoryInput carries the caller-supplied fields of a new category.
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryPatch describes a partial update. Nil pointers leave the field untouched.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// FindCategory returns the category with the given id, or nil.
func FindCategory(categories []Category, id CategoryID) *Category {
	if id.IsZero() {
		return nil
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}
