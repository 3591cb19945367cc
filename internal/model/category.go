package model

import (
	"regexp"
	"strings"
	"time"
)

// DefaultCategoryColor is used when a category is created without a color
const DefaultCategoryColor = "#4ECDC4"

// Category is display metadata for grouping ideas. Ideas reference
// categories by value only; nothing enforces the link.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DefaultCategories returns the categories seeded on first start
func DefaultCategories() []Category {
	return []Category{
		{ID: "technology", Name: "Technology", Color: "#4ECDC4"},
		{ID: "business", Name: "Business", Color: "#45B7D1"},
		{ID: "personal", Name: "Personal", Color: "#96CEB4"},
		{ID: "creative", Name: "Creative", Color: "#FFEAA7"},
		{ID: "education", Name: "Education", Color: "#DDA0DD"},
		{ID: "health", Name: "Health", Color: "#98D8C8"},
	}
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether s is a #RRGGBB hex color
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// CategoryID derives a category id from its display name,
// e.g. "Side Projects" becomes "side-projects"
func CategoryID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
