package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an idea
type Status string

const (
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus converts a string to a Status, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewValidationError(fmt.Sprintf("invalid status %q: must be one of active, archived, completed", s))
	}
	return st, nil
}

// AllCategories is the category filter value that disables category filtering
const AllCategories = "all"

// CopySuffix is appended to the title of a duplicated idea
const CopySuffix = " (Copy)"

// Idea represents a single captured idea
type Idea struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Priority    string    `json:"priority" db:"priority"`
	Tags        string    `json:"tags" db:"tags"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TagList returns the idea's tags split on commas and trimmed
func (i *Idea) TagList() []string {
	return SplitTags(i.Tags)
}

// Input returns the editable fields of the idea
func (i *Idea) Input() IdeaInput {
	return IdeaInput{
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		Priority:    i.Priority,
		Tags:        i.Tags,
		Status:      i.Status,
	}
}

// IdeaInput carries the fields accepted when creating or updating an idea.
// ID is only honoured on create.
type IdeaInput struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Tags        string `json:"tags"`
	Status      Status `json:"status,omitempty"`
}

// Normalize trims free text fields and lower-cases the status
func (in *IdeaInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Priority = strings.TrimSpace(in.Priority)
	in.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
}

// Validate checks the required fields. An empty status is allowed and
// means active.
func (in *IdeaInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewValidationError("category is required")
	}
	if strings.TrimSpace(in.Priority) == "" {
		return NewValidationError("priority is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return NewValidationError(fmt.Sprintf("invalid status %q: must be one of active, archived, completed", in.Status))
	}
	return nil
}

// Filters narrows FindAll. Zero values disable the matching predicate.
type Filters struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status   Status `json:"status,omitempty" yaml:"status,omitempty"`
	Keyword  string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// DeleteResult acknowledges a hard delete
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// CategoryCount is one row of the per-category aggregate
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}

// PriorityCount is one row of the per-priority aggregate
type PriorityCount struct {
	Priority string `json:"priority" db:"priority"`
	Count    int    `json:"count" db:"count"`
}

// Stats aggregates active ideas
type Stats struct {
	Total       int             `json:"total"`
	ByCategory  []CategoryCount `json:"byCategory"`
	ByPriority  []PriorityCount `json:"byPriority"`
	RecentCount int             `json:"recentCount"`
}

// SplitTags splits a comma separated tag string, trimming whitespace and
// dropping empty fragments. Order and duplicates are preserved.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
