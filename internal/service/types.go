package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ideabox/internal/model"
)

// LegacyTags accepts tags either as a comma separated string or as a JSON
// array of strings, the two shapes older clients stored
type LegacyTags string

// UnmarshalJSON implements json.Unmarshaler
func (t *LegacyTags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	if b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*t = LegacyTags(strings.Join(list, ", "))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = LegacyTags(s)
	return nil
}

// LegacyIdea is the shape ideas had in browser-local storage. Only the
// editable fields are carried over; id, status and timestamps are assigned
// fresh on import. The legacy id only labels the record in errors.
type LegacyIdea struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Tags        LegacyTags `json:"tags"`
}

// label names the i-th record of an import batch
func (l LegacyIdea) label(i int) string {
	if l.ID == "" {
		return fmt.Sprintf("record %d", i)
	}
	return fmt.Sprintf("record %d (legacy id %q)", i, l.ID)
}

// DefaultLegacyPriority is used for legacy records that predate priorities
const DefaultLegacyPriority = "medium"

// toInput maps a legacy record to a canonical create payload
func (l LegacyIdea) toInput() model.IdeaInput {
	in := model.IdeaInput{
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		Priority:    l.Priority,
		Tags:        string(l.Tags),
		Status:      model.StatusActive,
	}
	in.Normalize()
	if in.Priority == "" {
		in.Priority = DefaultLegacyPriority
	}
	return in
}

// DecodeLegacyIdeas parses a JSON array of legacy records. Anything that is
// not an array is a validation error.
func DecodeLegacyIdeas(raw []byte) ([]LegacyIdea, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, model.NewValidationError("migration data must be a list of ideas")
	}

	var records []LegacyIdea
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, model.NewValidationError(fmt.Sprintf("invalid migration data: %v", err))
	}
	return records, nil
}

// DateRange is an optional, inclusive time window. Either bound may be nil.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Contains reports whether t lies within the range. A zero t is outside
// any range that has a bound.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// ParseDateRange builds a DateRange from two optional strings in RFC 3339
// or YYYY-MM-DD form. A date-only end covers the whole day.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange

	if start = strings.TrimSpace(start); start != "" {
		t, _, err := parseDateTime(start)
		if err != nil {
			return DateRange{}, model.NewValidationError("invalid start date: use RFC 3339 or YYYY-MM-DD")
		}
		r.Start = &t
	}

	if end = strings.TrimSpace(end); end != "" {
		t, dateOnly, err := parseDateTime(end)
		if err != nil {
			return DateRange{}, model.NewValidationError("invalid end date: use RFC 3339 or YYYY-MM-DD")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.End = &t
	}

	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return DateRange{}, model.NewValidationError("end date is before start date")
	}
	return r, nil
}

// UnmarshalJSON accepts {"start": "...", "end": "..."} with either date form
func (r *DateRange) UnmarshalJSON(b []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	parsed, err := ParseDateRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func parseDateTime(s string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("unable to parse date %q", s)
}
