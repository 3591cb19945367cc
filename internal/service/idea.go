package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// Repository is the subset of the idea repository the service composes
type Repository interface {
	Create(ctx context.Context, in model.IdeaInput) (*model.Idea, error)
	FindAll(ctx context.Context, filters model.Filters) ([]model.Idea, error)
	FindByID(ctx context.Context, id string) (*model.Idea, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Idea, error)
	GetStats(ctx context.Context) (*model.Stats, error)
}

// IdeaService implements the multi-step idea operations
type IdeaService struct {
	repo Repository
	now  func() time.Time
}

// Option configures an IdeaService
type Option func(*IdeaService)

// WithClock overrides the time source for export and stats timestamps
func WithClock(now func() time.Time) Option {
	return func(s *IdeaService) {
		s.now = now
	}
}

// NewIdeaService creates an IdeaService over repo
func NewIdeaService(repo Repository, opts ...Option) *IdeaService {
	s := &IdeaService{
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MigrationResult reports a completed import
type MigrationResult struct {
	MigratedCount int          `json:"migratedCount"`
	Records       []model.Idea `json:"records"`
}

// Migrate imports legacy records one by one. The first failure aborts the
// import and is returned; records created before it stay committed.
func (s *IdeaService) Migrate(ctx context.Context, records []LegacyIdea) (*MigrationResult, error) {
	if records == nil {
		return nil, model.NewValidationError("migration data must be a list of ideas")
	}

	result := &MigrationResult{Records: []model.Idea{}}
	for i, rec := range records {
		in := rec.toInput()
		if err := in.Validate(); err != nil {
			logger.Error("Migration aborted", logger.F("index", i), logger.F("legacy_id", rec.ID), logger.F("migrated", result.MigratedCount), logger.F("error", err))
			return nil, model.NewValidationError(fmt.Sprintf("%s: %v", rec.label(i), err))
		}

		idea, err := s.repo.Create(ctx, in)
		if err != nil {
			logger.Error("Migration aborted", logger.F("index", i), logger.F("legacy_id", rec.ID), logger.F("migrated", result.MigratedCount), logger.F("error", err))
			return nil, fmt.Errorf("migrate %s: %w", rec.label(i), err)
		}

		result.Records = append(result.Records, *idea)
		result.MigratedCount++
	}

	logger.Info("Migration complete", logger.F("migrated", result.MigratedCount))
	return result, nil
}

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportMetadata describes an export
type ExportMetadata struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Count      int           `json:"count"`
	Filters    model.Filters `json:"filters"`
}

// ExportResult holds an export payload. Payload is []model.Idea for JSON and
// the rendered document string for CSV.
type ExportResult struct {
	Format   string         `json:"format"`
	Payload  interface{}    `json:"payload"`
	Metadata ExportMetadata `json:"metadata"`
}

// ContentType returns the MIME type of the payload
func (r *ExportResult) ContentType() string {
	if r.Format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Filename returns the suggested download name, e.g. ideas_export_2026-03-10.csv
func (r *ExportResult) Filename() string {
	return fmt.Sprintf("ideas_export_%s.%s", r.Metadata.ExportedAt.Format("2006-01-02"), r.Format)
}

// Export renders the filtered ideas as JSON or CSV. The format is checked
// before the store is queried.
func (s *IdeaService) Export(ctx context.Context, format string, filters model.Filters) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		return nil, &model.UnsupportedFormatError{Format: format}
	}

	ideas, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Format: format,
		Metadata: ExportMetadata{
			ExportedAt: s.now(),
			Count:      len(ideas),
			Filters:    filters,
		},
	}

	if format == FormatCSV {
		result.Payload = renderCSV(ideas)
	} else {
		result.Payload = ideas
	}
	return result, nil
}

// SearchParams are the advanced search criteria. Empty sets do not filter.
type SearchParams struct {
	Keyword    string       `json:"keyword,omitempty"`
	Categories []string     `json:"categories,omitempty"`
	Priorities []string     `json:"priorities,omitempty"`
	Tags       []string     `json:"tags,omitempty"`
	DateRange  DateRange    `json:"dateRange"`
	Status     model.Status `json:"status,omitempty"`
}

// SearchResult holds the matches and echoes the criteria used
type SearchResult struct {
	Matches      []model.Idea `json:"matches"`
	Count        int          `json:"count"`
	SearchParams SearchParams `json:"searchParams"`
}

// AdvancedSearch runs the status/keyword query in the store, then narrows the
// result by category, priority, tag and creation date in memory. Criteria
// combine with AND; tags match if any requested tag is present.
func (s *IdeaService) AdvancedSearch(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Status == "" {
		params.Status = model.StatusActive
	}
	if !params.Status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", params.Status))
	}

	ideas, err := s.repo.FindAll(ctx, model.Filters{Status: params.Status, Keyword: params.Keyword})
	if err != nil {
		return nil, err
	}

	wantTags := make([]string, 0, len(params.Tags))
	for _, tag := range params.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			wantTags = append(wantTags, tag)
		}
	}

	matches := []model.Idea{}
	for _, idea := range ideas {
		if len(params.Categories) > 0 && !slices.Contains(params.Categories, idea.Category) {
			continue
		}
		if len(params.Priorities) > 0 && !slices.Contains(params.Priorities, idea.Priority) {
			continue
		}
		if len(wantTags) > 0 && !hasAnyTag(idea, wantTags) {
			continue
		}
		if !params.DateRange.Contains(idea.CreatedAt) {
			continue
		}
		matches = append(matches, idea)
	}

	return &SearchResult{
		Matches:      matches,
		Count:        len(matches),
		SearchParams: params,
	}, nil
}

func hasAnyTag(idea model.Idea, want []string) bool {
	for _, tag := range idea.TagList() {
		if slices.Contains(want, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}

// Duplicate copies an idea's editable fields into a new active idea whose
// title carries the copy suffix
func (s *IdeaService) Duplicate(ctx context.Context, id string) (*model.Idea, error) {
	original, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, model.NewNotFoundError(id)
	}

	in := original.Input()
	in.Title += model.CopySuffix
	in.Status = model.StatusActive

	return s.repo.Create(ctx, in)
}

// BulkError is one failed id in a bulk update
type BulkError struct {
	IdeaID string `json:"ideaId"`
	Error  string `json:"error"`
}

// BulkResult reports the outcome of a bulk update
type BulkResult struct {
	UpdatedCount int          `json:"updatedCount"`
	ErrorCount   int          `json:"errorCount"`
	Updated      []model.Idea `json:"updated"`
	Errors       []BulkError  `json:"errors"`
}

// BulkStatusUpdate moves each idea to status independently. Per-id failures
// are collected in the result rather than aborting the batch. Input is
// validated before any write.
func (s *IdeaService) BulkStatusUpdate(ctx context.Context, ids []string, status string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, model.NewValidationError("idea ids must be a non-empty list")
	}

	newStatus, err := model.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{
		Updated: []model.Idea{},
		Errors:  []BulkError{},
	}

	for _, id := range ids {
		idea, err := s.repo.UpdateStatus(ctx, id, newStatus)
		if err != nil {
			logger.Warn("Bulk status update failed", logger.F("id", id), logger.F("error", err))
			result.Errors = append(result.Errors, BulkError{IdeaID: id, Error: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, *idea)
	}

	result.UpdatedCount = len(result.Updated)
	result.ErrorCount = len(result.Errors)
	return result, nil
}

// AdvancedStats wraps the basic statistics with the requested range and a
// generation time
type AdvancedStats struct {
	*model.Stats
	DateRange   DateRange `json:"dateRange"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// AdvancedStats returns the basic statistics. The date range is echoed
// back but not applied to the aggregates yet.
// TODO: filter the aggregates by dateRange once the expected semantics
// (created_at vs updated_at window) are agreed.
func (s *IdeaService) AdvancedStats(ctx context.Context, dateRange DateRange) (*AdvancedStats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	return &AdvancedStats{
		Stats:       stats,
		DateRange:   dateRange,
		GeneratedAt: s.now(),
	}, nil
}
