package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

const ideasTable = "ideas"

// RecentWindow is the trailing period counted by Stats.RecentCount
const RecentWindow = 7 * 24 * time.Hour

var ideaColumns = []string{
	"id", "title", "description", "category", "priority", "tags", "status", "created_at", "updated_at",
}

// IdeaRepository is the only component that talks to the ideas table
type IdeaRepository struct {
	db    *db.DB
	now   func() time.Time
	newID func() string
}

// Option configures an IdeaRepository
type Option func(*IdeaRepository)

// WithClock overrides the time source used for created_at/updated_at and
// the recent-ideas window. Its times are stored in UTC.
func WithClock(now func() time.Time) Option {
	return func(r *IdeaRepository) {
		r.now = func() time.Time {
			return now().UTC()
		}
	}
}

// WithIDGenerator overrides how ids are assigned when the caller omits one
func WithIDGenerator(newID func() string) Option {
	return func(r *IdeaRepository) {
		r.newID = newID
	}
}

// NewIdeaRepository creates a repository over an opened store
func NewIdeaRepository(store *db.DB, opts ...Option) *IdeaRepository {
	r := &IdeaRepository{
		db: store,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		newID: func() string {
			return uuid.New().String()
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create inserts a new idea and returns it as stored
func (r *IdeaRepository) Create(ctx context.Context, in model.IdeaInput) (*model.Idea, error) {
	id := in.ID
	if id == "" {
		id = r.newID()
	}

	status := in.Status
	if status == "" {
		status = model.StatusActive
	}
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	now := r.now()
	query, args, err := r.db.Builder().
		Insert(ideasTable).
		Columns(ideaColumns...).
		Values(id, in.Title, in.Description, in.Category, in.Priority, in.Tags, string(status), now, now).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build insert", err)
	}

	logger.Debug("Creating idea", logger.F("id", id))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, model.NewPersistenceError("create idea", err)
	}

	idea, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, model.NewPersistenceError("create idea", fmt.Errorf("idea %s missing after insert", id))
	}
	return idea, nil
}

// ideaFilter folds the filters into one conjunction of parameterized
// predicates. The keyword match is case-insensitive; op is the dialect's
// pattern operator.
func ideaFilter(f model.Filters, op string) sq.And {
	preds := sq.And{}

	if f.Category != "" && f.Category != model.AllCategories {
		preds = append(preds, sq.Eq{"category": f.Category})
	}
	if f.Priority != "" {
		preds = append(preds, sq.Eq{"priority": f.Priority})
	}
	if f.Status != "" {
		preds = append(preds, sq.Eq{"status": string(f.Status)})
	}
	if f.Keyword != "" {
		pattern := "%" + escapeLike(f.Keyword) + "%"
		match := func(col string) sq.Sqlizer {
			return sq.Expr(col+" "+op+` ? ESCAPE '\'`, pattern)
		}
		preds = append(preds, sq.Or{match("title"), match("description"), match("tags")})
	}

	return preds
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FindAll returns the ideas matching every filter, most recently updated first
func (r *IdeaRepository) FindAll(ctx context.Context, filters model.Filters) ([]model.Idea, error) {
	q := r.db.Builder().
		Select(ideaColumns...).
		From(ideasTable).
		OrderBy("updated_at DESC", "id DESC")

	if preds := ideaFilter(filters, r.db.Dialect.ContainsOp()); len(preds) > 0 {
		q = q.Where(preds)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build select", err)
	}

	ideas := []model.Idea{}
	if err := r.db.SelectContext(ctx, &ideas, query, args...); err != nil {
		return nil, model.NewPersistenceError("list ideas", err)
	}
	return ideas, nil
}

// FindByID returns the idea with id, or nil when there is none
func (r *IdeaRepository) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	query, args, err := r.db.Builder().
		Select(ideaColumns...).
		From(ideasTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build select", err)
	}

	var idea model.Idea
	if err := r.db.GetContext(ctx, &idea, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, model.NewPersistenceError("get idea", err)
	}
	return &idea, nil
}

// Update replaces the editable fields of an idea. An empty status means active.
func (r *IdeaRepository) Update(ctx context.Context, id string, in model.IdeaInput) (*model.Idea, error) {
	status := in.Status
	if status == "" {
		status = model.StatusActive
	}
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	return r.update(ctx, id, "update idea", map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"priority":    in.Priority,
		"tags":        in.Tags,
		"status":      string(status),
	})
}

// UpdateStatus moves an idea to another status without touching other fields
func (r *IdeaRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Idea, error) {
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	return r.update(ctx, id, "update idea status", map[string]interface{}{
		"status": string(status),
	})
}

func (r *IdeaRepository) update(ctx context.Context, id, op string, fields map[string]interface{}) (*model.Idea, error) {
	fields["updated_at"] = r.now()

	query, args, err := r.db.Builder().
		Update(ideasTable).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build update", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewPersistenceError(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, model.NewPersistenceError(op, err)
	}
	if n == 0 {
		return nil, model.NewNotFoundError(id)
	}

	idea, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		// deleted between the update and the read
		return nil, model.NewNotFoundError(id)
	}
	return idea, nil
}

// Delete removes an idea permanently
func (r *IdeaRepository) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	query, args, err := r.db.Builder().
		Delete(ideasTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build delete", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewPersistenceError("delete idea", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, model.NewPersistenceError("delete idea", err)
	}
	if n == 0 {
		return nil, model.NewNotFoundError(id)
	}

	logger.Debug("Deleted idea", logger.F("id", id))
	return &model.DeleteResult{Deleted: true, ID: id}, nil
}

// GetStats aggregates the active ideas. The four sub-queries run one after
// another and are not read from a single snapshot.
func (r *IdeaRepository) GetStats(ctx context.Context) (*model.Stats, error) {
	active := sq.Eq{"status": string(model.StatusActive)}
	stats := &model.Stats{
		ByCategory: []model.CategoryCount{},
		ByPriority: []model.PriorityCount{},
	}

	if err := r.count(ctx, &stats.Total, active); err != nil {
		return nil, err
	}

	query, args, err := r.db.Builder().
		Select("category", "COUNT(*) AS count").
		From(ideasTable).
		Where(active).
		GroupBy("category").
		OrderBy("count DESC", "category").
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build stats", err)
	}
	if err := r.db.SelectContext(ctx, &stats.ByCategory, query, args...); err != nil {
		return nil, model.NewPersistenceError("stats by category", err)
	}

	query, args, err = r.db.Builder().
		Select("priority", "COUNT(*) AS count").
		From(ideasTable).
		Where(active).
		GroupBy("priority").
		OrderBy("count DESC", "priority").
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build stats", err)
	}
	if err := r.db.SelectContext(ctx, &stats.ByPriority, query, args...); err != nil {
		return nil, model.NewPersistenceError("stats by priority", err)
	}

	cutoff := r.now().Add(-RecentWindow)
	if err := r.count(ctx, &stats.RecentCount, sq.And{active, sq.GtOrEq{"created_at": cutoff}}); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *IdeaRepository) count(ctx context.Context, dest *int, where sq.Sqlizer) error {
	query, args, err := r.db.Builder().
		Select("COUNT(*)").
		From(ideasTable).
		Where(where).
		ToSql()
	if err != nil {
		return model.NewPersistenceError("build count", err)
	}
	if err := r.db.GetContext(ctx, dest, query, args...); err != nil {
		return model.NewPersistenceError("count ideas", err)
	}
	return nil
}

// GetAllTags returns every distinct tag in use, sorted
func (r *IdeaRepository) GetAllTags(ctx context.Context) ([]string, error) {
	query, args, err := r.db.Builder().
		Select("DISTINCT tags").
		From(ideasTable).
		Where(sq.And{sq.NotEq{"tags": nil}, sq.NotEq{"tags": ""}}).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build select", err)
	}

	var rows []string
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, model.NewPersistenceError("list tags", err)
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, row := range rows {
		for _, tag := range model.SplitTags(row) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// ResolveID expands an id prefix, as shown in short listings, to the full id.
// An exact match wins; otherwise the prefix must match exactly one idea.
func (r *IdeaRepository) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", model.NewValidationError("id is required")
	}

	idea, err := r.FindByID(ctx, prefix)
	if err != nil {
		return "", err
	}
	if idea != nil {
		return idea.ID, nil
	}

	query, args, err := r.db.Builder().
		Select("id").
		From(ideasTable).
		Where(sq.Expr(`id LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")).
		OrderBy("id").
		Limit(2).
		ToSql()
	if err != nil {
		return "", model.NewPersistenceError("build select", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return "", model.NewPersistenceError("resolve id", err)
	}

	switch len(ids) {
	case 0:
		return "", model.NewNotFoundError(prefix)
	case 1:
		return ids[0], nil
	default:
		return "", model.NewValidationError(fmt.Sprintf("id prefix %q is ambiguous", prefix))
	}
}
