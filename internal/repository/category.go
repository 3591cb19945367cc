package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/model"
)

const categoriesTable = "categories"

// CategoryRepository reads and maintains the category lookup table
type CategoryRepository struct {
	db *db.DB
}

// NewCategoryRepository creates a CategoryRepository
func NewCategoryRepository(store *db.DB) *CategoryRepository {
	return &CategoryRepository{db: store}
}

// List returns all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	query, args, err := r.db.Builder().
		Select("id", "name", "color", "created_at").
		From(categoriesTable).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build select", err)
	}

	categories := []model.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, model.NewPersistenceError("list categories", err)
	}
	return categories, nil
}

// Create adds a category. The id is derived from the name when empty.
func (r *CategoryRepository) Create(ctx context.Context, c model.Category) (*model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, model.NewValidationError("category name is required")
	}
	if c.ID == "" {
		c.ID = model.CategoryID(c.Name)
	}
	if c.Color == "" {
		c.Color = model.DefaultCategoryColor
	}
	if !model.ValidColor(c.Color) {
		return nil, model.NewValidationError(fmt.Sprintf("invalid color %q: use #RRGGBB", c.Color))
	}

	query, args, err := r.db.Builder().
		Insert(categoriesTable).
		Columns("id", "name", "color").
		Values(c.ID, c.Name, c.Color).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build insert", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, model.NewPersistenceError("create category", err)
	}

	query, args, err = r.db.Builder().
		Select("id", "name", "color", "created_at").
		From(categoriesTable).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return nil, model.NewPersistenceError("build select", err)
	}

	var created model.Category
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, model.NewPersistenceError("get category", err)
	}
	return &created, nil
}

// Delete removes a category from the lookup table. Ideas keep their
// category value.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.db.Builder().
		Delete(categoriesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.NewPersistenceError("build delete", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return model.NewPersistenceError("delete category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.NewPersistenceError("delete category", err)
	}
	if n == 0 {
		return &model.NotFoundError{ID: id}
	}
	return nil
}

// Colors maps category id and lower-cased name to its display color
func (r *CategoryRepository) Colors(ctx context.Context) (map[string]string, error) {
	categories, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	colors := make(map[string]string, len(categories)*2)
	for _, c := range categories {
		colors[c.ID] = c.Color
		colors[strings.ToLower(c.Name)] = c.Color
	}
	return colors, nil
}
