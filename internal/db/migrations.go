package db

import (
	"context"
	"fmt"

	"github.com/existflow/ideabox/internal/model"
)

// migrate runs all database migrations
func (db *DB) migrate(ctx context.Context) error {
	for i, m := range db.Dialect.migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// seedCategories inserts the default categories. Existing rows, matched by
// id or name, are left untouched.
func (db *DB) seedCategories(ctx context.Context) error {
	for _, c := range model.DefaultCategories() {
		query, args, err := db.Builder().
			Insert("categories").
			Columns("id", "name", "color").
			Values(c.ID, c.Name, c.Color).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("category %s: %w", c.ID, err)
		}
	}
	return nil
}

var sqliteMigrations = []string{
	sqliteCreateIdeas,
	sqliteCreateCategories,
}

var postgresMigrations = []string{
	postgresCreateIdeas,
	postgresCreateCategories,
}

const sqliteCreateIdeas = `
CREATE TABLE IF NOT EXISTS ideas (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    priority TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived', 'completed')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ideas_updated ON ideas(updated_at);
CREATE INDEX IF NOT EXISTS idx_ideas_status_category ON ideas(status, category);
`

const sqliteCreateCategories = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '#4ECDC4',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresCreateIdeas = `
CREATE TABLE IF NOT EXISTS ideas (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    priority TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived', 'completed')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ideas_updated ON ideas(updated_at);
CREATE INDEX IF NOT EXISTS idx_ideas_status_category ON ideas(status, category);
`

const postgresCreateCategories = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '#4ECDC4',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
