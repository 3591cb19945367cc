package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Dialect captures the per-driver differences the repositories care about
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	migrations  []string
}

// DialectFor returns the dialect for a driver name
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3":
		return Dialect{Name: DriverSQLite, Placeholder: sq.Question, migrations: sqliteMigrations}, nil
	case DriverPostgres, "postgresql":
		return Dialect{Name: DriverPostgres, Placeholder: sq.Dollar, migrations: postgresMigrations}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// ContainsOp returns the operator for a case-insensitive pattern match.
// SQLite's LIKE folds ASCII letters only and matches other characters by
// exact case.
func (d Dialect) ContainsOp() string {
	if d.Name == DriverPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// DB wraps the shared connection pool and its dialect
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Builder returns a squirrel statement builder using the dialect's placeholders
func (db *DB) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.Dialect.Placeholder)
}

// Open connects to the store, runs migrations and seeds the default
// categories. dsn is a file path for sqlite and a connection URL for postgres.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	if dialect.Name == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open(dialect.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection also keeps :memory:
	// databases alive across calls.
	if dialect.Name == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, Dialect: dialect}

	if dialect.Name == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.seedCategories(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	return db, nil
}

// Wrap adopts an already opened connection without migrating it
func Wrap(conn *sql.DB, driver string) (*DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &DB{DB: sqlx.NewDb(conn, dialect.Name), Dialect: dialect}, nil
}
