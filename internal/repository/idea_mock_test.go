package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/model"
)

func newMockRepo(t *testing.T, driver string) (*IdeaRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store, err := db.Wrap(conn, driver)
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := NewIdeaRepository(store,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "generated-id" }),
	)
	return repo, mock
}

func TestFindAllBuildsParameterizedQuery(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverPostgres)

	expected := regexp.QuoteMeta(
		"SELECT id, title, description, category, priority, tags, status, created_at, updated_at FROM ideas " +
			"WHERE (category = $1 AND priority = $2 AND status = $3 AND " +
			`(title ILIKE $4 ESCAPE '\' OR description ILIKE $5 ESCAPE '\' OR tags ILIKE $6 ESCAPE '\')) ` +
			"ORDER BY updated_at DESC, id DESC")

	mock.ExpectQuery(expected).
		WithArgs("tech", "high", "active", `%50\%%`, `%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows(ideaColumns))

	ideas, err := repo.FindAll(context.Background(), model.Filters{
		Category: "tech",
		Priority: "high",
		Status:   model.StatusActive,
		Keyword:  "50%",
	})
	require.NoError(t, err)
	assert.NotNil(t, ideas)
	assert.Empty(t, ideas)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllKeywordUsesLikeOnSQLite(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)

	expected := regexp.QuoteMeta(
		"SELECT id, title, description, category, priority, tags, status, created_at, updated_at FROM ideas " +
			`WHERE ((title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')) ` +
			"ORDER BY updated_at DESC, id DESC")

	mock.ExpectQuery(expected).
		WithArgs("%Ärzte%", "%Ärzte%", "%Ärzte%").
		WillReturnRows(sqlmock.NewRows(ideaColumns))

	_, err := repo.FindAll(context.Background(), model.Filters{Keyword: "Ärzte"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllOmitsWhereWithoutFilters(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)

	mock.ExpectQuery(`^SELECT .* FROM ideas ORDER BY updated_at DESC, id DESC$`).
		WillReturnRows(sqlmock.NewRows(ideaColumns))

	_, err := repo.FindAll(context.Background(), model.Filters{Category: model.AllCategories})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllStoreFailure(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)
	cause := errors.New("database is locked")

	mock.ExpectQuery(`SELECT .* FROM ideas`).WillReturnError(cause)

	ideas, err := repo.FindAll(context.Background(), model.Filters{})
	assert.Nil(t, ideas)
	require.Error(t, err)
	assert.True(t, model.IsPersistence(err))
	assert.ErrorIs(t, err, cause)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInsertFailure(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ideas (id,title,description,category,priority,tags,status,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)")).
		WithArgs("generated-id", "Plan", "", "tech", "high", "", "active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("UNIQUE constraint failed: ideas.id"))

	_, err := repo.Create(context.Background(), model.IdeaInput{Title: "Plan", Category: "tech", Priority: "high"})
	require.Error(t, err)
	assert.True(t, model.IsPersistence(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNoRows(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ideas WHERE id = ?")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	idea, err := repo.FindByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, idea)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateZeroRowsIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverPostgres)

	mock.ExpectExec(`UPDATE ideas SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("archived", sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateStatus(context.Background(), "ghost", model.StatusArchived)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExecFailure(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ideas WHERE id = ?")).
		WithArgs("a").
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Delete(context.Background(), "a")
	assert.True(t, model.IsPersistence(err))
	assert.False(t, model.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatsPartialFailure(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM ideas WHERE status = ?")).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, COUNT(*) AS count FROM ideas WHERE status = ? GROUP BY category")).
		WillReturnError(errors.New("boom"))

	stats, err := repo.GetStats(context.Background())
	assert.Nil(t, stats)
	assert.True(t, model.IsPersistence(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
