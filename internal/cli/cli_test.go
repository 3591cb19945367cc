package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/service"
)

// resetFlags restores every flag to its default; cobra keeps flag values
// between executions of the same command tree
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type cliEnv struct {
	t      *testing.T
	dir    string
	dbPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"IDEABOX_ENV", "IDEABOX_DB_DRIVER", "IDEABOX_DB_PATH", "DATABASE_URL", "IDEABOX_LOG_FILE"} {
		t.Setenv(key, "")
	}
	return &cliEnv{t: t, dir: dir, dbPath: filepath.Join(dir, "ideas.db")}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db-path", e.dbPath}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(v interface{}, args ...string) {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	if v != nil {
		require.NoError(e.t, json.Unmarshal([]byte(out), v), out)
	}
}

func (e *cliEnv) add(title, category, priority string, extra ...string) model.Idea {
	e.t.Helper()
	var idea model.Idea
	e.mustRun(&idea, append([]string{"add", title, "-c", category, "-p", priority}, extra...)...)
	return idea
}

func TestAddAndList(t *testing.T) {
	env := newCLIEnv(t)

	idea := env.add("Recipe app", "technology", "high", "-t", "food, mobile", "-d", "share recipes")
	assert.Equal(t, "Recipe app", idea.Title)
	assert.Equal(t, "food, mobile", idea.Tags)
	assert.Equal(t, model.StatusActive, idea.Status)

	env.add("Garden", "personal", "low")

	var ideas []model.Idea
	env.mustRun(&ideas, "list")
	require.Len(t, ideas, 2)
	assert.Equal(t, "Garden", ideas[0].Title)

	env.mustRun(&ideas, "list", "-c", "technology")
	require.Len(t, ideas, 1)
	assert.Equal(t, idea.ID, ideas[0].ID)

	env.mustRun(&ideas, "ls", "-k", "RECIPES")
	require.Len(t, ideas, 1)

	var shown model.Idea
	env.mustRun(&shown, "show", shortID(idea.ID))
	assert.Equal(t, idea, shown)
}

func TestAddRequiresCategory(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("add", "No category")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestStatusEditAndDuplicate(t *testing.T) {
	env := newCLIEnv(t)
	idea := env.add("Plan", "business", "high", "-t", "q1")

	var updated model.Idea
	env.mustRun(&updated, "status", shortID(idea.ID), "archived")
	assert.Equal(t, model.StatusArchived, updated.Status)

	var ideas []model.Idea
	env.mustRun(&ideas, "list")
	assert.Empty(t, ideas)

	env.mustRun(&ideas, "list", "--status", "all")
	assert.Len(t, ideas, 1)

	env.mustRun(&updated, "edit", idea.ID, "--title", "Plan B")
	assert.Equal(t, "Plan B", updated.Title)
	assert.Equal(t, "q1", updated.Tags)
	assert.Equal(t, model.StatusArchived, updated.Status)

	var dup model.Idea
	env.mustRun(&dup, "duplicate", idea.ID)
	assert.Equal(t, "Plan B (Copy)", dup.Title)
	assert.Equal(t, model.StatusActive, dup.Status)

	_, err := env.run("status", idea.ID, "deleted")
	assert.True(t, model.IsValidation(err))

	_, err = env.run("edit", "nope", "--title", "x")
	assert.True(t, model.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	env := newCLIEnv(t)
	idea := env.add("Temp", "personal", "low")

	var result model.DeleteResult
	env.mustRun(&result, "rm", idea.ID, "--yes")
	assert.True(t, result.Deleted)
	assert.Equal(t, idea.ID, result.ID)

	_, err := env.run("delete", idea.ID, "--yes")
	assert.True(t, model.IsNotFound(err))
}

func TestTagsAndStats(t *testing.T) {
	env := newCLIEnv(t)
	env.add("A", "technology", "high", "-t", "web, go")
	env.add("B", "technology", "low", "-t", "go,api")

	var tags []string
	env.mustRun(&tags, "tags")
	assert.Equal(t, []string{"api", "go", "web"}, tags)

	var stats model.Stats
	env.mustRun(&stats, "stats")
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, []model.CategoryCount{{Category: "technology", Count: 2}}, stats.ByCategory)
}

func TestExportAndImport(t *testing.T) {
	env := newCLIEnv(t)
	env.add(`He said "hi"`, "personal", "low")

	csvPath := filepath.Join(env.dir, "out.csv")
	_, err := env.run("export", "--format", "csv", "-o", csvPath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Id,Title,Description,"))
	assert.Contains(t, string(data), `"He said ""hi"""`)

	var exported service.ExportResult
	env.mustRun(&exported, "export")
	assert.Equal(t, service.FormatJSON, exported.Format)
	assert.Equal(t, 1, exported.Metadata.Count)

	_, err = env.run("export", "--format", "xml")
	assert.True(t, model.IsUnsupportedFormat(err))

	legacy := filepath.Join(env.dir, "legacy.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`[
		{"id": "1", "title": "Old one", "category": "creative", "tags": ["paint"]},
		{"id": "2", "title": "Old two", "category": "health", "priority": "high"}
	]`), 0644))

	var migrated service.MigrationResult
	env.mustRun(&migrated, "import", legacy)
	assert.Equal(t, 2, migrated.MigratedCount)
	assert.Equal(t, "paint", migrated.Records[0].Tags)
	assert.Equal(t, "medium", migrated.Records[0].Priority)

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"title": "not a list"}`), 0644))
	_, err = env.run("import", bad)
	assert.True(t, model.IsValidation(err))
}

func TestSearch(t *testing.T) {
	env := newCLIEnv(t)
	env.add("Fridge app", "technology", "high", "-t", "iot")
	env.add("Bakery", "business", "high", "-t", "food")
	env.add("Garden", "personal", "low", "-t", "outdoor")

	var result service.SearchResult
	env.mustRun(&result, "search", "-c", "technology", "-c", "business", "-p", "high")
	assert.Equal(t, 2, result.Count)

	env.mustRun(&result, "search", "--tag", "IOT,food")
	assert.Equal(t, 2, result.Count)

	env.mustRun(&result, "search", "garden")
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "Garden", result.Matches[0].Title)

	_, err := env.run("search", "--from", "someday")
	assert.True(t, model.IsValidation(err))
}

func TestBulkStatus(t *testing.T) {
	env := newCLIEnv(t)
	a := env.add("A", "c", "p")
	b := env.add("B", "c", "p")

	var result service.BulkResult
	env.mustRun(&result, "bulk-status", "completed", a.ID, shortID(b.ID), "missing")
	assert.Equal(t, 2, result.UpdatedCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, "missing", result.Errors[0].IdeaID)

	_, err := env.run("bulk-status", "gone", a.ID)
	assert.True(t, model.IsValidation(err))
}

func TestCategoryCommands(t *testing.T) {
	env := newCLIEnv(t)

	var categories []model.Category
	env.mustRun(&categories, "category", "list")
	assert.Len(t, categories, 6)

	var created model.Category
	env.mustRun(&created, "category", "new", "Side Projects", "--color", "#FF6B6B")
	assert.Equal(t, "side-projects", created.ID)
	assert.Equal(t, "#FF6B6B", created.Color)

	env.mustRun(&categories, "categories", "ls")
	assert.Len(t, categories, 7)

	env.mustRun(nil, "category", "rm", "side-projects")
	_, err := env.run("category", "rm", "side-projects")
	assert.True(t, model.IsNotFound(err))

	_, err = env.run("category", "new", "Bad", "--color", "blue")
	assert.True(t, model.IsValidation(err))
}
