package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/model"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Path    string          `json:"path"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	srv := New(cfg, store)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func createIdea(t *testing.T, srv *Server, body string) model.Idea {
	t.Helper()
	rec, env := do(t, srv, http.MethodPost, "/api/ideas", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var idea model.Idea
	require.NoError(t, json.Unmarshal(env.Data, &idea))
	return idea
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		rec, _ := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
		assert.Contains(t, rec.Body.String(), `"environment":"development"`)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	}
}

func TestCreateAndGetIdea(t *testing.T) {
	srv := newTestServer(t)

	idea := createIdea(t, srv, `{"id":"mine","title":"  Recipes app ","category":"technology","priority":"high","tags":"food, mobile","status":"archived"}`)
	assert.NotEqual(t, "mine", idea.ID)
	assert.Equal(t, "Recipes app", idea.Title)
	assert.Equal(t, model.StatusActive, idea.Status)

	rec, env := do(t, srv, http.MethodGet, "/api/ideas/"+idea.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var got model.Idea
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, idea, got)

	rec, env = do(t, srv, http.MethodGet, "/api/ideas/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "idea not found: missing", env.Error)
}

func TestCreateIdeaValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"title":"  ","category":"c","priority":"p"}`, "title is required"},
		{"missing category", `{"title":"t","priority":"p"}`, "category is required"},
		{"missing priority", `{"title":"t","category":"c"}`, "priority is required"},
		{"malformed body", `{"title":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodPost, "/api/ideas", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.want, env.Error)
		})
	}
}

func TestListIdeasDefaultsToActive(t *testing.T) {
	srv := newTestServer(t)

	a := createIdea(t, srv, `{"title":"A","category":"technology","priority":"high"}`)
	createIdea(t, srv, `{"title":"B","category":"personal","priority":"low"}`)

	rec, _ := do(t, srv, http.MethodPatch, "/api/ideas/"+a.ID+"/status", `{"status":"archived"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env := do(t, srv, http.MethodGet, "/api/ideas", "")
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	_, env = do(t, srv, http.MethodGet, "/api/ideas?status=all", "")
	assert.Equal(t, 2, *env.Count)

	_, env = do(t, srv, http.MethodGet, "/api/ideas?status=archived&category=technology", "")
	assert.Equal(t, 1, *env.Count)

	_, env = do(t, srv, http.MethodGet, "/api/ideas?category=all&keyword=b", "")
	assert.Equal(t, 1, *env.Count)

	rec, _ = do(t, srv, http.MethodGet, "/api/ideas?status=deleted", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteIdea(t *testing.T) {
	srv := newTestServer(t)
	idea := createIdea(t, srv, `{"title":"A","category":"technology","priority":"high"}`)

	rec, env := do(t, srv, http.MethodPut, "/api/ideas/"+idea.ID, `{"title":"A2","category":"business","priority":"low","status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Idea
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, idea.CreatedAt, updated.CreatedAt)

	rec, _ = do(t, srv, http.MethodPut, "/api/ideas/missing", `{"title":"x","category":"c","priority":"p"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, srv, http.MethodPatch, "/api/ideas/"+idea.ID+"/status", `{"status":"gone"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodDelete, "/api/ideas/"+idea.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true,"id":"`+idea.ID+`"}`, string(env.Data))

	rec, _ = do(t, srv, http.MethodDelete, "/api/ideas/"+idea.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetaEndpoints(t *testing.T) {
	srv := newTestServer(t)
	createIdea(t, srv, `{"title":"A","category":"technology","priority":"high","tags":"web, go"}`)
	createIdea(t, srv, `{"title":"B","category":"technology","priority":"low","tags":"go,api"}`)

	rec, env := do(t, srv, http.MethodGet, "/api/ideas/meta/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["api","go","web"]`, string(env.Data))

	rec, env = do(t, srv, http.MethodGet, "/api/ideas/meta/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.RecentCount)

	rec, env = do(t, srv, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, *env.Count)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", env.Error)
	assert.Equal(t, "/api/nothing", env.Path)
}

func TestMigrateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, env := do(t, srv, http.MethodPost, "/api/services/migrate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "localStorageData is required", env.Error)

	rec, _ = do(t, srv, http.MethodPost, "/api/services/migrate", `{"localStorageData":{"title":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/services/migrate",
		`{"localStorageData":[{"id":"1","title":"Old","category":"personal","tags":["a","b"]}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1 ideas migrated", env.Message)
	assert.Contains(t, string(env.Data), `"migratedCount":1`)
	assert.Contains(t, string(env.Data), `"tags":"a, b"`)
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createIdea(t, srv, `{"title":"He said \"hi\"","category":"personal","priority":"low"}`)

	rec, _ := do(t, srv, http.MethodPost, "/api/services/export", `{"format":"csv"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="ideas_export_\d{4}-\d{2}-\d{2}\.csv"$`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Id,Title,"))
	assert.Contains(t, rec.Body.String(), `"He said ""hi"""`)

	rec, env := do(t, srv, http.MethodPost, "/api/services/export", `{"filters":{"category":"personal"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"format":"json"`)
	assert.Contains(t, string(env.Data), `"count":1`)

	rec, env = do(t, srv, http.MethodPost, "/api/services/export", `{"format":"xml"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "unsupported export format")
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createIdea(t, srv, `{"title":"A","category":"technology","priority":"high","tags":"iot"}`)
	createIdea(t, srv, `{"title":"B","category":"business","priority":"high","tags":"food"}`)

	rec, env := do(t, srv, http.MethodPost, "/api/services/search", `{"tags":["IOT"],"priorities":["high"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, *env.Count)
	assert.Contains(t, string(env.Data), `"title":"A"`)

	rec, _ = do(t, srv, http.MethodPost, "/api/services/search", `{"dateRange":{"start":"soon"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	idea := createIdea(t, srv, `{"title":"Plan","category":"business","priority":"high"}`)

	rec, env := do(t, srv, http.MethodPost, "/api/services/duplicate/"+idea.ID, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var dup model.Idea
	require.NoError(t, json.Unmarshal(env.Data, &dup))
	assert.Equal(t, "Plan (Copy)", dup.Title)
	assert.NotEqual(t, idea.ID, dup.ID)

	rec, _ = do(t, srv, http.MethodPost, "/api/services/duplicate/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)
	a := createIdea(t, srv, `{"title":"A","category":"c","priority":"p"}`)
	b := createIdea(t, srv, `{"title":"B","category":"c","priority":"p"}`)

	body := `{"ideaIds":["` + a.ID + `","` + b.ID + `","X"],"newStatus":"archived"}`
	rec, env := do(t, srv, http.MethodPost, "/api/services/bulk-status", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2 ideas updated, 1 failed", env.Message)
	assert.Contains(t, string(env.Data), `"errors":[{"ideaId":"X","error":"idea not found: X"}]`)

	rec, _ = do(t, srv, http.MethodPost, "/api/services/bulk-status", `{"ideaIds":["`+a.ID+`"],"newStatus":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodPost, "/api/services/bulk-status", `{"newStatus":"active"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdvancedStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createIdea(t, srv, `{"title":"A","category":"c","priority":"p"}`)

	rec, env := do(t, srv, http.MethodGet, "/api/services/advanced-stats?start=2026-01-01&end=2026-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"total":1`)
	assert.Contains(t, string(env.Data), `"start":"2026-01-01T00:00:00Z"`)
	assert.Contains(t, string(env.Data), `"generatedAt"`)

	rec, _ = do(t, srv, http.MethodGet, "/api/services/advanced-stats?start=2026-02-01&end=2026-01-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalErrorsHiddenInProduction(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.Environment = config.EnvProduction
	require.NoError(t, srv.store.Close())

	rec, env := do(t, srv, http.MethodGet, "/api/ideas", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", env.Error)

	srv.cfg.Environment = config.EnvDevelopment
	rec, env = do(t, srv, http.MethodGet, "/api/ideas", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, env.Error, "list ideas")
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, "127.0.0.1:0")
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
