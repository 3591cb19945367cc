package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/repository"
	"github.com/existflow/ideabox/internal/service"
)

// Server is the ideas API server
type Server struct {
	cfg        *config.Config
	store      *db.DB
	ideas      *repository.IdeaRepository
	categories *repository.CategoryRepository
	service    *service.IdeaService
	echo       *echo.Echo
	started    time.Time
}

// New creates a server over an opened store. The server owns the store and
// closes it in Close.
func New(cfg *config.Config, store *db.DB) *Server {
	ideas := repository.NewIdeaRepository(store)

	s := &Server{
		cfg:        cfg,
		store:      store,
		ideas:      ideas,
		categories: repository.NewCategoryRepository(store),
		service:    service.NewIdeaService(ideas),
		started:    time.Now(),
	}

	s.setupEcho()

	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.CORSWithConfig(s.corsConfig()))

	// Health check
	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/categories", s.handleListCategories)

	ideas := api.Group("/ideas")
	ideas.GET("", s.handleListIdeas)
	ideas.POST("", s.handleCreateIdea)
	ideas.GET("/meta/stats", s.handleStats)
	ideas.GET("/meta/tags", s.handleTags)
	ideas.GET("/:id", s.handleGetIdea)
	ideas.PUT("/:id", s.handleUpdateIdea)
	ideas.DELETE("/:id", s.handleDeleteIdea)
	ideas.PATCH("/:id/status", s.handleUpdateStatus)

	services := api.Group("/services")
	services.POST("/migrate", s.handleMigrate)
	services.POST("/export", s.handleExport)
	services.POST("/search", s.handleSearch)
	services.POST("/duplicate/:id", s.handleDuplicate)
	services.POST("/bulk-status", s.handleBulkStatus)
	services.GET("/advanced-stats", s.handleAdvancedStats)

	s.echo = e
}

func (s *Server) corsConfig() middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig
	if len(s.cfg.CORSOrigins) > 0 {
		cfg.AllowOrigins = s.cfg.CORSOrigins
	}
	return cfg
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.store.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ShutdownTimeout bounds how long Run waits for in-flight requests
const ShutdownTimeout = 10 * time.Second

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("Server listening", logger.F("addr", addr), logger.F("environment", s.cfg.Environment))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "ideabox API",
		"status":      "online",
		"environment": s.cfg.Environment,
		"timestamp":   time.Now().UTC(),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	status, code := "healthy", http.StatusOK
	database := "connected"
	if err := s.store.PingContext(c.Request().Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
		database = "disconnected"
	}

	return c.JSON(code, map[string]interface{}{
		"status":      status,
		"uptime":      time.Since(s.started).Seconds(),
		"timestamp":   time.Now().UTC(),
		"database":    database,
		"environment": s.cfg.Environment,
	})
}
