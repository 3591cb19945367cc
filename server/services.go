package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/service"
)

type migrateRequest struct {
	LocalStorageData json.RawMessage `json:"localStorageData"`
}

type exportRequest struct {
	Format  string        `json:"format"`
	Filters model.Filters `json:"filters"`
}

type bulkStatusRequest struct {
	IdeaIDs   []string `json:"ideaIds"`
	NewStatus string   `json:"newStatus"`
}

// handleMigrate imports ideas kept in browser local storage
func (s *Server) handleMigrate(c echo.Context) error {
	var req migrateRequest
	if err := c.Bind(&req); err != nil {
		return model.NewValidationError("invalid request body")
	}
	if len(req.LocalStorageData) == 0 || string(req.LocalStorageData) == "null" {
		return model.NewValidationError("localStorageData is required")
	}

	records, err := service.DecodeLegacyIdeas(req.LocalStorageData)
	if err != nil {
		return err
	}

	result, err := s.service.Migrate(c.Request().Context(), records)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result, fmt.Sprintf("%d ideas migrated", result.MigratedCount))
}

// handleExport sends the export as a download. CSV is sent raw, JSON inside
// the usual envelope.
func (s *Server) handleExport(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return model.NewValidationError("invalid request body")
	}

	result, err := s.service.Export(c.Request().Context(), req.Format, req.Filters)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.Filename()))
	if result.Format == service.FormatCSV {
		return c.Blob(http.StatusOK, result.ContentType(), []byte(result.Payload.(string)))
	}
	return ok(c, http.StatusOK, result, "")
}

func (s *Server) handleSearch(c echo.Context) error {
	var params service.SearchParams
	if err := c.Bind(&params); err != nil {
		if model.IsValidation(err) {
			return err
		}
		return model.NewValidationError("invalid search parameters")
	}

	result, err := s.service.AdvancedSearch(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return okList(c, result, result.Count)
}

func (s *Server) handleDuplicate(c echo.Context) error {
	idea, err := s.service.Duplicate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, idea, "idea duplicated")
}

func (s *Server) handleBulkStatus(c echo.Context) error {
	var req bulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return model.NewValidationError("invalid request body")
	}

	result, err := s.service.BulkStatusUpdate(c.Request().Context(), req.IdeaIDs, req.NewStatus)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result, fmt.Sprintf("%d ideas updated, %d failed", result.UpdatedCount, result.ErrorCount))
}

func (s *Server) handleAdvancedStats(c echo.Context) error {
	dateRange, err := service.ParseDateRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return err
	}

	stats, err := s.service.AdvancedStats(c.Request().Context(), dateRange)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, stats, "")
}
