package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/ideabox/internal/model"
)

// statusAll disables the status filter on the list endpoint
const statusAll = "all"

type statusRequest struct {
	Status string `json:"status"`
}

func bindInput(c echo.Context) (model.IdeaInput, error) {
	var in model.IdeaInput
	if err := c.Bind(&in); err != nil {
		return in, model.NewValidationError("invalid request body")
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// handleListIdeas lists ideas. Status defaults to active.
func (s *Server) handleListIdeas(c echo.Context) error {
	filters := model.Filters{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Priority: strings.TrimSpace(c.QueryParam("priority")),
		Keyword:  strings.TrimSpace(c.QueryParam("keyword")),
		Status:   model.StatusActive,
	}

	switch status := strings.TrimSpace(c.QueryParam("status")); status {
	case "":
	case statusAll:
		filters.Status = ""
	default:
		st, err := model.ParseStatus(status)
		if err != nil {
			return err
		}
		filters.Status = st
	}

	ideas, err := s.ideas.FindAll(c.Request().Context(), filters)
	if err != nil {
		return err
	}
	return okList(c, ideas, len(ideas))
}

func (s *Server) handleGetIdea(c echo.Context) error {
	id := c.Param("id")
	idea, err := s.ideas.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if idea == nil {
		return model.NewNotFoundError(id)
	}
	return ok(c, http.StatusOK, idea, "")
}

// handleCreateIdea creates an active idea. Client supplied ids and statuses
// are ignored.
func (s *Server) handleCreateIdea(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	in.ID = ""
	in.Status = model.StatusActive

	idea, err := s.ideas.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, idea, "idea created")
}

func (s *Server) handleUpdateIdea(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return err
	}

	idea, err := s.ideas.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, idea, "idea updated")
}

func (s *Server) handleUpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return model.NewValidationError("invalid request body")
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	idea, err := s.ideas.UpdateStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, idea, "status updated")
}

func (s *Server) handleDeleteIdea(c echo.Context) error {
	result, err := s.ideas.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result, "idea deleted")
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.ideas.GetStats(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, stats, "")
}

func (s *Server) handleTags(c echo.Context) error {
	tags, err := s.ideas.GetAllTags(c.Request().Context())
	if err != nil {
		return err
	}
	return okList(c, tags, len(tags))
}

func (s *Server) handleListCategories(c echo.Context) error {
	categories, err := s.categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return okList(c, categories, len(categories))
}
