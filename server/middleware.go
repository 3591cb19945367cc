package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// requestLogger logs every request and its response
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		logger.Debug("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("remote", c.RealIP()))

		err := next(c)
		if err != nil {
			// run the error handler now so the logged status is the one sent
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		return nil
	}
}

// response is the envelope every API endpoint answers with
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Path    string      `json:"path,omitempty"`
}

func ok(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, response{Success: true, Data: data, Message: message})
}

func okList(c echo.Context, data interface{}, count int) error {
	return c.JSON(http.StatusOK, response{Success: true, Data: data, Count: &count})
}

// handleError maps domain errors to status codes. Internal error text is
// only exposed outside production.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	req := c.Request()
	body := response{Success: false}
	var status int
	var he *echo.HTTPError

	switch {
	case model.IsValidation(err), model.IsUnsupportedFormat(err):
		status, body.Error = http.StatusBadRequest, err.Error()
	case model.IsNotFound(err):
		status, body.Error = http.StatusNotFound, err.Error()
	case errors.As(err, &he):
		status, body.Error = he.Code, http.StatusText(he.Code)
		if msg, isString := he.Message.(string); isString {
			body.Error = msg
		}
		if he.Code == http.StatusNotFound {
			body.Error, body.Path = "route not found", req.URL.Path
		}
	default:
		status, body.Error = http.StatusInternalServerError, "internal server error"
		if !s.cfg.IsProduction() {
			body.Error = err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("error", err))
	}

	if req.Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("Failed to write error response", logger.F("error", err))
	}
}
