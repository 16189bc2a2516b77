package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// StatusCode maps a service error to its HTTP status.
func StatusCode(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, rag.ErrValidation), errors.Is(err, chunker.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, vectordb.ErrCollectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrProviderFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler writes every handler error as an ErrorResponse. Internal errors are
// logged and hidden from the client.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusCode(err)
	detail := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.ErrorWithContext(c.Request().Context(), "Request failed", err, map[string]interface{}{
			"method": c.Request().Method,
			"path":   c.Path(),
			"status": code,
		})
		if code == http.StatusInternalServerError {
			detail = http.StatusText(code)
		}
	}

	body := ErrorResponse{Detail: detail, RequestID: c.Response().Header().Get(echo.HeaderXRequestID)}
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		s.logger.Error("Failed to write error response", werr)
	}
}
