// Package handlers provides the HTTP handler implementations for the API.
//
// This file defines the standard response utilities shared by all endpoints:
// a structured error envelope with stable machine-readable codes, and helpers
// for success responses. Every failure path goes through fail() or
// failFromErr() so clients always get the same shape:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "item not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/http/middleware"
	"github.com/mkarlin/gimmie/internal/repo"
	"github.com/mkarlin/gimmie/internal/services"
	"github.com/mkarlin/gimmie/internal/validate"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// RequestID echoes the X-Request-ID header so client errors can be matched
// to server logs. ExistingCount is only present on confirmation_required
// responses and carries the number of live items an import would replace.
type ErrorResponse struct {
	RequestID     string `json:"request_id,omitempty"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	ExistingCount *int64 `json:"existing_count,omitempty"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by router-level handlers
// (404, 405) to keep the envelope consistent.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failFromErr maps service and storage errors onto HTTP responses. It is the
// single place where the error taxonomy of the lower layers meets HTTP.
func failFromErr(c *gin.Context, err error) {
	var ve *validate.Error
	var cr *services.ConfirmationRequiredError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, ve.Error())
	case errors.As(err, &cr):
		count := cr.ExistingCount
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			RequestID:     c.Writer.Header().Get("X-Request-ID"),
			Code:          ErrCodeConfirmationRequired,
			Message:       cr.Error(),
			ExistingCount: &count,
		})
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrArchiveEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidDirection),
		errors.Is(err, services.ErrEmptyPatch):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, repo.ErrUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable,
			"storage temporarily unavailable, please retry")
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
