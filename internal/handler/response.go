package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation = "https://bizdesk.app/errors/validation"
	ErrorTypeNotFound   = "https://bizdesk.app/errors/not-found"
	ErrorTypeConflict   = "https://bizdesk.app/errors/conflict"
	ErrorTypeBackend    = "https://bizdesk.app/errors/backend"
	ErrorTypeInternal   = "https://bizdesk.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewBadGatewayError creates a response for a failed data service call
func NewBadGatewayError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeBackend,
		Title:    "Backend Error",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// serviceError maps an error returned by a session component to a problem
// response. Conflicts and not-found causes are checked before the generic
// backend case because BackendError wraps them.
func serviceError(c echo.Context, err error, op string) error {
	var ve *domain.ValidationError
	var ce *domain.ConflictError

	switch {
	case errors.As(err, &ve):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: ve.Field, Message: ve.Message},
		})
	case errors.As(err, &ce):
		return NewConflictError(c, ce.Detail)
	case errors.Is(err, domain.ErrStaleSelection):
		return NewConflictError(c, "Selected account changed before the expenses were loaded")
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewNotFoundError(c, "Expense account not found")
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		return NewConflictError(c, "Resource already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Rejected by the data service", nil)
	case errors.Is(err, domain.ErrBackend):
		log.Error().Err(err).Str("op", op).Msg("Data service request failed")
		return NewBadGatewayError(c, "Failed to "+op)
	}

	log.Error().Err(err).Str("op", op).Msg("Unexpected error")
	return NewInternalError(c, "Failed to "+op)
}

// parseID reads a positive integer path parameter
func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
