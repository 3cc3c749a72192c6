package handler

import (
	"net/http"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// OwnerHandler serves the salesman and expense-owner lists
type OwnerHandler struct{}

// NewOwnerHandler creates a new OwnerHandler
func NewOwnerHandler() *OwnerHandler {
	return &OwnerHandler{}
}

// CreateOwnerRequest represents the create owner request body
type CreateOwnerRequest struct {
	Name string `json:"name"`
}

// GetSalesmen handles GET /api/v1/people/salesmen. Read failures yield an
// empty list.
func (h *OwnerHandler) GetSalesmen(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	return c.JSON(http.StatusOK, sess.Directory.ListSalesmen(c.Request().Context()))
}

// GetOwners handles GET /api/v1/people/owners. Read failures yield an empty
// list.
func (h *OwnerHandler) GetOwners(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	return c.JSON(http.StatusOK, sess.Directory.ListOwners(c.Request().Context()))
}

// GetPicker handles GET /api/v1/people/picker
func (h *OwnerHandler) GetPicker(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	ctx := c.Request().Context()
	salesmen := sess.Directory.ListSalesmen(ctx)
	owners := sess.Directory.ListOwners(ctx)

	return c.JSON(http.StatusOK, service.PickerOptions(salesmen, owners))
}

// CreateOwner handles POST /api/v1/people/owners
func (h *OwnerHandler) CreateOwner(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	var req CreateOwnerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	owner, err := sess.Directory.CreateOwner(c.Request().Context(), req.Name)
	if err != nil {
		return serviceError(c, err, "create expense owner")
	}

	return c.JSON(http.StatusCreated, domain.Person{ID: owner.ID, Name: owner.Name})
}
