package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccountHandler handles expense-account HTTP requests against the caller's
// session registry
type AccountHandler struct{}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateAccountRequest represents the partial update request body. Absent
// fields are left unchanged.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// SetActiveRequest represents the status toggle request body
type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// AccountResponse represents an expense account in API responses
type AccountResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CategoriesResponse lists the fixed category enumeration and the categories
// that currently have an active account
type CategoriesResponse struct {
	All    []string `json:"all"`
	Active []string `json:"active"`
}

// GetAccounts handles GET /api/v1/expense-accounts
//
// With active=true only active accounts are returned and the session list is
// untouched; otherwise the full list is fetched and becomes the session list.
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	category := domain.ExpenseCategory(c.QueryParam("category"))
	if category != "" && !category.IsValid() {
		return NewValidationError(c, "Invalid category", []ValidationError{
			{Field: "category", Message: "Unknown category"},
		})
	}

	var accounts []domain.ExpenseAccount
	var err error
	if c.QueryParam("active") == "true" {
		accounts, err = sess.Registry.ListActiveAccounts(c.Request().Context())
	} else {
		accounts, err = sess.Registry.ListAllAccounts(c.Request().Context())
	}
	if err != nil {
		return serviceError(c, err, "list expense accounts")
	}

	return c.JSON(http.StatusOK, toAccountResponses(service.AccountsInCategory(accounts, category)))
}

// GetSessionAccounts handles GET /api/v1/expense-accounts/session
func (h *AccountHandler) GetSessionAccounts(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	return c.JSON(http.StatusOK, toAccountResponses(sess.Registry.Accounts()))
}

// GetCategories handles GET /api/v1/expense-accounts/categories
func (h *AccountHandler) GetCategories(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	active, err := sess.Registry.ListActiveAccounts(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "list active categories")
	}

	return c.JSON(http.StatusOK, CategoriesResponse{
		All:    categoryNames(domain.AllExpenseCategories()),
		Active: categoryNames(service.CategoriesOf(active)),
	})
}

// CreateAccount handles POST /api/v1/expense-accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := sess.Registry.CreateAccount(c.Request().Context(), service.CreateAccountInput{
		Name:        req.Name,
		Category:    domain.ExpenseCategory(req.Category),
		Description: req.Description,
	})
	if err != nil {
		return serviceError(c, err, "create expense account")
	}

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// UpdateAccount handles PATCH /api/v1/expense-accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := domain.ExpenseAccountUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Category != nil {
		category := domain.ExpenseCategory(*req.Category)
		update.Category = &category
	}

	if err := sess.Registry.UpdateAccount(c.Request().Context(), id, update); err != nil {
		return serviceError(c, err, "update expense account")
	}

	return h.respondWithAccount(c, sess.Registry.Accounts(), id)
}

// SetActive handles PUT /api/v1/expense-accounts/:id/active
func (h *AccountHandler) SetActive(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.IsActive == nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "isActive", Message: "isActive is required"},
		})
	}

	if err := sess.Registry.SetActive(c.Request().Context(), id, *req.IsActive); err != nil {
		return serviceError(c, err, "set expense account status")
	}

	return h.respondWithAccount(c, sess.Registry.Accounts(), id)
}

// DeleteAccount handles DELETE /api/v1/expense-accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := sess.Registry.DeleteAccount(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "delete expense account")
	}

	log.Debug().Str("session_id", sess.ID.String()).Int64("account_id", id).Msg("Expense account removed from session")
	return c.NoContent(http.StatusNoContent)
}

// respondWithAccount returns the merged session entry for id, or 204 when the
// account is not in the session list (it was never listed in this session)
func (h *AccountHandler) respondWithAccount(c echo.Context, accounts []domain.ExpenseAccount, id int64) error {
	for i := range accounts {
		if accounts[i].ID == id {
			return c.JSON(http.StatusOK, toAccountResponse(&accounts[i]))
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func toAccountResponse(account *domain.ExpenseAccount) AccountResponse {
	resp := AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Category:  string(account.Category),
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}
	if account.Description != "" {
		description := account.Description
		resp.Description = &description
	}
	return resp
}

func toAccountResponses(accounts []domain.ExpenseAccount) []AccountResponse {
	response := make([]AccountResponse, len(accounts))
	for i := range accounts {
		response[i] = toAccountResponse(&accounts[i])
	}
	return response
}

func categoryNames(categories []domain.ExpenseCategory) []string {
	names := make([]string, len(categories))
	for i, category := range categories {
		names[i] = string(category)
	}
	return names
}
