package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense HTTP requests against the caller's session
// ledger
type ExpenseHandler struct{}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

// ownerFields is the owner part of expense request bodies. Clients send either
// the ownerType/ownerId pair or a picker token in owner, not both.
type ownerFields struct {
	OwnerType *string `json:"ownerType"`
	OwnerID   *int64  `json:"ownerId"`
	Owner     *string `json:"owner"`
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	AccountID     int64  `json:"accountId"`
	Date          string `json:"date"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	ownerFields
}

// UpdateExpenseRequest represents the full replacement of an expense
type UpdateExpenseRequest struct {
	AccountID     int64  `json:"accountId"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	ownerFields
}

// SelectAccountRequest represents the selection request body
type SelectAccountRequest struct {
	AccountID int64 `json:"accountId"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse = service.ExpenseView

// SelectionResponse is the selected account and its expense list
type SelectionResponse struct {
	AccountID int64             `json:"accountId"`
	Expenses  []ExpenseResponse `json:"expenses"`
}

// GetExpenses handles GET /api/v1/expenses?accountId=N
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	var accountID int64
	if raw := c.QueryParam("accountId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return NewValidationError(c, "Invalid account ID", []ValidationError{
				{Field: "accountId", Message: "Must be a positive integer"},
			})
		}
		accountID = parsed
	}

	expenses, err := sess.Ledger.ListExpenses(c.Request().Context(), accountID)
	if err != nil {
		return serviceError(c, err, "list expenses")
	}

	return c.JSON(http.StatusOK, toExpenseResponses(expenses))
}

// SelectAccount handles PUT /api/v1/expenses/selection
func (h *ExpenseHandler) SelectAccount(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	var req SelectAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.AccountID < 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Must be a positive integer"},
		})
	}

	expenses, err := sess.Ledger.SelectAccount(c.Request().Context(), req.AccountID)
	if err != nil {
		return serviceError(c, err, "select expense account")
	}

	return c.JSON(http.StatusOK, SelectionResponse{
		AccountID: req.AccountID,
		Expenses:  toExpenseResponses(expenses),
	})
}

// GetSelection handles GET /api/v1/expenses/selection
func (h *ExpenseHandler) GetSelection(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	return c.JSON(http.StatusOK, SelectionResponse{
		AccountID: sess.Ledger.SelectedAccountID(),
		Expenses:  toExpenseResponses(sess.Ledger.Expenses()),
	})
}

// CreateExpense handles POST /api/v1/expenses
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, errs := parseAmount(req.Amount)
	date, dateErrs := parseDate(req.Date)
	errs = append(errs, dateErrs...)
	ownerType, ownerID, ownerErrs := req.ownerFields.pair()
	errs = append(errs, ownerErrs...)
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	expense, err := sess.Ledger.AddExpense(c.Request().Context(), req.AccountID, domain.ExpenseDraft{
		Date:          date,
		Name:          req.Name,
		Description:   req.Description,
		Amount:        amount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		OwnerType:     ownerType,
		OwnerID:       ownerID,
	})
	if err != nil {
		return serviceError(c, err, "create expense")
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// UpdateExpense handles PUT /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, errs := parseAmount(req.Amount)
	date, dateErrs := parseDate(req.Date)
	errs = append(errs, dateErrs...)
	ownerType, ownerID, ownerErrs := req.ownerFields.pair()
	errs = append(errs, ownerErrs...)
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	owner, err := domain.NewOwnerRef(ownerType, ownerID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "owner", Message: err.Error()},
		})
	}

	expense := domain.Expense{
		ID:            id,
		Date:          date,
		Category:      req.Category,
		Name:          req.Name,
		Description:   req.Description,
		Amount:        amount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Owner:         owner,
		AccountID:     req.AccountID,
	}
	updated, err := sess.Ledger.UpdateExpense(c.Request().Context(), expense)
	if err != nil {
		return serviceError(c, err, "update expense")
	}

	return c.JSON(http.StatusOK, toExpenseResponse(updated))
}

// pair resolves the owner fields to the nullable wire pair
func (f ownerFields) pair() (*domain.OwnerType, *int64, []ValidationError) {
	if f.Owner != nil {
		if f.OwnerType != nil || f.OwnerID != nil {
			return nil, nil, []ValidationError{
				{Field: "owner", Message: "Send either owner or ownerType/ownerId"},
			}
		}
		ref, err := service.ResolveOwner(*f.Owner)
		if err != nil {
			return nil, nil, []ValidationError{{Field: "owner", Message: "Invalid owner token"}}
		}
		ownerType, ownerID := ref.Pair()
		return ownerType, ownerID, nil
	}

	if f.OwnerType == nil {
		return nil, f.OwnerID, nil
	}
	ownerType := domain.OwnerType(*f.OwnerType)
	return &ownerType, f.OwnerID, nil
}

func parseAmount(raw string) (decimal.Decimal, []ValidationError) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, []ValidationError{{Field: "amount", Message: "Must be a valid decimal number"}}
	}
	return amount, nil
}

func parseDate(raw string) (time.Time, []ValidationError) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, []ValidationError{{Field: "date", Message: "Must be in YYYY-MM-DD format"}}
	}
	return date, nil
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return service.NewExpenseView(expense)
}

func toExpenseResponses(expenses []domain.Expense) []ExpenseResponse {
	response := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		response[i] = toExpenseResponse(&expenses[i])
	}
	return response
}
