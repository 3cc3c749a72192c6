package service

import (
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
)

// ExpenseView is the client-facing form of an expense, shared by API
// responses and change events
type ExpenseView struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Amount        string  `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	OwnerType     *string `json:"ownerType"`
	OwnerID       *int64  `json:"ownerId"`
	Owner         string  `json:"owner,omitempty"`
	AccountID     int64   `json:"accountId"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// NewExpenseView renders e with a YYYY-MM-DD date and a two-decimal amount
func NewExpenseView(e *domain.Expense) ExpenseView {
	view := ExpenseView{
		ID:            e.ID,
		Date:          e.Date.Format(domain.DateLayout),
		Category:      e.Category,
		Name:          e.Name,
		Amount:        e.Amount.StringFixed(2),
		PaymentMethod: string(e.PaymentMethod),
		Owner:         e.Owner.Token(),
		AccountID:     e.AccountID,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.Description != "" {
		description := e.Description
		view.Description = &description
	}
	if ownerType, ownerID := e.Owner.Pair(); ownerType != nil {
		typeName := string(*ownerType)
		view.OwnerType = &typeName
		view.OwnerID = ownerID
	}
	if !e.UpdatedAt.IsZero() {
		view.UpdatedAt = e.UpdatedAt.Format(time.RFC3339)
	}
	return view
}
