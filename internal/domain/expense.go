package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodBank PaymentMethod = "Bank"
)

// IsValid reports whether m is Cash or Bank
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodBank
}

// DateLayout is the calendar-date format used on the wire
const DateLayout = "2006-01-02"

// Expense is a dated monetary outflow attributed to one account and optionally
// one person. Category is a snapshot of the account's category at creation.
type Expense struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Owner         OwnerRef        `json:"-"`
	AccountID     int64           `json:"accountId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ExpenseDraft is the caller input for a new expense. Category is not part of
// the draft: it is inherited from the account when the expense is added.
type ExpenseDraft struct {
	Date          time.Time
	Name          string
	Description   string
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	OwnerType     *OwnerType
	OwnerID       *int64
}

// Row is a loosely typed backend row keyed by column name
type Row map[string]any

// ExpenseRepository exposes the expenses table. It deals in raw rows; the
// ledger owns translation to and from Expense.
type ExpenseRepository interface {
	ListByAccount(ctx context.Context, accountID int64) ([]Row, error)
	Insert(ctx context.Context, row Row) (Row, error)
	Update(ctx context.Context, id int64, row Row) error
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

// CalendarDate truncates t to midnight UTC of its calendar day
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
