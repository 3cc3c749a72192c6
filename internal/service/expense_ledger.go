package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ExpenseLedger holds the expense list of the session's selected account
type ExpenseLedger struct {
	expenseRepo domain.ExpenseRepository
	accountRepo domain.ExpenseAccountRepository

	eventPublisher websocket.EventPublisher
	channel        string

	mu         sync.Mutex
	selected   int64
	generation uint64
	expenses   []*domain.Expense
	writes     writeTracker
}

// NewExpenseLedger creates a new ExpenseLedger
func NewExpenseLedger(expenseRepo domain.ExpenseRepository, accountRepo domain.ExpenseAccountRepository) *ExpenseLedger {
	return &ExpenseLedger{
		expenseRepo: expenseRepo,
		accountRepo: accountRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (l *ExpenseLedger) SetEventPublisher(publisher websocket.EventPublisher, channel string) {
	l.eventPublisher = publisher
	l.channel = channel
}

func (l *ExpenseLedger) publishEvent(event websocket.Event) {
	if l.eventPublisher != nil {
		l.eventPublisher.Publish(l.channel, event)
	}
}

// ListExpenses fetches the expenses of one account, newest date first. A zero
// account id yields an empty list without touching the backend.
func (l *ExpenseLedger) ListExpenses(ctx context.Context, accountID int64) ([]domain.Expense, error) {
	expenses, err := l.fetch(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return copyExpenses(expenses), nil
}

func (l *ExpenseLedger) fetch(ctx context.Context, accountID int64) ([]*domain.Expense, error) {
	if accountID == 0 {
		return []*domain.Expense{}, nil
	}

	rows, err := l.expenseRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, domain.NewBackendError("list expenses", err)
	}

	expenses := make([]*domain.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := expenseFromRow(row)
		if err != nil {
			return nil, domain.NewBackendError("decode expense", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// SelectAccount makes accountID the selected account and loads its expenses.
// When another selection starts before this fetch returns, the fetched list
// is dropped and ErrStaleSelection is returned.
func (l *ExpenseLedger) SelectAccount(ctx context.Context, accountID int64) ([]domain.Expense, error) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.selected = accountID
	l.expenses = nil
	l.mu.Unlock()

	expenses, err := l.fetch(ctx, accountID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.generation != gen {
		log.Debug().Int64("account_id", accountID).Msg("Discarding stale expense fetch")
		return nil, domain.ErrStaleSelection
	}
	if err != nil {
		return nil, err
	}
	l.expenses = expenses

	l.publishEvent(websocket.ExpenseAccountSelected(map[string]int64{"accountId": accountID}))
	return copyExpenses(expenses), nil
}

// Expenses returns a snapshot of the selected account's expense list
func (l *ExpenseLedger) Expenses() []domain.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyExpenses(l.expenses)
}

// SelectedAccountID returns the selected account, 0 when none
func (l *ExpenseLedger) SelectedAccountID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected
}

// WritePending reports whether an expense write is in flight
func (l *ExpenseLedger) WritePending() bool {
	return l.writes.pending()
}

// AddExpense records a new expense against accountID. The account's category
// is copied onto the expense and a blank name falls back to the account name.
// When accountID is the selected account the new expense is placed at the head
// of the list regardless of its date.
func (l *ExpenseLedger) AddExpense(ctx context.Context, accountID int64, draft domain.ExpenseDraft) (*domain.Expense, error) {
	if accountID <= 0 {
		return nil, domain.NewValidationError("accountId", "Account is required")
	}
	if !draft.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "Amount must be greater than 0")
	}
	if !draft.PaymentMethod.IsValid() {
		return nil, domain.NewValidationError("paymentMethod", "Payment method must be Cash or Bank")
	}
	if draft.Date.IsZero() {
		return nil, domain.NewValidationError("date", "Date is required")
	}
	owner, err := domain.NewOwnerRef(draft.OwnerType, draft.OwnerID)
	if err != nil {
		return nil, domain.NewValidationError("owner", err.Error())
	}

	done := l.writes.begin()
	defer done()

	account, err := l.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, domain.NewBackendError("get expense account", err)
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		name = account.Name
	}

	expense := &domain.Expense{
		Date:          domain.CalendarDate(draft.Date),
		Category:      string(account.Category),
		Name:          name,
		Description:   strings.TrimSpace(draft.Description),
		Amount:        draft.Amount,
		PaymentMethod: draft.PaymentMethod,
		Owner:         owner,
		AccountID:     accountID,
	}

	row, err := l.expenseRepo.Insert(ctx, expenseWriteRow(expense))
	if err != nil {
		return nil, domain.NewBackendError("create expense", err)
	}
	created, err := expenseFromRow(row)
	if err != nil {
		return nil, domain.NewBackendError("decode expense", err)
	}

	l.mu.Lock()
	if l.selected == accountID {
		l.expenses = append([]*domain.Expense{created}, l.expenses...)
	}
	l.mu.Unlock()

	log.Info().
		Int64("expense_id", created.ID).
		Int64("account_id", accountID).
		Str("amount", created.Amount.String()).
		Msg("Expense created")
	l.publishEvent(websocket.ExpenseCreated(NewExpenseView(created)))

	out := *created
	return &out, nil
}

// UpdateExpense replaces every mutable field of an existing expense and returns
// the stored record. The list entry with the same id is replaced in place; the
// list is not re-sorted. A
// blank category keeps the listed expense's category, or takes the account's
// when the expense is not listed.
func (l *ExpenseLedger) UpdateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.ID <= 0 {
		return nil, domain.NewValidationError("id", "Expense id is required")
	}
	if expense.AccountID <= 0 {
		return nil, domain.NewValidationError("accountId", "Account is required")
	}
	if expense.Amount.IsNegative() {
		return nil, domain.NewValidationError("amount", "Amount cannot be negative")
	}
	if !expense.PaymentMethod.IsValid() {
		return nil, domain.NewValidationError("paymentMethod", "Payment method must be Cash or Bank")
	}
	if expense.Date.IsZero() {
		return nil, domain.NewValidationError("date", "Date is required")
	}
	expense.Date = domain.CalendarDate(expense.Date)
	expense.Category = strings.TrimSpace(expense.Category)

	done := l.writes.begin()
	defer done()

	if expense.Category == "" {
		category, err := l.categoryFor(ctx, expense)
		if err != nil {
			return nil, err
		}
		expense.Category = category
	}

	if err := l.expenseRepo.Update(ctx, expense.ID, expenseWriteRow(&expense)); err != nil {
		return nil, domain.NewBackendError("update expense", err)
	}
	expense.UpdatedAt = time.Now().UTC()

	l.mu.Lock()
	for i, existing := range l.expenses {
		if existing.ID == expense.ID {
			if expense.CreatedAt.IsZero() {
				expense.CreatedAt = existing.CreatedAt
			}
			next := expense
			l.expenses[i] = &next
			break
		}
	}
	l.mu.Unlock()

	log.Info().Int64("expense_id", expense.ID).Msg("Expense updated")
	l.publishEvent(websocket.ExpenseUpdated(NewExpenseView(&expense)))
	return &expense, nil
}

// categoryFor finds the category an update without one should keep
func (l *ExpenseLedger) categoryFor(ctx context.Context, expense domain.Expense) (string, error) {
	l.mu.Lock()
	for _, existing := range l.expenses {
		if existing.ID == expense.ID && existing.Category != "" {
			l.mu.Unlock()
			return existing.Category, nil
		}
	}
	l.mu.Unlock()

	account, err := l.accountRepo.GetByID(ctx, expense.AccountID)
	if err != nil {
		return "", domain.NewBackendError("get expense account", err)
	}
	return string(account.Category), nil
}

func copyExpenses(expenses []*domain.Expense) []domain.Expense {
	out := make([]domain.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = *e
	}
	return out
}
