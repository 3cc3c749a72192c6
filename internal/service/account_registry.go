package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// AccountRegistry manages the expense accounts of one session. The session's
// account list is loaded by ListAllAccounts and afterwards only changed by
// confirmed writes made through the registry.
type AccountRegistry struct {
	accountRepo domain.ExpenseAccountRepository
	expenseRepo domain.ExpenseRepository

	eventPublisher websocket.EventPublisher
	channel        string

	mu       sync.Mutex
	accounts []*domain.ExpenseAccount
	writes   writeTracker
}

// NewAccountRegistry creates a new AccountRegistry
func NewAccountRegistry(accountRepo domain.ExpenseAccountRepository, expenseRepo domain.ExpenseRepository) *AccountRegistry {
	return &AccountRegistry{
		accountRepo: accountRepo,
		expenseRepo: expenseRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (r *AccountRegistry) SetEventPublisher(publisher websocket.EventPublisher, channel string) {
	r.eventPublisher = publisher
	r.channel = channel
}

func (r *AccountRegistry) publishEvent(event websocket.Event) {
	if r.eventPublisher != nil {
		r.eventPublisher.Publish(r.channel, event)
	}
}

// CreateAccountInput holds the input for creating an expense account
type CreateAccountInput struct {
	Name        string
	Category    domain.ExpenseCategory
	Description string
}

// ListActiveAccounts returns active accounts ordered by category, then name.
// The session's management list is not touched.
func (r *AccountRegistry) ListActiveAccounts(ctx context.Context) ([]domain.ExpenseAccount, error) {
	accounts, err := r.accountRepo.List(ctx, domain.ExpenseAccountFilter{ActiveOnly: true})
	if err != nil {
		return nil, domain.NewBackendError("list active expense accounts", err)
	}
	return copyAccounts(accounts), nil
}

// ListAllAccounts fetches every account ordered by category, then name, and
// makes the result the session's account list. A failed fetch leaves the
// list empty.
func (r *AccountRegistry) ListAllAccounts(ctx context.Context) ([]domain.ExpenseAccount, error) {
	accounts, err := r.accountRepo.List(ctx, domain.ExpenseAccountFilter{})

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.accounts = nil
		return nil, domain.NewBackendError("list expense accounts", err)
	}
	r.accounts = accounts
	return copyAccounts(accounts), nil
}

// Accounts returns a snapshot of the session's account list
func (r *AccountRegistry) Accounts() []domain.ExpenseAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccounts(r.accounts)
}

// WritePending reports whether an account write is in flight
func (r *AccountRegistry) WritePending() bool {
	return r.writes.pending()
}

// CreateAccount validates and inserts a new active account, then appends it
// to the session list without re-sorting.
func (r *AccountRegistry) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.ExpenseAccount, error) {
	name, err := validateAccountName(input.Name)
	if err != nil {
		return nil, err
	}
	if !input.Category.IsValid() {
		return nil, domain.NewValidationError("category", categoryMessage())
	}

	done := r.writes.begin()
	defer done()

	created, err := r.accountRepo.Create(ctx, &domain.ExpenseAccount{
		Name:        name,
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	})
	if err != nil {
		return nil, domain.NewBackendError("create expense account", err)
	}

	r.mu.Lock()
	r.accounts = append(r.accounts, created)
	r.mu.Unlock()

	log.Info().Int64("account_id", created.ID).Str("name", created.Name).Msg("Expense account created")
	r.publishEvent(websocket.ExpenseAccountCreated(created))

	out := *created
	return &out, nil
}

// UpdateAccount applies a partial update. Fields absent from update keep
// their previous values in the session list.
func (r *AccountRegistry) UpdateAccount(ctx context.Context, id int64, update domain.ExpenseAccountUpdate) error {
	if update.IsEmpty() {
		return domain.NewValidationError("", "no fields to update")
	}
	if update.Name != nil {
		name, err := validateAccountName(*update.Name)
		if err != nil {
			return err
		}
		update.Name = &name
	}
	if update.Category != nil && !update.Category.IsValid() {
		return domain.NewValidationError("category", categoryMessage())
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		update.Description = &description
	}

	return r.write(ctx, id, update, "update expense account")
}

// SetActive toggles only the active flag of an account
func (r *AccountRegistry) SetActive(ctx context.Context, id int64, active bool) error {
	return r.write(ctx, id, domain.ExpenseAccountUpdate{IsActive: &active}, "set expense account status")
}

func (r *AccountRegistry) write(ctx context.Context, id int64, update domain.ExpenseAccountUpdate, op string) error {
	done := r.writes.begin()
	defer done()

	if err := r.accountRepo.Update(ctx, id, update); err != nil {
		return domain.NewBackendError(op, err)
	}

	r.mu.Lock()
	var merged *domain.ExpenseAccount
	for i, account := range r.accounts {
		if account.ID == id {
			next := update.Apply(*account)
			r.accounts[i] = &next
			merged = &next
			break
		}
	}
	r.mu.Unlock()

	log.Info().Int64("account_id", id).Str("op", op).Msg("Expense account updated")
	if merged != nil {
		r.publishEvent(websocket.ExpenseAccountUpdated(merged))
	} else {
		r.publishEvent(websocket.ExpenseAccountUpdated(map[string]int64{"id": id}))
	}
	return nil
}

// DeleteAccount hard-deletes an account that no expense references. When
// expenses exist a ConflictError is returned and nothing is changed; callers
// deactivate such accounts instead.
func (r *AccountRegistry) DeleteAccount(ctx context.Context, id int64) error {
	done := r.writes.begin()
	defer done()

	count, err := r.expenseRepo.CountByAccount(ctx, id)
	if err != nil {
		return domain.NewBackendError("count account expenses", err)
	}
	if count > 0 {
		return domain.NewConflictError("expense account",
			fmt.Sprintf("cannot delete account with existing expenses (%d)", count))
	}

	if err := r.accountRepo.Delete(ctx, id); err != nil {
		return domain.NewBackendError("delete expense account", err)
	}

	r.mu.Lock()
	kept := r.accounts[:0]
	for _, account := range r.accounts {
		if account.ID != id {
			kept = append(kept, account)
		}
	}
	r.accounts = kept
	r.mu.Unlock()

	log.Info().Int64("account_id", id).Msg("Expense account deleted")
	r.publishEvent(websocket.ExpenseAccountDeleted(map[string]int64{"id": id}))
	return nil
}

// CategoriesOf returns the distinct categories of accounts in first-seen order
func CategoriesOf(accounts []domain.ExpenseAccount) []domain.ExpenseCategory {
	seen := make(map[domain.ExpenseCategory]bool, len(accounts))
	categories := make([]domain.ExpenseCategory, 0)
	for _, account := range accounts {
		if !seen[account.Category] {
			seen[account.Category] = true
			categories = append(categories, account.Category)
		}
	}
	return categories
}

// AccountsInCategory filters accounts to one category. An empty category
// matches every account.
func AccountsInCategory(accounts []domain.ExpenseAccount, category domain.ExpenseCategory) []domain.ExpenseAccount {
	if category == "" {
		return accounts
	}
	filtered := make([]domain.ExpenseAccount, 0, len(accounts))
	for _, account := range accounts {
		if account.Category == category {
			filtered = append(filtered, account)
		}
	}
	return filtered
}

func validateAccountName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.NewValidationError("name", "Name is required")
	}
	if len(name) > domain.MaxAccountNameLength {
		return "", domain.NewValidationError("name",
			fmt.Sprintf("Name must be %d characters or less", domain.MaxAccountNameLength))
	}
	return name, nil
}

func categoryMessage() string {
	names := make([]string, 0, len(domain.AllExpenseCategories()))
	for _, c := range domain.AllExpenseCategories() {
		names = append(names, string(c))
	}
	return "Category must be one of: " + strings.Join(names, ", ")
}

func copyAccounts(accounts []*domain.ExpenseAccount) []domain.ExpenseAccount {
	out := make([]domain.ExpenseAccount, len(accounts))
	for i, a := range accounts {
		out[i] = *a
	}
	return out
}
