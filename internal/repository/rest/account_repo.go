package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
)

const accountsTable = "expense_accounts"

type accountRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r accountRecord) toDomain() *domain.ExpenseAccount {
	a := &domain.ExpenseAccount{
		ID:        r.ID,
		Name:      r.Name,
		Category:  domain.ExpenseCategory(r.Category),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Description != nil {
		a.Description = *r.Description
	}
	return a
}

// ExpenseAccountRepository implements domain.ExpenseAccountRepository over PostgREST
type ExpenseAccountRepository struct {
	client *Client
}

// NewExpenseAccountRepository creates a new ExpenseAccountRepository
func NewExpenseAccountRepository(client *Client) *ExpenseAccountRepository {
	return &ExpenseAccountRepository{client: client}
}

// List returns accounts ordered by category, then name
func (r *ExpenseAccountRepository) List(ctx context.Context, filter domain.ExpenseAccountFilter) ([]*domain.ExpenseAccount, error) {
	q := r.client.from(accountsTable).Select("*", "", false)
	if filter.ActiveOnly {
		q = q.Eq("is_active", "true")
	}
	q = q.Order("category", ascending).Order("name", ascending)

	var records []accountRecord
	if _, err := execute(ctx, accountsTable, q, &records); err != nil {
		return nil, err
	}
	return toAccounts(records), nil
}

// GetByID retrieves one account
func (r *ExpenseAccountRepository) GetByID(ctx context.Context, accountID int64) (*domain.ExpenseAccount, error) {
	q := r.client.from(accountsTable).Select("*", "", false).Eq("id", id(accountID))

	var records []accountRecord
	if _, err := execute(ctx, accountsTable, q, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return records[0].toDomain(), nil
}

// Create inserts an account and returns the stored row
func (r *ExpenseAccountRepository) Create(ctx context.Context, account *domain.ExpenseAccount) (*domain.ExpenseAccount, error) {
	body, err := encode(accountsTable, map[string]any{
		"name":        account.Name,
		"category":    string(account.Category),
		"description": nullableText(account.Description),
		"is_active":   account.IsActive,
	})
	if err != nil {
		return nil, err
	}

	q := r.client.from(accountsTable).Insert(body, false, "", "representation", "")

	var records []accountRecord
	if _, err := execute(ctx, accountsTable, q, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: insert returned no row", accountsTable)
	}
	return records[0].toDomain(), nil
}

// Update writes only the fields present in update
func (r *ExpenseAccountRepository) Update(ctx context.Context, accountID int64, update domain.ExpenseAccountUpdate) error {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = nullableText(*update.Description)
	}
	if update.Category != nil {
		fields["category"] = string(*update.Category)
	}
	if update.IsActive != nil {
		fields["is_active"] = *update.IsActive
	}
	body, err := encode(accountsTable, fields)
	if err != nil {
		return err
	}

	q := r.client.from(accountsTable).Update(body, "representation", "").Eq("id", id(accountID))

	var records []accountRecord
	if _, err := execute(ctx, accountsTable, q, &records); err != nil {
		return err
	}
	if len(records) == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Delete removes an account. A foreign key violation means expenses still
// reference it.
func (r *ExpenseAccountRepository) Delete(ctx context.Context, accountID int64) error {
	q := r.client.from(accountsTable).Delete("representation", "").Eq("id", id(accountID))

	var records []accountRecord
	if _, err := execute(ctx, accountsTable, q, &records); err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewConflictError("expense account", "account is referenced by expenses")
		}
		return err
	}
	if len(records) == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func toAccounts(records []accountRecord) []*domain.ExpenseAccount {
	accounts := make([]*domain.ExpenseAccount, len(records))
	for i, rec := range records {
		accounts[i] = rec.toDomain()
	}
	return accounts
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
