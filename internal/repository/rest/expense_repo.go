package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/supabase-community/postgrest-go"
)

const expensesTable = "expenses"

// ExpenseRepository implements domain.ExpenseRepository over PostgREST. Rows
// are the decoded JSON objects; numbers arrive as json.Number.
type ExpenseRepository struct {
	client *Client
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(client *Client) *ExpenseRepository {
	return &ExpenseRepository{client: client}
}

// ListByAccount returns the expenses of one account, newest date first
func (r *ExpenseRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Row, error) {
	q := r.client.from(expensesTable).
		Select("*", "", false).
		Eq("account_id", id(accountID)).
		Order("date", &postgrest.OrderOpts{Ascending: false}).
		Order("id", ascending)

	var rows []domain.Row
	if _, err := execute(ctx, expensesTable, q, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	return rows, nil
}

// Insert stores row and returns the stored record
func (r *ExpenseRepository) Insert(ctx context.Context, row domain.Row) (domain.Row, error) {
	body, err := encode(expensesTable, row)
	if err != nil {
		return nil, err
	}

	q := r.client.from(expensesTable).Insert(body, false, "", "representation", "")

	var created []domain.Row
	if _, err := execute(ctx, expensesTable, q, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("%s: insert returned no row", expensesTable)
	}
	return created[0], nil
}

// Update overwrites the columns present in row
func (r *ExpenseRepository) Update(ctx context.Context, expenseID int64, row domain.Row) error {
	fields := make(domain.Row, len(row)+1)
	for k, v := range row {
		if k == "id" || k == "created_at" {
			continue
		}
		fields[k] = v
	}
	fields["updated_at"] = time.Now().UTC()

	body, err := encode(expensesTable, fields)
	if err != nil {
		return err
	}

	q := r.client.from(expensesTable).Update(body, "representation", "").Eq("id", id(expenseID))

	var updated []domain.Row
	if _, err := execute(ctx, expensesTable, q, &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// CountByAccount asks for the exact count without transferring rows
func (r *ExpenseRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	q := r.client.from(expensesTable).
		Select("id", "exact", true).
		Eq("account_id", id(accountID))

	return execute(ctx, expensesTable, q, nil)
}
