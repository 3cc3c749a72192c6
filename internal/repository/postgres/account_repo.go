package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

const expenseAccountsTable = "expense_accounts"

var expenseAccountColumns = []string{"id", "name", "category", "description", "is_active", "created_at", "updated_at"}

// ExpenseAccountRepository implements domain.ExpenseAccountRepository using PostgreSQL
type ExpenseAccountRepository struct {
	db database.PGXDB
}

// NewExpenseAccountRepository creates a new ExpenseAccountRepository
func NewExpenseAccountRepository(db database.PGXDB) *ExpenseAccountRepository {
	return &ExpenseAccountRepository{db: db}
}

// List returns accounts ordered by category, then name
func (r *ExpenseAccountRepository) List(ctx context.Context, filter domain.ExpenseAccountFilter) ([]*domain.ExpenseAccount, error) {
	q := psql.Select(expenseAccountColumns...).
		From(expenseAccountsTable).
		OrderBy("category", "name")
	if filter.ActiveOnly {
		q = q.Where(sq.Eq{"is_active": true})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, mapError(err, "build account list query", domain.ErrAccountNotFound)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list expense accounts", domain.ErrAccountNotFound)
	}
	accounts, err := pgx.CollectRows(rows, scanExpenseAccount)
	if err != nil {
		return nil, mapError(err, "scan expense accounts", domain.ErrAccountNotFound)
	}
	return accounts, nil
}

// GetByID retrieves one account
func (r *ExpenseAccountRepository) GetByID(ctx context.Context, id int64) (*domain.ExpenseAccount, error) {
	query, args, err := psql.Select(expenseAccountColumns...).
		From(expenseAccountsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, mapError(err, "build account query", domain.ErrAccountNotFound)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "get expense account", domain.ErrAccountNotFound)
	}
	account, err := pgx.CollectExactlyOneRow(rows, scanExpenseAccount)
	if err != nil {
		return nil, mapError(err, "get expense account", domain.ErrAccountNotFound)
	}
	return account, nil
}

// Create inserts an account and returns the stored row
func (r *ExpenseAccountRepository) Create(ctx context.Context, account *domain.ExpenseAccount) (*domain.ExpenseAccount, error) {
	query, args, err := psql.Insert(expenseAccountsTable).
		Columns("name", "category", "description", "is_active").
		Values(account.Name, string(account.Category), nullableText(account.Description), account.IsActive).
		Suffix("RETURNING " + joinColumns(expenseAccountColumns)).
		ToSql()
	if err != nil {
		return nil, mapError(err, "build account insert", domain.ErrAccountNotFound)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "create expense account", domain.ErrAccountNotFound)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanExpenseAccount)
	if err != nil {
		return nil, mapError(err, "create expense account", domain.ErrAccountNotFound)
	}
	return created, nil
}

// Update writes only the fields present in update
func (r *ExpenseAccountRepository) Update(ctx context.Context, id int64, update domain.ExpenseAccountUpdate) error {
	set := map[string]any{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = nullableText(*update.Description)
	}
	if update.Category != nil {
		set["category"] = string(*update.Category)
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}

	query, args, err := psql.Update(expenseAccountsTable).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return mapError(err, "build account update", domain.ErrAccountNotFound)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "update expense account", domain.ErrAccountNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "update expense account", domain.ErrAccountNotFound)
	}
	return nil
}

// Delete removes an account. Accounts referenced by expenses are rejected by
// the foreign key.
func (r *ExpenseAccountRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(expenseAccountsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return mapError(err, "build account delete", domain.ErrAccountNotFound)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewConflictError("expense account", "account is referenced by expenses")
		}
		return mapError(err, "delete expense account", domain.ErrAccountNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "delete expense account", domain.ErrAccountNotFound)
	}
	return nil
}

func scanExpenseAccount(row pgx.CollectableRow) (*domain.ExpenseAccount, error) {
	var (
		a           domain.ExpenseAccount
		category    string
		description *string
	)
	if err := row.Scan(&a.ID, &a.Name, &category, &description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Category = domain.ExpenseCategory(category)
	if description != nil {
		a.Description = *description
	}
	return &a, nil
}
