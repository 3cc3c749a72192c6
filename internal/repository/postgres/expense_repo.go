package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

const expensesTable = "expenses"

var expenseColumns = []string{
	"id", "date", "category", "name", "description", "amount",
	"payment_method", "owner_id", "owner_type", "account_id", "created_at", "updated_at",
}

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL.
// Rows are returned as column maps holding pgx native values.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ListByAccount returns the expenses of one account, newest date first and
// insertion order within a day
func (r *ExpenseRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Row, error) {
	query, args, err := psql.Select(expenseColumns...).
		From(expensesTable).
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("date DESC", "id").
		ToSql()
	if err != nil {
		return nil, mapError(err, "build expense list query", domain.ErrExpenseNotFound)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list expenses", domain.ErrExpenseNotFound)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapError(err, "scan expenses", domain.ErrExpenseNotFound)
	}

	result := make([]domain.Row, len(maps))
	for i, m := range maps {
		result[i] = m
	}
	return result, nil
}

// Insert stores row and returns the stored record
func (r *ExpenseRepository) Insert(ctx context.Context, row domain.Row) (domain.Row, error) {
	query, args, err := psql.Insert(expensesTable).
		SetMap(row).
		Suffix("RETURNING " + joinColumns(expenseColumns)).
		ToSql()
	if err != nil {
		return nil, mapError(err, "build expense insert", domain.ErrExpenseNotFound)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "create expense", domain.ErrExpenseNotFound)
	}
	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapError(err, "create expense", domain.ErrExpenseNotFound)
	}
	return created, nil
}

// Update overwrites the columns present in row
func (r *ExpenseRepository) Update(ctx context.Context, id int64, row domain.Row) error {
	set := make(map[string]any, len(row)+1)
	for k, v := range row {
		if k == "id" || k == "created_at" {
			continue
		}
		set[k] = v
	}
	set["updated_at"] = time.Now().UTC()

	query, args, err := psql.Update(expensesTable).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return mapError(err, "build expense update", domain.ErrExpenseNotFound)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "update expense", domain.ErrExpenseNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "update expense", domain.ErrExpenseNotFound)
	}
	return nil
}

// CountByAccount counts the expenses referencing accountID
func (r *ExpenseRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(expensesTable).
		Where(sq.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return 0, mapError(err, "build expense count", domain.ErrExpenseNotFound)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, mapError(err, "count expenses", domain.ErrExpenseNotFound)
	}
	return count, nil
}
