package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database/dbtest"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/repository/postgres"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseAccountRepository_CRUD(t *testing.T) {
	pool := dbtest.SetupTestDB(t)
	repo := postgres.NewExpenseAccountRepository(pool)
	ctx := context.Background()

	rent, err := repo.Create(ctx, &domain.ExpenseAccount{Name: "Office Rent", Category: domain.CategoryRent, IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, rent.ID)
	assert.Empty(t, rent.Description)
	assert.False(t, rent.CreatedAt.IsZero())

	_, err = repo.Create(ctx, &domain.ExpenseAccount{Name: "Adverts", Category: domain.CategoryMarketing, Description: "Online", IsActive: false})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.ExpenseAccount{Name: "Billboards", Category: domain.CategoryMarketing, IsActive: true})
	require.NoError(t, err)

	all, err := repo.List(ctx, domain.ExpenseAccountFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Adverts", "Billboards", "Office Rent"}, []string{all[0].Name, all[1].Name, all[2].Name})
	assert.Equal(t, "Online", all[0].Description)

	active, err := repo.List(ctx, domain.ExpenseAccountFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	inactive := false
	require.NoError(t, repo.Update(ctx, rent.ID, domain.ExpenseAccountUpdate{IsActive: &inactive}))
	got, err := repo.GetByID(ctx, rent.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Office Rent", got.Name)

	name := "Missing"
	err = repo.Update(ctx, 9999, domain.ExpenseAccountUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, repo.Delete(ctx, rent.ID))
	_, err = repo.GetByID(ctx, rent.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestExpenseRepository_InsertListCount(t *testing.T) {
	pool := dbtest.SetupTestDB(t)
	accounts := postgres.NewExpenseAccountRepository(pool)
	repo := postgres.NewExpenseRepository(pool)
	ctx := context.Background()

	account, err := accounts.Create(ctx, &domain.ExpenseAccount{Name: "Office Rent", Category: domain.CategoryRent, IsActive: true})
	require.NoError(t, err)

	older, err := repo.Insert(ctx, domain.Row{
		"date": "2024-01-10", "category": "Rent", "name": "January", "description": nil,
		"amount": decimal.RequireFromString("5000.00"), "payment_method": "Bank",
		"owner_id": nil, "owner_type": nil, "account_id": account.ID,
	})
	require.NoError(t, err)
	newer, err := repo.Insert(ctx, domain.Row{
		"date": "2024-02-10", "category": "Rent", "name": "February", "description": "late",
		"amount": decimal.RequireFromString("5000.50"), "payment_method": "Cash",
		"owner_id": int64(3), "owner_type": "owner", "account_id": account.ID,
	})
	require.NoError(t, err)
	assert.NotNil(t, newer["id"])

	rows, err := repo.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer["id"], rows[0]["id"])
	assert.Equal(t, older["id"], rows[1]["id"])
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), rows[0]["date"])

	count, err := repo.CountByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	err = accounts.Delete(ctx, account.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, repo.Update(ctx, older["id"].(int64), domain.Row{"name": "Jan", "amount": decimal.NewFromInt(10)}))
	rows, err = repo.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jan", rows[1]["name"])

	err = repo.Update(ctx, 424242, domain.Row{"name": "x"})
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
}

func TestExpenseRepository_Constraints(t *testing.T) {
	pool := dbtest.SetupTestDB(t)
	accounts := postgres.NewExpenseAccountRepository(pool)
	repo := postgres.NewExpenseRepository(pool)
	ctx := context.Background()

	account, err := accounts.Create(ctx, &domain.ExpenseAccount{Name: "Wages", Category: domain.CategorySalary, IsActive: true})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, domain.Row{
		"date": "2024-01-10", "category": "Salary", "name": "x", "amount": "1",
		"payment_method": "Cash", "owner_id": int64(1), "owner_type": nil, "account_id": account.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = repo.Insert(ctx, domain.Row{
		"date": "2024-01-10", "category": "Salary", "name": "x", "amount": "1",
		"payment_method": "Cash", "account_id": int64(98765),
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestPersonRepository(t *testing.T) {
	pool := dbtest.SetupTestDB(t)
	repo := postgres.NewPersonRepository(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "INSERT INTO salesmen (name) VALUES ('Zaid'), ('Budi')")
	require.NoError(t, err)

	salesmen, err := repo.ListSalesmen(ctx)
	require.NoError(t, err)
	require.Len(t, salesmen, 2)
	assert.Equal(t, "Budi", salesmen[0].Name)

	owner, err := repo.CreateOwner(ctx, "Ali")
	require.NoError(t, err)
	assert.NotZero(t, owner.ID)

	owners, err := repo.ListOwners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "Ali", owners[0].Name)
}
