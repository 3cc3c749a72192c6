package database_test

import (
	"context"
	"testing"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesTables(t *testing.T) {
	pool := dbtest.SetupTestDB(t)
	ctx := context.Background()

	for _, table := range dbtest.Tables {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestMigrate_OwnerPairCheck(t *testing.T) {
	pool := dbtest.SetupTestDB(t)
	ctx := context.Background()

	var accountID int64
	require.NoError(t, pool.QueryRow(ctx,
		"INSERT INTO expense_accounts (name, category) VALUES ('Wages', 'Salary') RETURNING id",
	).Scan(&accountID))

	_, err := pool.Exec(ctx, `INSERT INTO expenses (date, category, name, amount, payment_method, owner_type, account_id)
		VALUES ('2024-01-01', 'Salary', 'x', 1, 'Cash', 'owner', $1)`, accountID)
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := dbtest.SetupTestDB(t)

	require.NoError(t, database.Migrate(context.Background(), pool.Config().ConnString()))
}
