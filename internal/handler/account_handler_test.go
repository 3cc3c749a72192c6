package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodPost, "/api/v1/expense-accounts",
		`{"name": "  Office Rent ", "category": "Rent", "description": "HQ lease"}`)

	require.NoError(t, h.CreateAccount(c))
	requireStatus(t, rec, http.StatusCreated)

	resp := decode[AccountResponse](t, rec)
	assert.Equal(t, "Office Rent", resp.Name)
	assert.Equal(t, "Rent", resp.Category)
	assert.True(t, resp.IsActive)
	require.NotNil(t, resp.Description)
	assert.Equal(t, "HQ lease", *resp.Description)

	assert.Len(t, env.sess.Registry.Accounts(), 1)
	assert.Equal(t, []string{"expense_account.created"}, env.publisher.Types())
}

func TestCreateAccount_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"blank name", `{"name": "   ", "category": "Rent"}`, "name"},
		{"unknown category", `{"name": "Fuel", "category": "Fuel"}`, "category"},
		{"lowercase category", `{"name": "Fuel", "category": "rent"}`, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewAccountHandler()

			c, rec := env.newContext(http.MethodPost, "/api/v1/expense-accounts", tt.body)

			require.NoError(t, h.CreateAccount(c))
			requireStatus(t, rec, http.StatusBadRequest)

			problem := decode[ProblemDetails](t, rec)
			assert.Equal(t, ErrorTypeValidation, problem.Type)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Zero(t, env.accounts.CallCount())
		})
	}
}

func TestCreateAccount_BackendFailure(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.CreateFn = func(ctx context.Context, account *domain.ExpenseAccount) (*domain.ExpenseAccount, error) {
		return nil, errors.New("connection refused")
	}
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodPost, "/api/v1/expense-accounts", `{"name": "Fuel", "category": "Transportation"}`)

	require.NoError(t, h.CreateAccount(c))
	requireStatus(t, rec, http.StatusBadGateway)
	assert.Empty(t, env.sess.Registry.Accounts())
}

func TestGetAccounts_AllBecomesSessionList(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Office Rent", Category: domain.CategoryRent, IsActive: true})
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Electricity", Category: domain.CategoryUtilities, IsActive: false})
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Ads", Category: domain.CategoryMarketing, IsActive: true})
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodGet, "/api/v1/expense-accounts", "")
	require.NoError(t, h.GetAccounts(c))
	requireStatus(t, rec, http.StatusOK)

	resp := decode[[]AccountResponse](t, rec)
	require.Len(t, resp, 3)
	assert.Equal(t, []string{"Marketing", "Rent", "Utilities"},
		[]string{resp[0].Category, resp[1].Category, resp[2].Category})
	assert.Len(t, env.sess.Registry.Accounts(), 3)

	c, rec = env.newContext(http.MethodGet, "/api/v1/expense-accounts/session", "")
	require.NoError(t, h.GetSessionAccounts(c))
	assert.Len(t, decode[[]AccountResponse](t, rec), 3)
}

func TestGetAccounts_ActiveWithCategory(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Office Rent", Category: domain.CategoryRent, IsActive: true})
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Warehouse", Category: domain.CategoryRent, IsActive: false})
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Ads", Category: domain.CategoryMarketing, IsActive: true})
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodGet, "/api/v1/expense-accounts?active=true&category=Rent", "")
	require.NoError(t, h.GetAccounts(c))
	requireStatus(t, rec, http.StatusOK)

	resp := decode[[]AccountResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "Office Rent", resp[0].Name)

	// the active listing never replaces the session list
	assert.Empty(t, env.sess.Registry.Accounts())
}

func TestGetAccounts_InvalidCategory(t *testing.T) {
	env := newTestEnv(t)
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodGet, "/api/v1/expense-accounts?category=Food", "")
	require.NoError(t, h.GetAccounts(c))
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Zero(t, env.accounts.CallCount())
}

func TestGetCategories(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Office Rent", Category: domain.CategoryRent, IsActive: true})
	env.accounts.AddAccount(&domain.ExpenseAccount{Name: "Old Van", Category: domain.CategoryTransportation, IsActive: false})
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodGet, "/api/v1/expense-accounts/categories", "")
	require.NoError(t, h.GetCategories(c))
	requireStatus(t, rec, http.StatusOK)

	resp := decode[CategoriesResponse](t, rec)
	assert.Len(t, resp.All, 8)
	assert.Equal(t, "Salary", resp.All[0])
	assert.Equal(t, []string{"Rent"}, resp.Active)
}

func TestUpdateAccount_PartialMerge(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{ID: 4, Name: "Office Rent", Category: domain.CategoryRent, Description: "HQ", IsActive: true})
	h := NewAccountHandler()
	_, err := env.sess.Registry.ListAllAccounts(context.Background())
	require.NoError(t, err)

	c, rec := env.newContext(http.MethodPatch, "/api/v1/expense-accounts/4", `{"name": "HQ Rent"}`)
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, h.UpdateAccount(c))
	requireStatus(t, rec, http.StatusOK)

	resp := decode[AccountResponse](t, rec)
	assert.Equal(t, "HQ Rent", resp.Name)
	assert.Equal(t, "Rent", resp.Category)
	require.NotNil(t, resp.Description)
	assert.Equal(t, "HQ", *resp.Description)
}

func TestUpdateAccount_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodPatch, "/api/v1/expense-accounts/4", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, h.UpdateAccount(c))
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Zero(t, env.accounts.CallCount())
}

func TestUpdateAccount_InvalidID(t *testing.T) {
	env := newTestEnv(t)
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodPatch, "/api/v1/expense-accounts/abc", `{"name": "x"}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.UpdateAccount(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestSetActive(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{ID: 2, Name: "Ads", Category: domain.CategoryMarketing, IsActive: true})
	h := NewAccountHandler()
	_, err := env.sess.Registry.ListAllAccounts(context.Background())
	require.NoError(t, err)

	c, rec := env.newContext(http.MethodPut, "/api/v1/expense-accounts/2/active", `{"isActive": false}`)
	c.SetParamNames("id")
	c.SetParamValues("2")

	require.NoError(t, h.SetActive(c))
	requireStatus(t, rec, http.StatusOK)
	assert.False(t, decode[AccountResponse](t, rec).IsActive)
	assert.False(t, env.accounts.Accounts[2].IsActive)
}

func TestSetActive_MissingFlag(t *testing.T) {
	env := newTestEnv(t)
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodPut, "/api/v1/expense-accounts/2/active", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("2")

	require.NoError(t, h.SetActive(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestDeleteAccount_WithExpensesConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{ID: 3, Name: "Fuel", Category: domain.CategoryTransportation, IsActive: true})
	env.expenses.AddRow(domain.Row{"account_id": int64(3), "date": "2024-01-02", "amount": "10"})
	env.expenses.AddRow(domain.Row{"account_id": int64(3), "date": "2024-01-03", "amount": "12"})
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodDelete, "/api/v1/expense-accounts/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.DeleteAccount(c))
	requireStatus(t, rec, http.StatusConflict)

	problem := decode[ProblemDetails](t, rec)
	assert.Contains(t, problem.Detail, "(2)")
	assert.Contains(t, env.accounts.Accounts, int64(3))
}

func TestDeleteAccount_Success(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.AddAccount(&domain.ExpenseAccount{ID: 3, Name: "Fuel", Category: domain.CategoryTransportation, IsActive: true})
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodDelete, "/api/v1/expense-accounts/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.DeleteAccount(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.accounts.Accounts, int64(3))
}

func TestDeleteAccount_NotFound(t *testing.T) {
	env := newTestEnv(t)
	h := NewAccountHandler()

	c, rec := env.newContext(http.MethodDelete, "/api/v1/expense-accounts/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.DeleteAccount(c))
	requireStatus(t, rec, http.StatusNotFound)
}

func TestAccountHandler_NoSession(t *testing.T) {
	h := NewAccountHandler()

	c, rec := noSessionContext(http.MethodGet, "/api/v1/expense-accounts")
	require.NoError(t, h.GetAccounts(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
