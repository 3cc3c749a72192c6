package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/testutil"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, burst int) (*echo.Echo, *session.Store) {
	t.Helper()
	hub := websocket.NewHub()
	store := session.NewStore(session.Repositories{
		Accounts: testutil.NewMockExpenseAccountRepository(),
		Expenses: testutil.NewMockExpenseRepository(),
		People:   testutil.NewMockPersonRepository(),
	}, hub, time.Hour)
	t.Cleanup(store.Stop)

	limiter := middleware.NewRateLimiter(0.001, burst)
	t.Cleanup(limiter.Stop)

	e := echo.New()
	RegisterRoutes(e,
		middleware.Session(store),
		middleware.RateLimitMiddleware(limiter),
		NewAccountHandler(),
		NewExpenseHandler(),
		NewOwnerHandler(),
		NewSessionHandler(),
		NewWebSocketHandler(hub, store, testAllowedOrigins),
	)
	return e, store
}

func serve(e *echo.Echo, method, target, sessionID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_SessionLifecycle(t *testing.T) {
	e, store := newTestServer(t, 10)

	rec := serve(e, http.MethodPost, "/api/v1/expense-accounts", "", `{"name": "Office Rent", "category": "Rent"}`)
	requireStatus(t, rec, http.StatusCreated)
	sessionID := rec.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, 1, store.Len())

	// the created account is in this session's list only
	rec = serve(e, http.MethodGet, "/api/v1/expense-accounts/session", sessionID, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]AccountResponse](t, rec), 1)

	rec = serve(e, http.MethodGet, "/api/v1/expense-accounts/session", "", "")
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode[[]AccountResponse](t, rec))
	assert.NotEqual(t, sessionID, rec.Header().Get(middleware.SessionHeader))
	assert.Equal(t, 2, store.Len())
}

func TestRoutes_ExpenseFlow(t *testing.T) {
	e, _ := newTestServer(t, 10)

	rec := serve(e, http.MethodPost, "/api/v1/expense-accounts", "", `{"name": "Office Rent", "category": "Rent"}`)
	requireStatus(t, rec, http.StatusCreated)
	sessionID := rec.Header().Get(middleware.SessionHeader)
	account := decode[AccountResponse](t, rec)

	rec = serve(e, http.MethodPut, "/api/v1/expenses/selection", sessionID, `{"accountId": 1}`)
	requireStatus(t, rec, http.StatusOK)

	rec = serve(e, http.MethodPost, "/api/v1/expenses", sessionID,
		`{"accountId": 1, "date": "2024-03-01", "amount": "5000", "paymentMethod": "Bank"}`)
	requireStatus(t, rec, http.StatusCreated)
	assert.Equal(t, account.Name, decode[ExpenseResponse](t, rec).Name)

	rec = serve(e, http.MethodGet, "/api/v1/expenses/selection", sessionID, "")
	requireStatus(t, rec, http.StatusOK)
	selection := decode[SelectionResponse](t, rec)
	assert.Equal(t, account.ID, selection.AccountID)
	assert.Len(t, selection.Expenses, 1)

	rec = serve(e, http.MethodDelete, "/api/v1/expense-accounts/1", sessionID, "")
	requireStatus(t, rec, http.StatusConflict)

	rec = serve(e, http.MethodGet, "/api/v1/session/status", sessionID, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, int64(1), decode[SessionStatusResponse](t, rec).SelectedAccountID)
}

func TestRoutes_WritesAreRateLimited(t *testing.T) {
	e, _ := newTestServer(t, 2)

	rec := serve(e, http.MethodPost, "/api/v1/people/owners", "", `{"name": "Ali"}`)
	requireStatus(t, rec, http.StatusCreated)
	sessionID := rec.Header().Get(middleware.SessionHeader)

	rec = serve(e, http.MethodPost, "/api/v1/people/owners", sessionID, `{"name": "Budi"}`)
	requireStatus(t, rec, http.StatusCreated)

	rec = serve(e, http.MethodPost, "/api/v1/people/owners", sessionID, `{"name": "Citra"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// reads are never throttled
	rec = serve(e, http.MethodGet, "/api/v1/people/owners", sessionID, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
}
