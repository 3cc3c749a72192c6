package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// testEnv bundles a session with the in-memory repositories behind it
type testEnv struct {
	e         *echo.Echo
	accounts  *testutil.MockExpenseAccountRepository
	expenses  *testutil.MockExpenseRepository
	people    *testutil.MockPersonRepository
	publisher *testutil.MockEventPublisher
	sess      *session.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		e:         echo.New(),
		accounts:  testutil.NewMockExpenseAccountRepository(),
		expenses:  testutil.NewMockExpenseRepository(),
		people:    testutil.NewMockPersonRepository(),
		publisher: testutil.NewMockEventPublisher(),
	}
	env.sess = session.New(uuid.New(), env.repos(), env.publisher)
	return env
}

func (env *testEnv) repos() session.Repositories {
	return session.Repositories{
		Accounts: env.accounts,
		Expenses: env.expenses,
		People:   env.people,
	}
}

// newContext builds an echo context carrying the env session
func (env *testEnv) newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, env.sess))
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

func noSessionContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}
