package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/testutil"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowedOrigins = []string{"http://localhost:5173", "https://bizdesk.app"}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(session.Repositories{
		Accounts: testutil.NewMockExpenseAccountRepository(),
		Expenses: testutil.NewMockExpenseRepository(),
		People:   testutil.NewMockPersonRepository(),
	}, nil, time.Hour)
	t.Cleanup(store.Stop)
	return store
}

func TestWebSocketHandler_HandleWS_MissingSession(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), newTestStore(t), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_MalformedSession(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), newTestStore(t), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?session=not-a-uuid", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_UnknownSession(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), newTestStore(t), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?session=0b6c6f0e-3a55-4a5d-9d1b-2a3b2c1d0e9f", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_KnownSession_NoUpgrade(t *testing.T) {
	e := echo.New()
	store := newTestStore(t)
	sess, _ := store.Resolve("")
	h := NewWebSocketHandler(websocket.NewHub(), store, testAllowedOrigins)

	// known session but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/ws?session="+sess.ID.String(), nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	// gorilla/websocket fails the upgrade; the session checks passed first
	assert.Error(t, err)
	_, isHTTPErr := err.(*echo.HTTPError)
	assert.False(t, isHTTPErr)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), newTestStore(t), testAllowedOrigins)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin", "", true},
		{"allowed origin", "http://localhost:5173", true},
		{"production origin", "https://bizdesk.app", true},
		{"foreign origin", "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_ReceivesSessionEvents(t *testing.T) {
	hub := websocket.NewHub()
	store := session.NewStore(session.Repositories{
		Accounts: testutil.NewMockExpenseAccountRepository(),
		Expenses: testutil.NewMockExpenseRepository(),
		People:   testutil.NewMockPersonRepository(),
	}, hub, time.Hour)
	t.Cleanup(store.Stop)
	sess, _ := store.Resolve("")

	e := echo.New()
	h := NewWebSocketHandler(hub, store, testAllowedOrigins)
	e.GET("/ws", h.HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + sess.ID.String()
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount(sess.ID.String()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = sess.Directory.CreateOwner(t.Context(), "Ali")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), `"type":"expense_owner.created"`)
}
