package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/labstack/echo/v4"
)

// SessionHandler reports the state of the caller's session
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// SessionStatusResponse represents the session status in API responses
type SessionStatusResponse struct {
	SessionID         string                `json:"sessionId"`
	Pending           session.PendingWrites `json:"pending"`
	SelectedAccountID int64                 `json:"selectedAccountId"`
	CreatedAt         string                `json:"createdAt"`
}

// GetStatus handles GET /api/v1/session/status
func (h *SessionHandler) GetStatus(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewInternalError(c, "Session required")
	}

	return c.JSON(http.StatusOK, SessionStatusResponse{
		SessionID:         sess.ID.String(),
		Pending:           sess.Pending(),
		SelectedAccountID: sess.Ledger.SelectedAccountID(),
		CreatedAt:         sess.CreatedAt.Format(time.RFC3339),
	})
}
