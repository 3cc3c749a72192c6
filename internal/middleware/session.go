package middleware

import (
	"context"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/labstack/echo/v4"
)

// SessionHeader carries the client session id in both directions
const SessionHeader = "X-Session-ID"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// SessionKey is the context key for the resolved session
const SessionKey contextKey = "session"

// SessionResolver finds or creates the session for a raw id
type SessionResolver interface {
	Resolve(raw string) (*session.Session, bool)
}

// Session returns an Echo middleware that attaches the caller's session to
// the request context and echoes its id in the response header. The id is
// read from the X-Session-ID header, falling back to the "session" query
// parameter used by WebSocket clients.
func Session(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(SessionHeader)
			if raw == "" {
				raw = c.QueryParam("session")
			}

			sess, _ := resolver.Resolve(raw)
			c.Response().Header().Set(SessionHeader, sess.ID.String())

			ctx := context.WithValue(c.Request().Context(), SessionKey, sess)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetSession extracts the session from the request context
func GetSession(c echo.Context) *session.Session {
	if sess, ok := c.Request().Context().Value(SessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}
