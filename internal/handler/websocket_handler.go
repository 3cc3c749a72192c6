package handler

import (
	"net/http"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionLookup finds a live session without creating one
type SessionLookup interface {
	Get(id uuid.UUID) (*session.Session, bool)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	sessions       SessionLookup
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, sessions SessionLookup, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		sessions:       sessions,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws?session=<id>.
// The session must already exist; the change feed never creates one.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	raw := c.QueryParam("session")
	if raw == "" {
		log.Debug().Msg("WebSocket connection rejected: missing session")
		return echo.NewHTTPError(http.StatusBadRequest, "missing session")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: malformed session")
		return echo.NewHTTPError(http.StatusBadRequest, "malformed session")
	}

	sess, ok := h.sessions.Get(id)
	if !ok {
		log.Debug().Str("session_id", raw).Msg("WebSocket connection rejected: unknown session")
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, sess.ID.String(), h.hub)
	h.hub.Register(client)

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.Serve()

	return nil
}
