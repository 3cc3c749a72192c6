package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when sending to a closed subscriber
	ErrClientClosed = errors.New("client is closed")
	// ErrClientTooSlow is returned when a subscriber's queue is full
	ErrClientTooSlow = errors.New("client send queue is full")
)

// Subscriber is one listener on a session's change feed
type Subscriber interface {
	ID() string
	SessionID() string
	Send(data []byte) error
	Close() error
}

// feed is the subscriber set of one session. seq numbers the events it has
// delivered so a client can tell when it missed one.
type feed struct {
	subscribers map[string]Subscriber
	seq         uint64
}

// Hub routes change events to the subscribers of each session. Events of one
// session are queued to every subscriber in publish order.
type Hub struct {
	mu    sync.Mutex
	feeds map[string]*feed
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{feeds: make(map[string]*feed)}
}

// Register attaches a subscriber to its session's feed
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.feeds[s.SessionID()]
	if !ok {
		f = &feed{subscribers: make(map[string]Subscriber)}
		h.feeds[s.SessionID()] = f
	}
	f.subscribers[s.ID()] = s

	log.Debug().
		Str("session_id", s.SessionID()).
		Str("client_id", s.ID()).
		Int("subscribers", len(f.subscribers)).
		Msg("Feed subscriber attached")
}

// Unregister detaches a subscriber. The feed goes away with its last one.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.feeds[s.SessionID()]
	if !ok {
		return
	}
	if _, ok := f.subscribers[s.ID()]; !ok {
		return
	}
	delete(f.subscribers, s.ID())
	if len(f.subscribers) == 0 {
		delete(h.feeds, s.SessionID())
	}

	log.Debug().
		Str("session_id", s.SessionID()).
		Str("client_id", s.ID()).
		Msg("Feed subscriber detached")
}

// Publish stamps event with the feed's next sequence number and queues it on
// every subscriber of the session. A subscriber that cannot take the event is
// detached and closed; it reloads state when it reconnects.
func (h *Hub) Publish(sessionID string, event Event) {
	h.mu.Lock()
	f, ok := h.feeds[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}

	f.seq++
	event.Seq = f.seq
	data, err := event.ToJSON()
	if err != nil {
		f.seq--
		h.mu.Unlock()
		log.Error().Err(err).Str("session_id", sessionID).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	var dropped []Subscriber
	for id, s := range f.subscribers {
		if err := s.Send(data); err != nil {
			delete(f.subscribers, id)
			dropped = append(dropped, s)
		}
	}
	if len(f.subscribers) == 0 {
		delete(h.feeds, sessionID)
	}
	h.mu.Unlock()

	for _, s := range dropped {
		log.Warn().Str("session_id", sessionID).Str("client_id", s.ID()).Msg("Dropping feed subscriber that fell behind")
		_ = s.Close()
	}
}

// CloseSession detaches and closes every subscriber of a session and returns
// how many there were
func (h *Hub) CloseSession(sessionID string) int {
	h.mu.Lock()
	f, ok := h.feeds[sessionID]
	delete(h.feeds, sessionID)
	h.mu.Unlock()

	if !ok {
		return 0
	}
	for _, s := range f.subscribers {
		_ = s.Close()
	}
	log.Debug().Str("session_id", sessionID).Int("subscribers", len(f.subscribers)).Msg("Session feed closed")
	return len(f.subscribers)
}

// ClientCount returns the number of subscribers of a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f, ok := h.feeds[sessionID]; ok {
		return len(f.subscribers)
	}
	return 0
}

// TotalClientCount returns the number of subscribers across all sessions
func (h *Hub) TotalClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for _, f := range h.feeds {
		total += len(f.subscribers)
	}
	return total
}
