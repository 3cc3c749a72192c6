package session

import (
	"sync"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store holds live sessions and expires the idle ones
type Store struct {
	sessions  map[uuid.UUID]*entry
	mu        sync.Mutex
	repos     Repositories
	publisher websocket.EventPublisher
	ttl       time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewStore creates a Store and starts its cleanup goroutine
func NewStore(repos Repositories, publisher websocket.EventPublisher, ttl time.Duration) *Store {
	s := &Store{
		sessions:  make(map[uuid.UUID]*entry),
		repos:     repos,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Resolve returns the session for raw. An empty, malformed or expired id
// yields a fresh session; created reports which case applied.
func (s *Store) Resolve(raw string) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if id, err := uuid.Parse(raw); err == nil {
		if e, ok := s.sessions[id]; ok {
			e.lastSeen = now
			return e.session, false
		}
	}

	id := uuid.New()
	sess = New(id, s.repos, s.publisher)
	s.sessions[id] = &entry{session: sess, lastSeen: now}
	log.Debug().Str("session_id", id.String()).Msg("Session created")
	return sess, true
}

// Get returns a live session without creating one
func (s *Store) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.session, true
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// feedCloser is implemented by publishers that hold live connections per
// session
type feedCloser interface {
	CloseSession(sessionID string) int
}

// Sweep removes sessions idle for longer than the TTL, closes their change
// feeds and returns how many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []uuid.UUID
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	closer, hasFeeds := s.publisher.(feedCloser)
	for _, id := range expired {
		event := log.Debug().Str("session_id", id.String())
		if hasFeeds {
			event = event.Int("subscribers", closer.CloseSession(id.String()))
		}
		event.Msg("Expired idle session")
	}
	return len(expired)
}

func (s *Store) cleanup() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
