package websocket

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients attached to the given session
	Publish(sessionID string, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// NoOpPublisher drops every event; used when no feed is served
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(sessionID string, event Event) {}
