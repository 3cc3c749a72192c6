package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeSelected EventType = "selected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeExpenseAccount EntityType = "expense_account"
	EntityTypeExpense        EntityType = "expense"
	EntityTypeExpenseOwner   EntityType = "expense_owner"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp, seq }. Seq is assigned per
// session feed when the event is published.
type Event struct {
	Type      string     `json:"type"`      // Combined type e.g. "expense.created"
	Entity    EntityType `json:"entity"`    // Entity type e.g. "expense"
	Payload   any        `json:"payload"`   // Full entity data
	Timestamp time.Time  `json:"timestamp"` // Event timestamp
	Seq       uint64     `json:"seq,omitempty"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseAccountCreated creates an expense_account.created event
func ExpenseAccountCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpenseAccount, payload)
}

// ExpenseAccountUpdated creates an expense_account.updated event
func ExpenseAccountUpdated(payload any) Event {
	return NewEvent(EventTypeUpdated, EntityTypeExpenseAccount, payload)
}

// ExpenseAccountDeleted creates an expense_account.deleted event
func ExpenseAccountDeleted(payload any) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpenseAccount, payload)
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseUpdated creates an expense.updated event
func ExpenseUpdated(payload any) Event {
	return NewEvent(EventTypeUpdated, EntityTypeExpense, payload)
}

// ExpenseAccountSelected creates an expense_account.selected event, sent when
// the ledger switches to another account
func ExpenseAccountSelected(payload any) Event {
	return NewEvent(EventTypeSelected, EntityTypeExpenseAccount, payload)
}

// ExpenseOwnerCreated creates an expense_owner.created event
func ExpenseOwnerCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpenseOwner, payload)
}
