// Package session keeps the per-client component bundle: each browser session
// owns its own account list, selected-account ledger and owner list.
package session

import (
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/service"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/google/uuid"
)

// Repositories are the backend tables shared by every session
type Repositories struct {
	Accounts domain.ExpenseAccountRepository
	Expenses domain.ExpenseRepository
	People   domain.PersonRepository
}

// Session is one client's set of stateful components
type Session struct {
	ID        uuid.UUID
	Registry  *service.AccountRegistry
	Ledger    *service.ExpenseLedger
	Directory *service.OwnerDirectory
	CreatedAt time.Time
}

// PendingWrites reports which resources have a write in flight
type PendingWrites struct {
	Accounts bool `json:"accounts"`
	Expenses bool `json:"expenses"`
	Owners   bool `json:"owners"`
}

// New builds a session whose components publish change events under its id
func New(id uuid.UUID, repos Repositories, publisher websocket.EventPublisher) *Session {
	s := &Session{
		ID:        id,
		Registry:  service.NewAccountRegistry(repos.Accounts, repos.Expenses),
		Ledger:    service.NewExpenseLedger(repos.Expenses, repos.Accounts),
		Directory: service.NewOwnerDirectory(repos.People),
		CreatedAt: time.Now(),
	}
	if publisher != nil {
		channel := id.String()
		s.Registry.SetEventPublisher(publisher, channel)
		s.Ledger.SetEventPublisher(publisher, channel)
		s.Directory.SetEventPublisher(publisher, channel)
	}
	return s
}

// Pending returns the pending-write flags of all components
func (s *Session) Pending() PendingWrites {
	return PendingWrites{
		Accounts: s.Registry.WritePending(),
		Expenses: s.Ledger.WritePending(),
		Owners:   s.Directory.WritePending(),
	}
}
