package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
)

// MockExpenseAccountRepository is an in-memory domain.ExpenseAccountRepository
type MockExpenseAccountRepository struct {
	mu       sync.Mutex
	Accounts map[int64]*domain.ExpenseAccount
	NextID   int64
	Calls    int

	ListFn    func(ctx context.Context, filter domain.ExpenseAccountFilter) ([]*domain.ExpenseAccount, error)
	GetByIDFn func(ctx context.Context, id int64) (*domain.ExpenseAccount, error)
	CreateFn  func(ctx context.Context, account *domain.ExpenseAccount) (*domain.ExpenseAccount, error)
	UpdateFn  func(ctx context.Context, id int64, update domain.ExpenseAccountUpdate) error
	DeleteFn  func(ctx context.Context, id int64) error
}

// NewMockExpenseAccountRepository creates a new MockExpenseAccountRepository
func NewMockExpenseAccountRepository() *MockExpenseAccountRepository {
	return &MockExpenseAccountRepository{
		Accounts: make(map[int64]*domain.ExpenseAccount),
		NextID:   1,
	}
}

// AddAccount stores an account directly (helper for tests)
func (m *MockExpenseAccountRepository) AddAccount(account *domain.ExpenseAccount) *domain.ExpenseAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		account.ID = m.NextID
	}
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	m.Accounts[account.ID] = account
	return account
}

// CallCount returns the number of repository calls made so far
func (m *MockExpenseAccountRepository) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// List returns accounts ordered by category, then name
func (m *MockExpenseAccountRepository) List(ctx context.Context, filter domain.ExpenseAccountFilter) ([]*domain.ExpenseAccount, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	accounts := make([]*domain.ExpenseAccount, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		cp := *a
		accounts = append(accounts, &cp)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Category != accounts[j].Category {
			return accounts[i].Category < accounts[j].Category
		}
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}

// GetByID retrieves an account by its ID
func (m *MockExpenseAccountRepository) GetByID(ctx context.Context, id int64) (*domain.ExpenseAccount, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

// Create assigns the next ID and stores the account
func (m *MockExpenseAccountRepository) Create(ctx context.Context, account *domain.ExpenseAccount) (*domain.ExpenseAccount, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, account)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	stored := *account
	stored.ID = m.NextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.NextID++
	m.Accounts[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Update merges a partial update into a stored account
func (m *MockExpenseAccountRepository) Update(ctx context.Context, id int64, update domain.ExpenseAccountUpdate) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, update)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	merged := update.Apply(*a)
	merged.UpdatedAt = time.Now().UTC()
	m.Accounts[id] = &merged
	return nil
}

// Delete removes an account
func (m *MockExpenseAccountRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.Accounts, id)
	return nil
}

// MockExpenseRepository is an in-memory domain.ExpenseRepository storing raw rows
type MockExpenseRepository struct {
	mu     sync.Mutex
	Rows   map[int64]domain.Row
	NextID int64
	Calls  int

	ListByAccountFn  func(ctx context.Context, accountID int64) ([]domain.Row, error)
	InsertFn         func(ctx context.Context, row domain.Row) (domain.Row, error)
	UpdateFn         func(ctx context.Context, id int64, row domain.Row) error
	CountByAccountFn func(ctx context.Context, accountID int64) (int64, error)
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Rows:   make(map[int64]domain.Row),
		NextID: 1,
	}
}

// AddRow stores a row directly, assigning an id when it has none
func (m *MockExpenseRepository) AddRow(row domain.Row) domain.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := row["id"].(int64)
	if !ok || id == 0 {
		id = m.NextID
		row["id"] = id
	}
	if id >= m.NextID {
		m.NextID = id + 1
	}
	m.Rows[id] = row
	return row
}

// CallCount returns the number of repository calls made so far
func (m *MockExpenseRepository) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// ListByAccount returns the rows of one account ordered by date desc, then id
func (m *MockExpenseRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Row, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.ListByAccountFn != nil {
		return m.ListByAccountFn(ctx, accountID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]domain.Row, 0)
	for _, row := range m.Rows {
		if rowAccountID(row) == accountID {
			rows = append(rows, copyRow(row))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		di, dj := fmt.Sprint(rows[i]["date"]), fmt.Sprint(rows[j]["date"])
		if di != dj {
			return di > dj
		}
		return rows[i]["id"].(int64) < rows[j]["id"].(int64)
	})
	return rows, nil
}

// Insert stores a row and returns it with id and timestamps filled in
func (m *MockExpenseRepository) Insert(ctx context.Context, row domain.Row) (domain.Row, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.InsertFn != nil {
		return m.InsertFn(ctx, row)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := copyRow(row)
	now := time.Now().UTC()
	stored["id"] = m.NextID
	stored["created_at"] = now
	stored["updated_at"] = now
	m.NextID++
	m.Rows[stored["id"].(int64)] = stored
	return copyRow(stored), nil
}

// Update replaces the given columns of a stored row
func (m *MockExpenseRepository) Update(ctx context.Context, id int64, row domain.Row) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, row)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Rows[id]
	if !ok {
		return domain.ErrExpenseNotFound
	}
	for k, v := range row {
		stored[k] = v
	}
	stored["updated_at"] = time.Now().UTC()
	return nil
}

// CountByAccount counts the rows referencing accountID
func (m *MockExpenseRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.CountByAccountFn != nil {
		return m.CountByAccountFn(ctx, accountID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.Rows {
		if rowAccountID(row) == accountID {
			n++
		}
	}
	return n, nil
}

func rowAccountID(row domain.Row) int64 {
	switch v := row["account_id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func copyRow(row domain.Row) domain.Row {
	out := make(domain.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// MockPersonRepository is an in-memory domain.PersonRepository
type MockPersonRepository struct {
	mu          sync.Mutex
	Salesmen    []*domain.Person
	OwnerList   []*domain.Person
	NextOwnerID int64

	ListSalesmenFn func(ctx context.Context) ([]*domain.Person, error)
	ListOwnersFn   func(ctx context.Context) ([]*domain.Person, error)
	CreateOwnerFn  func(ctx context.Context, name string) (*domain.Person, error)
}

// NewMockPersonRepository creates a new MockPersonRepository
func NewMockPersonRepository() *MockPersonRepository {
	return &MockPersonRepository{NextOwnerID: 1}
}

// ListSalesmen returns salesmen ordered by name
func (m *MockPersonRepository) ListSalesmen(ctx context.Context) ([]*domain.Person, error) {
	if m.ListSalesmenFn != nil {
		return m.ListSalesmenFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedPeople(m.Salesmen), nil
}

// ListOwners returns expense owners ordered by name
func (m *MockPersonRepository) ListOwners(ctx context.Context) ([]*domain.Person, error) {
	if m.ListOwnersFn != nil {
		return m.ListOwnersFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedPeople(m.OwnerList), nil
}

// CreateOwner appends a new expense owner
func (m *MockPersonRepository) CreateOwner(ctx context.Context, name string) (*domain.Person, error) {
	if m.CreateOwnerFn != nil {
		return m.CreateOwnerFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	owner := &domain.Person{ID: m.NextOwnerID, Name: name}
	m.NextOwnerID++
	m.OwnerList = append(m.OwnerList, owner)
	out := *owner
	return &out, nil
}

func sortedPeople(people []*domain.Person) []*domain.Person {
	out := make([]*domain.Person, len(people))
	for i, p := range people {
		cp := *p
		out[i] = &cp
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	SessionID string
	Event     websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(sessionID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{SessionID: sessionID, Event: event})
}

// Types returns the combined type of every recorded event in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
