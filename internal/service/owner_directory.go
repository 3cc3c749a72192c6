package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// OwnerDirectory reads the salesmen and expense owner lists and creates
// expense owners. Read failures degrade to empty lists.
type OwnerDirectory struct {
	personRepo domain.PersonRepository

	eventPublisher websocket.EventPublisher
	channel        string

	mu     sync.Mutex
	owners []*domain.Person
	writes writeTracker
}

// NewOwnerDirectory creates a new OwnerDirectory
func NewOwnerDirectory(personRepo domain.PersonRepository) *OwnerDirectory {
	return &OwnerDirectory{personRepo: personRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (d *OwnerDirectory) SetEventPublisher(publisher websocket.EventPublisher, channel string) {
	d.eventPublisher = publisher
	d.channel = channel
}

// ListSalesmen returns all salesmen ordered by name, or an empty list when the
// backend cannot be read
func (d *OwnerDirectory) ListSalesmen(ctx context.Context) []domain.Person {
	salesmen, err := d.personRepo.ListSalesmen(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch salesmen")
		return []domain.Person{}
	}
	return copyPeople(salesmen)
}

// ListOwners returns all expense owners ordered by name, or an empty list when
// the backend cannot be read. The result is kept as the session's owner list.
func (d *OwnerDirectory) ListOwners(ctx context.Context) []domain.Person {
	owners, err := d.personRepo.ListOwners(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch expense owners")
		d.owners = nil
		return []domain.Person{}
	}
	d.owners = owners
	return copyPeople(owners)
}

// Owners returns the owner list from the last ListOwners call
func (d *OwnerDirectory) Owners() []domain.Person {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyPeople(d.owners)
}

// WritePending reports whether an owner write is in flight
func (d *OwnerDirectory) WritePending() bool {
	return d.writes.pending()
}

// CreateOwner inserts a new expense owner. The owner list is not refreshed;
// callers re-list to observe the new entry.
func (d *OwnerDirectory) CreateOwner(ctx context.Context, name string) (*domain.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "Name is required")
	}
	if len(name) > domain.MaxPersonNameLength {
		return nil, domain.NewValidationError("name",
			fmt.Sprintf("Name must be %d characters or less", domain.MaxPersonNameLength))
	}

	done := d.writes.begin()
	defer done()

	owner, err := d.personRepo.CreateOwner(ctx, name)
	if err != nil {
		return nil, domain.NewBackendError("create expense owner", err)
	}

	log.Info().Int64("owner_id", owner.ID).Str("name", owner.Name).Msg("Expense owner created")
	if d.eventPublisher != nil {
		d.eventPublisher.Publish(d.channel, websocket.ExpenseOwnerCreated(owner))
	}

	out := *owner
	return &out, nil
}

// PickerOption is one entry of the combined owner picker
type PickerOption struct {
	Token string            `json:"token"`
	Label string            `json:"label"`
	Kind  domain.PersonKind `json:"kind"`
}

// PickerOptions merges salesmen and owners into one list of picker entries,
// salesmen first, each identified by its composite owner token
func PickerOptions(salesmen, owners []domain.Person) []PickerOption {
	options := make([]PickerOption, 0, len(salesmen)+len(owners))
	for _, s := range salesmen {
		options = append(options, PickerOption{
			Token: domain.SalesmanOwner(s.ID).Token(),
			Label: s.Name,
			Kind:  domain.PersonKindSalesman,
		})
	}
	for _, o := range owners {
		options = append(options, PickerOption{
			Token: domain.ExpenseOwner(o.ID).Token(),
			Label: o.Name,
			Kind:  domain.PersonKindOwner,
		})
	}
	return options
}

// ResolveOwner decodes a picker token into an owner reference. The empty
// token means no owner.
func ResolveOwner(token string) (domain.OwnerRef, error) {
	ref, err := domain.ParseOwnerToken(token)
	if err != nil {
		return domain.OwnerRef{}, domain.NewValidationError("owner", err.Error())
	}
	return ref, nil
}

func copyPeople(people []*domain.Person) []domain.Person {
	out := make([]domain.Person, len(people))
	for i, p := range people {
		out[i] = *p
	}
	return out
}
