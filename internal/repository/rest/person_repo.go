package rest

import (
	"context"
	"fmt"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
)

const (
	salesmenTable = "salesmen"
	ownersTable   = "expense_owners"
)

// PersonRepository implements domain.PersonRepository over PostgREST
type PersonRepository struct {
	client *Client
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(client *Client) *PersonRepository {
	return &PersonRepository{client: client}
}

// ListSalesmen returns salesmen ordered by name
func (r *PersonRepository) ListSalesmen(ctx context.Context) ([]*domain.Person, error) {
	return r.list(ctx, salesmenTable)
}

// ListOwners returns expense owners ordered by name
func (r *PersonRepository) ListOwners(ctx context.Context) ([]*domain.Person, error) {
	return r.list(ctx, ownersTable)
}

func (r *PersonRepository) list(ctx context.Context, table string) ([]*domain.Person, error) {
	q := r.client.from(table).Select("id,name", "", false).Order("name", ascending)

	var people []*domain.Person
	if _, err := execute(ctx, table, q, &people); err != nil {
		return nil, err
	}
	if people == nil {
		people = []*domain.Person{}
	}
	return people, nil
}

// CreateOwner inserts an expense owner
func (r *PersonRepository) CreateOwner(ctx context.Context, name string) (*domain.Person, error) {
	body, err := encode(ownersTable, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	q := r.client.from(ownersTable).Insert(body, false, "", "representation", "")

	var created []*domain.Person
	if _, err := execute(ctx, ownersTable, q, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("%s: insert returned no row", ownersTable)
	}
	return created[0], nil
}
