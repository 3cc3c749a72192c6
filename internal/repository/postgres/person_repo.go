package postgres

import (
	"context"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PersonRepository implements domain.PersonRepository over the salesmen and
// expense_owners tables
type PersonRepository struct {
	db database.PGXDB
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(db database.PGXDB) *PersonRepository {
	return &PersonRepository{db: db}
}

// ListSalesmen returns salesmen ordered by name
func (r *PersonRepository) ListSalesmen(ctx context.Context) ([]*domain.Person, error) {
	return r.list(ctx, "salesmen")
}

// ListOwners returns expense owners ordered by name
func (r *PersonRepository) ListOwners(ctx context.Context) ([]*domain.Person, error) {
	return r.list(ctx, "expense_owners")
}

func (r *PersonRepository) list(ctx context.Context, table string) ([]*domain.Person, error) {
	query, args, err := psql.Select("id", "name").From(table).OrderBy("name").ToSql()
	if err != nil {
		return nil, mapError(err, "build "+table+" query", domain.ErrNotFound)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list "+table, domain.ErrNotFound)
	}
	people, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[domain.Person])
	if err != nil {
		return nil, mapError(err, "scan "+table, domain.ErrNotFound)
	}
	return people, nil
}

// CreateOwner inserts an expense owner
func (r *PersonRepository) CreateOwner(ctx context.Context, name string) (*domain.Person, error) {
	query, args, err := psql.Insert("expense_owners").
		Columns("name").
		Values(name).
		Suffix("RETURNING id, name").
		ToSql()
	if err != nil {
		return nil, mapError(err, "build owner insert", domain.ErrNotFound)
	}

	var p domain.Person
	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Name); err != nil {
		return nil, mapError(err, "create expense owner", domain.ErrNotFound)
	}
	return &p, nil
}
