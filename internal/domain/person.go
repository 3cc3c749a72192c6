package domain

import "context"

// PersonKind names one of the two person lists
type PersonKind string

const (
	PersonKindSalesman PersonKind = "salesman"
	PersonKindOwner    PersonKind = "owner"
)

// Person is a salesman or an expense owner. The two lists are separate
// namespaces.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PersonRepository interface {
	ListSalesmen(ctx context.Context) ([]*Person, error)
	ListOwners(ctx context.Context) ([]*Person, error)
	CreateOwner(ctx context.Context, name string) (*Person, error)
}
