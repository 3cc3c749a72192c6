package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OwnerType discriminates which person list an owner id refers to
type OwnerType string

const (
	OwnerTypeSalesman OwnerType = "salesman"
	OwnerTypeOwner    OwnerType = "owner"
)

// IsValid reports whether t is a known owner type
func (t OwnerType) IsValid() bool {
	return t == OwnerTypeSalesman || t == OwnerTypeOwner
}

// OwnerRef is the optional person an expense is attributed to: no owner,
// a salesman, or an expense owner. The zero value is NoOwner. Salesman 7 and
// owner 7 are unrelated people.
type OwnerRef struct {
	kind OwnerType
	id   int64
}

// NoOwner returns the empty attribution
func NoOwner() OwnerRef {
	return OwnerRef{}
}

// SalesmanOwner attributes an expense to the salesman with the given id
func SalesmanOwner(id int64) OwnerRef {
	return OwnerRef{kind: OwnerTypeSalesman, id: id}
}

// ExpenseOwner attributes an expense to the expense owner with the given id
func ExpenseOwner(id int64) OwnerRef {
	return OwnerRef{kind: OwnerTypeOwner, id: id}
}

// NewOwnerRef builds an OwnerRef from the nullable wire pair. Both nil yields
// NoOwner; exactly one nil is rejected.
func NewOwnerRef(ownerType *OwnerType, ownerID *int64) (OwnerRef, error) {
	switch {
	case ownerType == nil && ownerID == nil:
		return NoOwner(), nil
	case ownerType == nil || ownerID == nil:
		return OwnerRef{}, ErrOwnerPairIncomplete
	}
	switch *ownerType {
	case OwnerTypeSalesman:
		return SalesmanOwner(*ownerID), nil
	case OwnerTypeOwner:
		return ExpenseOwner(*ownerID), nil
	}
	return OwnerRef{}, fmt.Errorf("%w: %q", ErrUnknownOwnerType, *ownerType)
}

// ParseOwnerToken decodes a picker token of the form "<type>-<id>".
// The empty token means no owner.
func ParseOwnerToken(token string) (OwnerRef, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return NoOwner(), nil
	}
	kind, rawID, ok := strings.Cut(token, "-")
	if !ok {
		return OwnerRef{}, fmt.Errorf("%w: %q", ErrInvalidOwnerToken, token)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return OwnerRef{}, fmt.Errorf("%w: %q", ErrInvalidOwnerToken, token)
	}
	t := OwnerType(kind)
	return NewOwnerRef(&t, &id)
}

// IsSet reports whether an owner is attributed
func (o OwnerRef) IsSet() bool {
	return o.kind != ""
}

// Type returns the discriminator, empty for NoOwner
func (o OwnerRef) Type() OwnerType {
	return o.kind
}

// ID returns the person id, zero for NoOwner
func (o OwnerRef) ID() int64 {
	return o.id
}

// Token encodes o for a combined salesman/owner picker
func (o OwnerRef) Token() string {
	if !o.IsSet() {
		return ""
	}
	return fmt.Sprintf("%s-%d", o.kind, o.id)
}

// Pair returns the nullable wire representation (owner_type, owner_id)
func (o OwnerRef) Pair() (*OwnerType, *int64) {
	if !o.IsSet() {
		return nil, nil
	}
	kind, id := o.kind, o.id
	return &kind, &id
}

func (o OwnerRef) String() string {
	if !o.IsSet() {
		return "none"
	}
	return o.Token()
}

type ownerRefJSON struct {
	OwnerType *OwnerType `json:"ownerType"`
	OwnerID   *int64     `json:"ownerId"`
}

// MarshalJSON renders the pair, both null for NoOwner
func (o OwnerRef) MarshalJSON() ([]byte, error) {
	t, id := o.Pair()
	return json.Marshal(ownerRefJSON{OwnerType: t, OwnerID: id})
}

// UnmarshalJSON accepts the pair and rejects half-set values
func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	var raw ownerRefJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ref, err := NewOwnerRef(raw.OwnerType, raw.OwnerID)
	if err != nil {
		return err
	}
	*o = ref
	return nil
}
