package domain

import (
	"context"
	"time"
)

type ExpenseCategory string

const (
	CategorySalary         ExpenseCategory = "Salary"
	CategoryUtilities      ExpenseCategory = "Utilities"
	CategoryRent           ExpenseCategory = "Rent"
	CategoryMarketing      ExpenseCategory = "Marketing"
	CategoryMaintenance    ExpenseCategory = "Maintenance"
	CategorySupplies       ExpenseCategory = "Supplies"
	CategoryTransportation ExpenseCategory = "Transportation"
	CategoryOther          ExpenseCategory = "Other"
)

var expenseCategories = []ExpenseCategory{
	CategorySalary,
	CategoryUtilities,
	CategoryRent,
	CategoryMarketing,
	CategoryMaintenance,
	CategorySupplies,
	CategoryTransportation,
	CategoryOther,
}

// AllExpenseCategories returns the fixed category enumeration in display order
func AllExpenseCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, len(expenseCategories))
	copy(out, expenseCategories)
	return out
}

// IsValid reports whether c is one of the fixed categories (case-sensitive)
func (c ExpenseCategory) IsValid() bool {
	for _, known := range expenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

type ExpenseAccount struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ExpenseAccountFilter narrows an account listing. The backend always orders
// by category, then name.
type ExpenseAccountFilter struct {
	ActiveOnly bool
}

// ExpenseAccountUpdate is a partial update; nil fields are left untouched.
type ExpenseAccountUpdate struct {
	Name        *string
	Description *string
	Category    *ExpenseCategory
	IsActive    *bool
}

// IsEmpty reports whether the update carries no fields
func (u ExpenseAccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Category == nil && u.IsActive == nil
}

// Apply merges u into a copy of a and returns it
func (u ExpenseAccountUpdate) Apply(a ExpenseAccount) ExpenseAccount {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.Category != nil {
		a.Category = *u.Category
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	return a
}

type ExpenseAccountRepository interface {
	List(ctx context.Context, filter ExpenseAccountFilter) ([]*ExpenseAccount, error)
	GetByID(ctx context.Context, id int64) (*ExpenseAccount, error)
	Create(ctx context.Context, account *ExpenseAccount) (*ExpenseAccount, error)
	Update(ctx context.Context, id int64, update ExpenseAccountUpdate) error
	Delete(ctx context.Context, id int64) error
}
