package service

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Wire column names of the expenses table
const (
	colID            = "id"
	colDate          = "date"
	colCategory      = "category"
	colName          = "name"
	colDescription   = "description"
	colAmount        = "amount"
	colPaymentMethod = "payment_method"
	colOwnerID       = "owner_id"
	colOwnerType     = "owner_type"
	colAccountID     = "account_id"
	colCreatedAt     = "created_at"
	colUpdatedAt     = "updated_at"
)

// camel-case aliases accepted on read
var expenseReadAliases = map[string]string{
	colPaymentMethod: "paymentMethod",
	colOwnerID:       "ownerId",
	colOwnerType:     "ownerType",
	colAccountID:     "accountId",
	colCreatedAt:     "createdAt",
	colUpdatedAt:     "updatedAt",
}

// lookup reads key from row, falling back to its camel-case alias
func lookup(row domain.Row, key string) (any, bool) {
	if v, ok := row[key]; ok && v != nil {
		return v, true
	}
	if alias, ok := expenseReadAliases[key]; ok {
		if v, ok := row[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// expenseFromRow parses a backend row into an Expense. Unknown keys are
// ignored; multi-word fields are read under either naming convention.
func expenseFromRow(row domain.Row) (*domain.Expense, error) {
	var (
		e   domain.Expense
		err error
	)

	if v, ok := lookup(row, colID); ok {
		if e.ID, err = asInt64(v); err != nil {
			return nil, fmt.Errorf("expense %s: %w", colID, err)
		}
	}
	if v, ok := lookup(row, colDate); ok {
		if e.Date, err = asTime(v); err != nil {
			return nil, fmt.Errorf("expense %s: %w", colDate, err)
		}
		e.Date = domain.CalendarDate(e.Date)
	}
	if v, ok := lookup(row, colCategory); ok {
		e.Category = asString(v)
	}
	if v, ok := lookup(row, colName); ok {
		e.Name = asString(v)
	}
	if v, ok := lookup(row, colDescription); ok {
		e.Description = asString(v)
	}
	if v, ok := lookup(row, colAmount); ok {
		if e.Amount, err = asDecimal(v); err != nil {
			return nil, fmt.Errorf("expense %s: %w", colAmount, err)
		}
	}
	if v, ok := lookup(row, colPaymentMethod); ok {
		e.PaymentMethod = domain.PaymentMethod(asString(v))
	}
	if v, ok := lookup(row, colAccountID); ok {
		if e.AccountID, err = asInt64(v); err != nil {
			return nil, fmt.Errorf("expense %s: %w", colAccountID, err)
		}
	}

	var (
		ownerType *domain.OwnerType
		ownerID   *int64
	)
	if v, ok := lookup(row, colOwnerType); ok {
		t := domain.OwnerType(asString(v))
		ownerType = &t
	}
	if v, ok := lookup(row, colOwnerID); ok {
		id, err := asInt64(v)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", colOwnerID, err)
		}
		ownerID = &id
	}
	if e.Owner, err = domain.NewOwnerRef(ownerType, ownerID); err != nil {
		return nil, fmt.Errorf("expense owner: %w", err)
	}

	if v, ok := lookup(row, colCreatedAt); ok {
		if e.CreatedAt, err = asTime(v); err != nil {
			return nil, fmt.Errorf("expense %s: %w", colCreatedAt, err)
		}
	}
	if v, ok := lookup(row, colUpdatedAt); ok {
		if e.UpdatedAt, err = asTime(v); err != nil {
			return nil, fmt.Errorf("expense %s: %w", colUpdatedAt, err)
		}
	}

	return &e, nil
}

// expenseToRow renders e in wire shape. Only snake_case keys are written;
// backend-assigned columns are included when set.
func expenseToRow(e *domain.Expense) domain.Row {
	row := expenseWriteRow(e)
	if e.ID != 0 {
		row[colID] = e.ID
	}
	if !e.CreatedAt.IsZero() {
		row[colCreatedAt] = e.CreatedAt
	}
	if !e.UpdatedAt.IsZero() {
		row[colUpdatedAt] = e.UpdatedAt
	}
	return row
}

// expenseWriteRow renders the mutable columns only, as sent on insert and update
func expenseWriteRow(e *domain.Expense) domain.Row {
	var description any
	if e.Description != "" {
		description = e.Description
	}

	var ownerType, ownerID any
	if t, id := e.Owner.Pair(); t != nil {
		ownerType = string(*t)
		ownerID = *id
	}

	return domain.Row{
		colDate:          e.Date.Format(domain.DateLayout),
		colCategory:      e.Category,
		colName:          e.Name,
		colDescription:   description,
		colAmount:        e.Amount,
		colPaymentMethod: string(e.PaymentMethod),
		colOwnerID:       ownerID,
		colOwnerType:     ownerType,
		colAccountID:     e.AccountID,
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("non-integer value %v", t)
		}
		return int64(t), nil
	case json.Number:
		return t.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	}
	return 0, fmt.Errorf("unsupported integer type %T", v)
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	case json.Number:
		return decimal.NewFromString(t.String())
	case float64:
		return decimal.NewFromFloat(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case driver.Valuer:
		// pgx hands NUMERIC back as pgtype.Numeric
		raw, err := t.Value()
		if err != nil {
			return decimal.Zero, err
		}
		if raw == nil {
			return decimal.Zero, nil
		}
		return asDecimal(raw)
	}
	return decimal.Zero, fmt.Errorf("unsupported decimal type %T", v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	domain.DateLayout,
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised time %q", t)
	case driver.Valuer:
		raw, err := t.Value()
		if err != nil {
			return time.Time{}, err
		}
		return asTime(raw)
	}
	return time.Time{}, fmt.Errorf("unsupported time type %T", v)
}
