package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapError converts pgx/pgconn errors to domain errors. notFound is the
// entity-specific sentinel returned for missing rows and dangling references.
// Context errors pass through.
func mapError(err error, op string, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", op, notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("failed to %s: %w", op, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("failed to %s: %w", op, domain.ErrAccountNotFound)
		case "23514": // check_violation
			return fmt.Errorf("failed to %s: %s: %w", op, pgErr.ConstraintName, domain.ErrInvalidInput)
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
