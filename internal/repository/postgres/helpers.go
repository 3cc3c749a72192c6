package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// nullableText maps the empty string to SQL NULL
func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
