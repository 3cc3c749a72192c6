package postgres

import sq "github.com/Masterminds/squirrel"

// psql builds PostgreSQL statements with $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
