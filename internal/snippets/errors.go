package snippets

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PabloPavan/sniply_inject/internal"
)

var (
	ErrNotFound    = internal.ErrNotFound
	ErrDuplicateID = errors.New("snippet id already exists")
)

const pgUniqueViolation = "23505"

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound)
}

// IsDuplicateID reports whether a Create failed because the id is taken,
// for both the memory store and the primary key in Postgres.
func IsDuplicateID(err error) bool {
	if errors.Is(err, ErrDuplicateID) {
		return true
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return pgErr.ConstraintName == "snippets_pkey" || pgErr.ColumnName == "id"
}
