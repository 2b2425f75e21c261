package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database handle used by the SQL engines. It is
// implemented by *sql.DB, *sql.Tx and *sql.Conn, so an engine can run the
// same statements inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
