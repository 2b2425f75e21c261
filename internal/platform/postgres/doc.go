// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. It translates the store filter model into SQL,
// maps pgconn error codes onto store sentinel errors, guards every statement
// with a circuit breaker and ships its schema as embedded goose migrations.
package postgres
