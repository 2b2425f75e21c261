// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests skip when no database URL is configured; each
// test runs inside a transaction that is rolled back afterwards.
package testdb
