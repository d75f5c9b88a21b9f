// Package testdb provides helpers for PostgreSQL integration tests: it opens
// a connection from KANBAN_TEST_DB_URL (or DATABASE_URL), applies the
// embedded migrations once, and runs each test body inside a transaction
// that is always rolled back.
package testdb
