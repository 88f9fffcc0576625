// Package store implements the persistence layer. Each table gets its own
// store type over a shared *sqlx.DB. Queries are written with ? placeholders
// and passed through Rebind so the same code runs on postgres and sqlite.
package store

import "errors"

// ErrNotFound is returned when a lookup matches no row. List operations
// return empty slices instead.
var ErrNotFound = errors.New("not found")
