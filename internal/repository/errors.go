// Package repository holds the MySQL data access code. The sentinel values
// below let higher layers such as services and handlers distinguish
// between failure scenarios without looking at driver errors.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as a duplicate unique key. Handlers translate
// it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrStaleVersion is returned by version-checked writes when the row was
// modified after it was read. Callers reload and retry.
var ErrStaleVersion = errors.New("stale version")
