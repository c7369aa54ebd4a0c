package store

import "errors"

// ErrInvalid marks bad caller input: empty titles, unknown enum values,
// malformed dates, self-dependencies. Correct the input and retry.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound marks operations against a task or session id that is not
// in the database. Distinct from ErrInvalid so callers can tell a stale
// reference apart from a typo.
var ErrNotFound = errors.New("not found")
