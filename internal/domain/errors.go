package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. empty description, ask without a destination).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrShapeMismatch is returned when a record's discriminant does not agree
// with its populated fields, so no identifier can be resolved.
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrConflict is returned when an operation is not allowed in the current
// state of a resource (e.g. submitting a report that is already being sent).
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
