package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, negative price).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would break a uniqueness rule,
// such as creating or renaming a tag to a label that already exists.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInUse is returned when a tag cannot be deleted because at least one
// product still references it. Handlers should map this to HTTP 409.
var ErrInUse = errors.New("in use")

// ErrUnauthorized is returned when credentials or a session token are
// missing or invalid. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")
