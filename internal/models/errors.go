package models

import "errors"

// Sentinel errors shared across layers. Handlers match these with
// errors.Is to pick the HTTP status; repositories and services wrap
// them with context.
var (
	// ErrNotFound covers absent ids and, deliberately, resources owned
	// by another user: ownership checks are folded into the lookup so
	// the two cases cannot be told apart from the outside.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, preventing user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUser signals a taken username or email at registration.
	ErrDuplicateUser = errors.New("username or email already taken")

	// ErrDuplicateVisit signals a (user, station, arrived_at) collision.
	ErrDuplicateVisit = errors.New("visit already recorded for this arrival time")

	// ErrInvalidInput covers malformed or conflicting request fields.
	ErrInvalidInput = errors.New("invalid input")
)

// FieldErrors carries per-field validation messages to the request
// boundary, where they become the 400 response body.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return "validation failed"
}

// Is makes every FieldErrors value match ErrInvalidInput.
func (e FieldErrors) Is(target error) bool {
	return target == ErrInvalidInput
}
