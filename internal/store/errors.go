package store

import "errors"

// Sentinel errors returned by store implementations. Callers match these
// with errors.Is rather than inspecting driver-specific error values.
var (
	// ErrUserNotFound indicates no user exists with the given key.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates a user insert collided with an existing
	// email. Concurrent imports of the same file can race here; callers
	// re-fetch by email instead of failing the row.
	ErrEmailExists = errors.New("email already exists")

	// ErrJobNotFound indicates no scheduled message exists with the given ID.
	ErrJobNotFound = errors.New("scheduled message not found")

	// ErrInvalidEntity indicates the entity failed validation before
	// reaching the database.
	ErrInvalidEntity = errors.New("invalid entity")
)
