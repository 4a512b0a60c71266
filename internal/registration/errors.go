package registration

import "errors"

var (
	// ErrDuplicateIdentity is returned when a national id is already registered.
	ErrDuplicateIdentity = errors.New("user with this NIN already registered")
	// ErrNotFound is returned for an unknown registration id.
	ErrNotFound = errors.New("user not found")
	// ErrValidation wraps malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrIO wraps failures writing photos or cards to disk.
	ErrIO = errors.New("artifact storage failed")
)
