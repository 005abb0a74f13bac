package professional

import "errors"

var (
	// ErrNotFound is returned when no professional profile exists for the
	// requested id.
	ErrNotFound = errors.New("professional profile not found")

	// ErrUserProfileNotFound is returned by Create when the referenced user
	// profile does not exist.
	ErrUserProfileNotFound = errors.New("user profile does not exist")
)
