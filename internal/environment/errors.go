package environment

import "errors"

var (
	// ErrIncompleteReading is returned when a snapshot lacks an input of the offset model.
	ErrIncompleteReading = errors.New("incomplete environmental reading")

	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no environment providers configured")
)
