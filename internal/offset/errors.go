package offset

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInvalidInput indicates a negative or non-finite environmental reading.
	// Readings are rejected before any rate is computed; they are never clamped.
	ErrInvalidInput = constError("invalid environmental input")

	// ErrInvalidParams indicates a model parameter outside its physical range.
	ErrInvalidParams = constError("invalid offset model parameters")
)
