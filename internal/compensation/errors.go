package compensation

type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUndefinedDuration is reported per method when its offset rate is not positive.
	ErrUndefinedDuration = constError("undefined compensation duration")

	// ErrNothingToCompensate is informational: the emission is zero, no schedule is built.
	ErrNothingToCompensate = constError("nothing to compensate")

	// ErrNoMethodAvailable means every method had an undefined duration.
	ErrNoMethodAvailable = constError("no compensation method available")

	// ErrInvalidInput indicates a negative or non-finite emission.
	ErrInvalidInput = constError("invalid compensation input")

	// ErrCancelled marks a user-requested stop. It is a terminal state, not a failure.
	ErrCancelled = constError("compensation cancelled")

	// ErrAlreadyDriven means another driver already paces the schedule.
	ErrAlreadyDriven = constError("compensation schedule is already being driven")

	// ErrInvalidPacing indicates pacing configuration that cannot bound the animation.
	ErrInvalidPacing = constError("invalid pacing configuration")
)
