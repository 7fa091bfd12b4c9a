package turn

import "errors"

var (
	// ErrModelInvocation is returned when the model call itself fails.
	// The conversation log is left untouched so the turn can be resubmitted.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrMaxIterations is returned when a turn exhausts its model
	// invocation budget without producing a final answer.
	ErrMaxIterations = errors.New("max iterations exceeded")

	// ErrTurnCancelled is returned when the turn's context is cancelled
	// or times out mid-flight.
	ErrTurnCancelled = errors.New("turn cancelled")
)
