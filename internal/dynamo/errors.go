package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidArgument indicates a bad step size, interval or initial value.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrDerivative wraps an error returned by the system's Derive.
	ErrDerivative = errors.New("dynamo: derivative evaluation failed")

	// ErrNonFinite indicates the solution became NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget was exhausted before tf.
	ErrMaxSteps = errors.New("dynamo: step limit exceeded")

	// ErrNotAdaptive indicates adaptive stepping was requested from a fixed-step integrator.
	ErrNotAdaptive = errors.New("dynamo: integrator does not support adaptive stepping")
)

// SimulationError wraps an error with the step at which it happened.
type SimulationError struct {
	Step    int
	Time    float64
	Y       float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, y=%.6g): %v", e.Step, e.Time, e.Y, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func derivativeError(err error) error {
	if errors.Is(err, ErrDerivative) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDerivative, err)
}
