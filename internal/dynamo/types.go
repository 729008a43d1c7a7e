package dynamo

import (
	"fmt"
	"math"
	"strings"
)

// System is a scalar ODE right-hand side dy/dt = f(t, y).
type System interface {
	Derive(t, y float64) (float64, error)
}

// Func adapts a plain function that cannot fail to a System.
type Func func(t, y float64) float64

func (f Func) Derive(t, y float64) (float64, error) {
	return f(t, y), nil
}

// FuncE adapts a function that may fail to a System.
type FuncE func(t, y float64) (float64, error)

func (f FuncE) Derive(t, y float64) (float64, error) {
	return f(t, y)
}

// Stepper advances the solution by one step of size h.
type Stepper interface {
	Step(sys System, t, y, h float64) (float64, error)
}

// AdaptiveStepper takes a trial step and reports the error ratio against tol
// (accepted when ratio <= 1) together with the suggested next step size.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(sys System, t, y, h, tol float64) (yNew, ratio, hNext float64, err error)
}

// Endpoint selects how the fixed-step grid treats tf.
type Endpoint int

const (
	// EndpointClamp shortens the final step so the last sample is exactly tf.
	EndpointClamp Endpoint = iota
	// EndpointTruncate keeps only grid points t0+i*h <= tf.
	EndpointTruncate
	// EndpointOvershoot ends on the first grid point at or past tf.
	EndpointOvershoot
)

func (e Endpoint) String() string {
	switch e {
	case EndpointClamp:
		return "clamp"
	case EndpointTruncate:
		return "truncate"
	case EndpointOvershoot:
		return "overshoot"
	default:
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
}

// ParseEndpoint converts a policy name into an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return EndpointClamp, nil
	case "truncate":
		return EndpointTruncate, nil
	case "overshoot":
		return EndpointOvershoot, nil
	}
	return 0, fmt.Errorf("%w: unknown endpoint policy %q", ErrInvalidArgument, s)
}

type Config struct {
	Endpoint      Endpoint
	Adaptive      bool
	Tolerance     float64
	MinDt         float64
	MaxDt         float64
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Endpoint:      EndpointClamp,
		Adaptive:      false,
		Tolerance:     1e-6,
		MinDt:         1e-12,
		MaxDt:         0,
		MaxSteps:      10_000_000,
		ValidateState: true,
	}
}

// Trajectory holds the sampled solution. T and Y always have equal length.
type Trajectory struct {
	T []float64
	Y []float64
}

func (tr Trajectory) Len() int { return len(tr.T) }

// Last returns the final sample. It panics on an empty trajectory.
func (tr Trajectory) Last() (float64, float64) {
	n := len(tr.T) - 1
	return tr.T[n], tr.Y[n]
}

type Result struct {
	Trajectory
	StepsTaken  int
	Rejected    int
	Evaluations int
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Configurable is implemented by systems with tunable parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
