package dynamo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
)

type Simulator struct {
	stepper Stepper
	cfg     Config
	logger  *slog.Logger
}

func New(stepper Stepper, cfg Config) *Simulator {
	return &Simulator{
		stepper: stepper,
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for per-run debug records.
func (s *Simulator) WithLogger(logger *slog.Logger) *Simulator {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Simulator) Config() Config { return s.cfg }

// counter wraps a System, counting calls and tagging its errors with ErrDerivative.
type counter struct {
	sys   System
	calls int
}

func (c *counter) Derive(t, y float64) (float64, error) {
	c.calls++
	dy, err := c.sys.Derive(t, y)
	if err != nil {
		return 0, derivativeError(err)
	}
	return dy, nil
}

// Run integrates sys from (t0, y0) to tf. h is the fixed step, or the
// initial step when cfg.Adaptive is set. On error no trajectory is returned.
func (s *Simulator) Run(ctx context.Context, sys System, t0, y0, h, tf float64) (*Result, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if s.stepper == nil {
		return nil, fmt.Errorf("%w: nil integrator", ErrInvalidArgument)
	}
	if err := s.validateConfig(); err != nil {
		return nil, err
	}
	if err := ValidateInterval(t0, y0, h, tf); err != nil {
		return nil, err
	}

	c := &counter{sys: sys}
	var (
		result *Result
		err    error
	)
	if s.cfg.Adaptive {
		result, err = s.runAdaptive(ctx, c, t0, y0, h, tf)
	} else {
		result, err = s.runFixed(ctx, c, t0, y0, h, tf)
	}
	if err != nil {
		s.logger.Debug("integration failed", "t0", t0, "tf", tf, "h", h, "evaluations", c.calls, "error", err)
		return nil, err
	}
	result.Evaluations = c.calls

	s.logger.Debug("integration finished",
		"t0", t0, "tf", tf, "h", h,
		"adaptive", s.cfg.Adaptive,
		"steps", result.StepsTaken,
		"rejected", result.Rejected,
		"evaluations", result.Evaluations,
	)
	return result, nil
}

func (s *Simulator) validateConfig() error {
	cfg := s.cfg
	if cfg.Adaptive {
		if _, ok := s.stepper.(AdaptiveStepper); !ok {
			return ErrNotAdaptive
		}
		if cfg.Tolerance <= 0 || !isFinite(cfg.Tolerance) {
			return fmt.Errorf("%w: tolerance must be positive for adaptive stepping, got %g", ErrInvalidArgument, cfg.Tolerance)
		}
	}
	if cfg.MinDt < 0 || cfg.MaxDt < 0 {
		return fmt.Errorf("%w: step bounds must not be negative", ErrInvalidArgument)
	}
	if cfg.MaxDt > 0 && cfg.MinDt > cfg.MaxDt {
		return fmt.Errorf("%w: min dt %g above max dt %g", ErrInvalidArgument, cfg.MinDt, cfg.MaxDt)
	}
	return nil
}

func (s *Simulator) runFixed(ctx context.Context, sys System, t0, y0, h, tf float64) (*Result, error) {
	t, err := Grid(t0, h, tf, s.cfg.Endpoint, s.cfg.MaxSteps)
	if err != nil {
		return nil, err
	}

	y := make([]float64, len(t))
	y[0] = y0

	for n := 0; n < len(t)-1; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := s.stepper.Step(sys, t[n], y[n], t[n+1]-t[n])
		if err != nil {
			return nil, &SimulationError{Step: n, Time: t[n], Y: y[n], Wrapped: err}
		}
		if s.cfg.ValidateState && !isFinite(next) {
			return nil, &SimulationError{Step: n, Time: t[n], Y: y[n], Wrapped: ErrNonFinite}
		}
		y[n+1] = next
	}

	return &Result{
		Trajectory: Trajectory{T: t, Y: y},
		StepsTaken: len(t) - 1,
	}, nil
}

func (s *Simulator) runAdaptive(ctx context.Context, sys System, t0, y0, h, tf float64) (*Result, error) {
	stepper := s.stepper.(AdaptiveStepper)
	cfg := s.cfg

	result := &Result{
		Trajectory: Trajectory{
			T: []float64{t0},
			Y: []float64{y0},
		},
	}

	t, y := t0, y0
	h = s.clampDt(h)
	attempts := 0

	for t < tf {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cfg.MaxSteps > 0 && attempts >= cfg.MaxSteps {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, Y: y, Wrapped: ErrMaxSteps}
		}
		attempts++

		last := false
		if t+h >= tf {
			h = tf - t
			last = true
		}

		yNew, ratio, hNext, err := stepper.StepAdaptive(sys, t, y, h, cfg.Tolerance)
		if err != nil {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, Y: y, Wrapped: err}
		}
		if !isFinite(yNew) || math.IsNaN(ratio) {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, Y: y, Wrapped: ErrNonFinite}
		}

		if ratio <= 1 {
			if last {
				t = tf
			} else {
				t += h
			}
			y = yNew
			result.T = append(result.T, t)
			result.Y = append(result.Y, y)
			result.StepsTaken++
		} else {
			result.Rejected++
		}

		if t >= tf {
			break
		}
		h = s.clampDt(hNext)
		if cfg.MinDt > 0 && h < cfg.MinDt && tf-t > cfg.MinDt {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, Y: y, Wrapped: ErrStepTooSmall}
		}
		if t+h == t {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, Y: y, Wrapped: ErrStepTooSmall}
		}
	}

	return result, nil
}

// clampDt bounds h by MaxDt only; MinDt violations are reported by the caller.
func (s *Simulator) clampDt(h float64) float64 {
	if s.cfg.MaxDt > 0 && h > s.cfg.MaxDt {
		return s.cfg.MaxDt
	}
	return h
}

// IsDerivativeError reports whether err came from the user's system.
func IsDerivativeError(err error) bool {
	return errors.Is(err, ErrDerivative)
}
