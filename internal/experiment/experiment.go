package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/rkode/internal/analysis"
	"github.com/san-kum/rkode/internal/dynamo"
	"github.com/san-kum/rkode/internal/models"
)

type Config struct {
	Model      string
	Integrator string
	T0         float64
	Y0         float64
	Dt         float64
	TF         float64
	Params     map[string]float64
	Sim        dynamo.Config
}

// Outcome is a finished run with its error against the exact solution.
type Outcome struct {
	*dynamo.Result
	MaxError   float64
	FinalError float64
}

type Experiment struct {
	cfg       Config
	problem   models.Problem
	simulator *dynamo.Simulator
	logger    *slog.Logger
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg, logger: slog.Default()}
}

func (e *Experiment) WithLogger(logger *slog.Logger) *Experiment {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Setup resolves the model and integrator by name and applies Params.
func (e *Experiment) Setup(r *Registry) error {
	problem, err := r.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	stepper, err := r.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	if len(e.cfg.Params) > 0 {
		c, ok := problem.(dynamo.Configurable)
		if !ok {
			return fmt.Errorf("model %s has no parameters", e.cfg.Model)
		}
		for name, value := range e.cfg.Params {
			if err := c.SetParam(name, value); err != nil {
				return fmt.Errorf("model %s: %w", e.cfg.Model, err)
			}
		}
	}

	e.problem = problem
	e.simulator = dynamo.New(stepper, e.cfg.Sim).WithLogger(e.logger)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	e.logger.Info("running",
		"model", e.cfg.Model,
		"integrator", e.cfg.Integrator,
		"t0", e.cfg.T0, "y0", e.cfg.Y0, "dt", e.cfg.Dt, "tf", e.cfg.TF,
		"adaptive", e.cfg.Sim.Adaptive,
	)

	res, err := e.simulator.Run(ctx, e.problem, e.cfg.T0, e.cfg.Y0, e.cfg.Dt, e.cfg.TF)
	if err != nil {
		return nil, err
	}

	maxErr, finalErr := analysis.GlobalError(res.Trajectory, func(t float64) float64 {
		return e.problem.Exact(e.cfg.T0, e.cfg.Y0, t)
	})
	return &Outcome{Result: res, MaxError: maxErr, FinalError: finalErr}, nil
}

// Problem returns the resolved model, or nil before Setup.
func (e *Experiment) Problem() models.Problem {
	return e.problem
}

func (e *Experiment) Config() Config {
	return e.cfg
}

// Simulator returns the configured driver, or nil before Setup.
func (e *Experiment) Simulator() *dynamo.Simulator {
	return e.simulator
}
