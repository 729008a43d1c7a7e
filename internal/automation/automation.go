// Package automation runs batches of experiments: scripted scenarios,
// parameter sweeps and randomized initial values.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rkode/internal/dynamo"
	"github.com/san-kum/rkode/internal/experiment"
)

// Scenario is a scripted sequence of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Model      string             `yaml:"model"`
	Integrator string             `yaml:"integrator"`
	T0         float64            `yaml:"t0"`
	Y0         float64            `yaml:"y0"`
	Dt         float64            `yaml:"dt"`
	TF         float64            `yaml:"tf"`
	Endpoint   string             `yaml:"endpoint"`
	Tolerance  float64            `yaml:"tolerance"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config converts the step into an experiment config. Adaptive integrators
// run with error control; unset fields take the dynamo defaults.
func (s ScenarioStep) Config(registry *experiment.Registry) (experiment.Config, error) {
	sim := dynamo.DefaultConfig()
	if s.Endpoint != "" {
		e, err := dynamo.ParseEndpoint(s.Endpoint)
		if err != nil {
			return experiment.Config{}, err
		}
		sim.Endpoint = e
	}
	if s.Tolerance != 0 {
		sim.Tolerance = s.Tolerance
	}
	sim.Adaptive = registry.IsAdaptive(s.Integrator)

	return experiment.Config{
		Model:      s.Model,
		Integrator: s.Integrator,
		T0:         s.T0,
		Y0:         s.Y0,
		Dt:         s.Dt,
		TF:         s.TF,
		Params:     s.Params,
		Sim:        sim,
	}, nil
}

type StepResult struct {
	Step    ScenarioStep
	Config  experiment.Config
	Outcome *experiment.Outcome
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]StepResult, error) {
	logger = orDefault(logger)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "model", step.Model, "integrator", step.Integrator)

		cfg, err := step.Config(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg).WithLogger(logger)
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		out, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Outcome: out})
	}

	return results, nil
}

// ParameterSweep varies one model parameter over [Min, Max] in Points
// evenly spaced values.
type ParameterSweep struct {
	Base   experiment.Config
	Param  string
	Min    float64
	Max    float64
	Points int
}

type SweepResult struct {
	Value      float64
	Final      float64
	Exact      float64
	MaxError   float64
	Evaluation int
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	logger = orDefault(logger)
	if sweep.Points < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one point", dynamo.ErrInvalidArgument)
	}

	step := 0.0
	if sweep.Points > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.Points-1)
	}

	results := make([]SweepResult, 0, sweep.Points)
	for i := 0; i < sweep.Points; i++ {
		value := sweep.Min + float64(i)*step

		cfg := sweep.Base
		cfg.Params = make(map[string]float64, len(sweep.Base.Params)+1)
		for k, v := range sweep.Base.Params {
			cfg.Params[k] = v
		}
		cfg.Params[sweep.Param] = value

		exp := experiment.New(cfg).WithLogger(logger)
		if err := exp.Setup(registry); err != nil {
			return nil, err
		}
		out, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, value, err)
		}

		tEnd, yEnd := out.Last()
		results = append(results, SweepResult{
			Value:      value,
			Final:      yEnd,
			Exact:      exp.Problem().Exact(cfg.T0, cfg.Y0, tEnd),
			MaxError:   out.MaxError,
			Evaluation: out.Evaluations,
		})
		logger.Debug("sweep point", "param", sweep.Param, "value", value, "max_error", out.MaxError)
	}

	return results, nil
}

// MonteCarloConfig draws Trials initial values uniformly from
// [Base.Y0-Spread, Base.Y0+Spread] and integrates them as an ensemble.
type MonteCarloConfig struct {
	Base    experiment.Config
	Spread  float64
	Trials  int
	Seed    uint64
	Workers int
	// Bound marks a trial unstable when |y(tf)| exceeds it.
	Bound float64
}

type MonteCarloResult struct {
	Trial    int
	Y0       float64
	Final    float64
	Error    float64
	Bounded  bool
	Rejected int
}

type MonteCarloSummary struct {
	Trials    []MonteCarloResult
	Bounded   int
	MeanError float64
	MaxError  float64
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *slog.Logger) (*MonteCarloSummary, error) {
	logger = orDefault(logger)
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("%w: monte carlo needs at least one trial", dynamo.ErrInvalidArgument)
	}

	exp := experiment.New(cfg.Base).WithLogger(logger)
	if err := exp.Setup(registry); err != nil {
		return nil, err
	}
	factory, err := registry.IntegratorFactory(cfg.Base.Integrator)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	y0s := make([]float64, cfg.Trials)
	for i := range y0s {
		y0s[i] = cfg.Base.Y0 + (rng.Float64()-0.5)*2*cfg.Spread
	}

	ens := dynamo.NewEnsemble(factory, cfg.Base.Sim, cfg.Workers).WithLogger(logger)
	results, err := ens.Run(ctx, exp.Problem(), cfg.Base.T0, y0s, cfg.Base.Dt, cfg.Base.TF)
	if err != nil {
		return nil, err
	}

	bound := cfg.Bound
	if bound <= 0 {
		bound = 1e6
	}

	summary := &MonteCarloSummary{Trials: make([]MonteCarloResult, len(results))}
	for i, res := range results {
		tEnd, yEnd := res.Last()
		errAbs := math.Abs(yEnd - exp.Problem().Exact(cfg.Base.T0, y0s[i], tEnd))
		bounded := math.Abs(yEnd) <= bound

		summary.Trials[i] = MonteCarloResult{
			Trial:    i,
			Y0:       y0s[i],
			Final:    yEnd,
			Error:    errAbs,
			Bounded:  bounded,
			Rejected: res.Rejected,
		}
		if bounded {
			summary.Bounded++
		}
		summary.MeanError += errAbs
		summary.MaxError = math.Max(summary.MaxError, errAbs)
	}
	summary.MeanError /= float64(len(results))

	logger.Info("monte carlo finished", "trials", cfg.Trials, "bounded", summary.Bounded, "max_error", summary.MaxError)
	return summary, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
