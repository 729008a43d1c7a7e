package main

import (
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rkode/internal/config"
	"github.com/san-kum/rkode/internal/experiment"
	"github.com/san-kum/rkode/internal/logging"
	"github.com/san-kum/rkode/internal/storage"
	"github.com/san-kum/rkode/internal/viz"
)

// resolveConfig layers defaults, preset, config file, RKODE_* environment
// and explicitly set flags, in that order. args[0], if present, is the model.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	if preset != "" {
		if model == "" {
			return nil, fmt.Errorf("--preset requires a model argument")
		}
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if model != "" {
		cfg.Model = model
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("t0") {
		cfg.T0 = t0
	}
	if f.Changed("y0") {
		cfg.Y0 = y0
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("tf") {
		cfg.TF = tf
	}
	if f.Changed("endpoint") {
		cfg.Solver.Endpoint = endpoint
	}
	if f.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if f.Changed("min-dt") {
		cfg.Solver.MinDt = minDt
	}
	if f.Changed("max-dt") {
		cfg.Solver.MaxDt = maxDt
	}
	if f.Changed("max-steps") {
		cfg.Solver.MaxSteps = maxSteps
	}
	if noValidate {
		cfg.Solver.ValidateState = false
	}

	if len(params) > 0 {
		merged := maps.Clone(cfg.Params)
		if merged == nil {
			merged = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", name, err)
			}
			merged[name] = v
		}
		cfg.Params = merged
	}

	if !f.Changed("log-level") && cfg.LogLevel != "" {
		logger = logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel), noColor)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newExperiment builds and sets up an experiment. Adaptive integrators run
// with error control unless --fixed is given or adaptive is false.
func newExperiment(cfg *config.Config, reg *experiment.Registry, adaptive bool) (*experiment.Experiment, error) {
	adaptive = adaptive && !fixedStep && reg.IsAdaptive(cfg.Integrator)
	sim, err := cfg.SimConfig(adaptive)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(experiment.Config{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		T0:         cfg.T0,
		Y0:         cfg.Y0,
		Dt:         cfg.Dt,
		TF:         cfg.TF,
		Params:     cfg.Params,
		Sim:        sim,
	}).WithLogger(logger)

	if err := exp.Setup(reg); err != nil {
		return nil, err
	}
	return exp, nil
}

func runInfo(cfg experiment.Config) storage.RunInfo {
	info := storage.RunInfo{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		T0:         cfg.T0,
		Y0:         cfg.Y0,
		Dt:         cfg.Dt,
		TF:         cfg.TF,
		Adaptive:   cfg.Sim.Adaptive,
		Endpoint:   cfg.Sim.Endpoint.String(),
		Params:     cfg.Params,
	}
	if cfg.Sim.Adaptive {
		info.Tolerance = cfg.Sim.Tolerance
	}
	return info
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	exp, err := newExperiment(cfg, reg, true)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	tEnd, yEnd := out.Last()
	fields := []viz.Field{
		viz.F("model", "%s", cfg.Model),
		viz.F("integrator", "%s", cfg.Integrator),
		viz.F("samples", "%d", out.Len()),
		viz.F("steps", "%d", out.StepsTaken),
		viz.F("rejected", "%d", out.Rejected),
		viz.F("evaluations", "%d", out.Evaluations),
		viz.F("y(t_end)", "%.10g at t=%.6g", yEnd, tEnd),
		viz.F("exact", "%.10g", exp.Problem().Exact(cfg.T0, cfg.Y0, tEnd)),
		viz.F("max error", "%.3e", out.MaxError),
		viz.F("final error", "%.3e", out.FinalError),
		viz.F("elapsed", "%v", elapsed),
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		metrics := map[string]float64{
			"max_error":   out.MaxError,
			"final_error": out.FinalError,
			"elapsed_ms":  float64(elapsed.Microseconds()) / 1000,
		}
		runID, err := st.Save(runInfo(exp.Config()), out.Result, metrics)
		if err != nil {
			return err
		}
		logger.Debug("saved run", "id", runID, "dir", st.Dir())
		fields = append(fields, viz.F("run id", "%s", runID))
	}

	w := cmd.OutOrStdout()
	styles := viz.NewStyles(viz.ThemeNeon)
	fmt.Fprintln(w, styles.Summary("run complete", fields))

	if showPlot {
		caption := fmt.Sprintf("%s / %s", cfg.Model, cfg.Integrator)
		fmt.Fprintln(w, viz.PlotTrajectory(out.Trajectory, caption, width, height))
	}
	return nil
}
