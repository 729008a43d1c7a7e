package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rkode/internal/analysis"
	"github.com/san-kum/rkode/internal/dynamo"
	"github.com/san-kum/rkode/internal/experiment"
	"github.com/san-kum/rkode/internal/export"
	"github.com/san-kum/rkode/internal/viz"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INTEGRATOR\tSAMPLES\tREJECTED\tEVALS\tMAX ERR\tFINAL ERR\tTIME")

	var trajs []dynamo.Trajectory
	var series []export.Series
	for _, name := range args[1:] {
		c := *cfg
		c.Integrator = name
		exp, err := newExperiment(&c, reg, true)
		if err != nil {
			return err
		}

		start := time.Now()
		out, err := exp.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)

		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.3e\t%.3e\t%v\n",
			name, out.Len(), out.Rejected, out.Evaluations, out.MaxError, out.FinalError, elapsed)
		trajs = append(trajs, out.Trajectory)
		series = append(series, export.Series{Name: name, Traj: out.Trajectory})
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, viz.PlotCompare(trajs, args[1:], width, height))

	if outFile != "" {
		if err := os.WriteFile(outFile, []byte(export.SeriesToSVG(series, 800, 400)), 0644); err != nil {
			return err
		}
		logger.Info("wrote svg", "path", outFile)
	}
	return nil
}

func convergence(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	// Observed order is only meaningful on a uniform grid.
	exp, err := newExperiment(cfg, experiment.NewRegistry(), false)
	if err != nil {
		return err
	}
	problem := exp.Problem()
	exact := func(t float64) float64 { return problem.Exact(cfg.T0, cfg.Y0, t) }

	points, err := analysis.Convergence(cmd.Context(), exp.Simulator(), problem, exact,
		cfg.T0, cfg.Y0, cfg.TF, analysis.Halvings(cfg.Dt, levels))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	styles := viz.NewStyles(viz.ThemeNeon)
	fmt.Fprintf(w, "%s on %s over [%g, %g]\n\n", cfg.Integrator, cfg.Model, cfg.T0, cfg.TF)
	fmt.Fprintln(w, styles.ConvergenceTable(points))

	if n := len(points); n > 1 && !math.IsNaN(points[n-1].Order) {
		fmt.Fprintf(w, "\nobserved order: %.2f\n", points[n-1].Order)
	}
	return nil
}

func sensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg, experiment.NewRegistry(), true)
	if err != nil {
		return err
	}

	rate, err := analysis.Sensitivity(cmd.Context(), exp.Simulator(), exp.Problem(),
		cfg.T0, cfg.Y0, cfg.Dt, cfg.TF, delta)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "separation rate: %.6f\n", rate)
	switch {
	case rate > 1e-3:
		fmt.Fprintln(w, "nearby solutions diverge; initial errors grow")
	case rate < -1e-3:
		fmt.Fprintln(w, "nearby solutions converge; initial errors decay")
	default:
		fmt.Fprintln(w, "nearby solutions stay parallel")
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(y0List) == 0 {
		return fmt.Errorf("%w: --y0s is empty", dynamo.ErrInvalidArgument)
	}

	reg := experiment.NewRegistry()
	exp, err := newExperiment(cfg, reg, true)
	if err != nil {
		return err
	}
	factory, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return err
	}

	ens := dynamo.NewEnsemble(factory, exp.Config().Sim, workers).WithLogger(logger)
	start := time.Now()
	results, err := ens.Run(cmd.Context(), exp.Problem(), cfg.T0, y0List, cfg.Dt, cfg.TF)
	if err != nil {
		return err
	}
	logger.Info("ensemble finished", "runs", len(results), "elapsed", time.Since(start))

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Y0\tY(TF)\tEXACT\tERROR\tSTEPS\tEVALS")

	trajs := make([]dynamo.Trajectory, len(results))
	legends := make([]string, len(results))
	for i, res := range results {
		tEnd, yEnd := res.Last()
		exact := exp.Problem().Exact(cfg.T0, y0List[i], tEnd)
		fmt.Fprintf(tw, "%g\t%.10g\t%.10g\t%.3e\t%d\t%d\n",
			y0List[i], yEnd, exact, math.Abs(yEnd-exact), res.StepsTaken, res.Evaluations)
		trajs[i] = res.Trajectory
		legends[i] = fmt.Sprintf("y0=%g", y0List[i])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, viz.PlotCompare(trajs, legends, 80, 12))
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	if _, err := reg.GetModel(args[0]); err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "benchmarking %s over [%g, %g]\n\n", cfg.Model, cfg.T0, cfg.TF)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INTEG\tDT\tSTEPS\tEVALS\tTIME\tEVALS/SEC\tFINAL ERR")

	for _, name := range reg.ListIntegrators() {
		for _, h := range []float64{0.1, 0.01, 0.001} {
			c := *cfg
			c.Integrator = name
			c.Dt = h
			exp, err := newExperiment(&c, reg, false)
			if err != nil {
				return err
			}

			start := time.Now()
			out, err := exp.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s dt=%g: %w", name, h, err)
			}
			elapsed := time.Since(start)

			fmt.Fprintf(tw, "%s\t%g\t%d\t%d\t%v\t%.0f\t%.3e\n",
				name, h, out.StepsTaken, out.Evaluations, elapsed,
				float64(out.Evaluations)/elapsed.Seconds(), out.FinalError)
		}
	}
	return tw.Flush()
}
