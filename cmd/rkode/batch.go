package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rkode/internal/automation"
	"github.com/san-kum/rkode/internal/config"
	"github.com/san-kum/rkode/internal/experiment"
	"github.com/san-kum/rkode/internal/optim"
	"github.com/san-kum/rkode/internal/storage"
)

var (
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int

	mcSpread float64
	mcTrials int
	mcSeed   uint64
	mcBound  float64

	tuneTarget      float64
	tuneSteps       []float64
	tuneIntegrators []string
)

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	// report what finished even when a later step failed
	results, runErr := automation.RunScenario(cmd.Context(), scenario, reg, logger)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "scenario %s: %d/%d steps\n", scenario.Name, len(results), len(scenario.Steps))

	st := storage.New(dataDir)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tMODEL\tINTEG\tSAMPLES\tMAX ERR\tRUN ID")
	for i, r := range results {
		runID := "-"
		if r.Step.Save {
			if err := st.Init(); err != nil {
				return err
			}
			metrics := map[string]float64{"max_error": r.Outcome.MaxError, "final_error": r.Outcome.FinalError}
			runID, err = st.Save(runInfo(r.Config), r.Outcome.Result, metrics)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.3e\t%s\n",
			i+1, r.Step.Model, r.Step.Integrator, r.Outcome.Len(), r.Outcome.MaxError, runID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return runErr
}

func experimentConfig(cfg *config.Config, reg *experiment.Registry, adaptive bool) (experiment.Config, error) {
	exp, err := newExperiment(cfg, reg, adaptive)
	if err != nil {
		return experiment.Config{}, err
	}
	return exp.Config(), nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	base, err := experimentConfig(cfg, reg, true)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:   base,
		Param:  sweepParam,
		Min:    sweepFrom,
		Max:    sweepTo,
		Points: sweepPoints,
	}, reg, logger)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tY(TF)\tEXACT\tMAX ERR\tEVALS\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(tw, "%g\t%.10g\t%.10g\t%.3e\t%d\n", r.Value, r.Final, r.Exact, r.MaxError, r.Evaluation)
	}
	return tw.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	base, err := experimentConfig(cfg, reg, true)
	if err != nil {
		return err
	}

	summary, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:    base,
		Spread:  mcSpread,
		Trials:  mcTrials,
		Seed:    mcSeed,
		Workers: workers,
		Bound:   mcBound,
	}, reg, logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "trials: %d\nbounded: %d\nmean error: %.3e\nmax error: %.3e\n",
		len(summary.Trials), summary.Bounded, summary.MeanError, summary.MaxError)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	search, err := optim.NewGridSearch([]string{"dt"}, [][]float64{tuneSteps})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "INTEG\tBEST DT\tEVALS\tMAX ERR\n")
	for _, name := range tuneIntegrators {
		build := func(p map[string]float64) (*experiment.Experiment, error) {
			c := *cfg
			c.Integrator = name
			c.Dt = p["dt"]
			return newExperiment(&c, reg, false)
		}

		best, _, err := search.Search(cmd.Context(), build, optim.EvaluationsWithin(tuneTarget))
		if errors.Is(err, optim.ErrNoCandidate) {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", name)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%g\t%d\t%.3e\n", name, best.Params["dt"], best.Outcome.Evaluations, best.Outcome.MaxError)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\ntarget max error: %g\n", tuneTarget)
	return nil
}
