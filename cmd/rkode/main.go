package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/rkode/internal/config"
	"github.com/san-kum/rkode/internal/logging"
)

var (
	dataDir  string
	logLevel string
	noColor  bool

	configFile string
	preset     string
	integrator string
	t0         float64
	y0         float64
	dt         float64
	tf         float64
	endpoint   string
	tolerance  float64
	minDt      float64
	maxDt      float64
	maxSteps   int
	noValidate bool
	fixedStep  bool
	params     map[string]string

	noSave     bool
	showPlot   bool
	slopeField bool
	width      int
	height     int
	svgWidth   int
	svgHeight  int
	outFile    string
	theme      string
	levels     int
	workers    int
	y0List     []float64
	delta      float64

	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rkode",
		Short:         "runge-kutta solvers for scalar initial value problems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logLevel
			if !cmd.Flags().Changed("log-level") {
				if v, ok := os.LookupEnv(config.EnvPrefix + "LOG_LEVEL"); ok {
					level = v
				}
			}
			logger = logging.NewLogger(os.Stderr, logging.ParseLevel(level), noColor)
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rkode", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print a plot of the trajectory")
	addPlotFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addPlotFlags(plotCmd)
	plotCmd.Flags().BoolVar(&slopeField, "slope", false, "draw the direction field under the trajectory")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run as an SVG line chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addSolverFlags(compareCmd)
	addPlotFlags(compareCmd)
	compareCmd.Flags().StringVarP(&outFile, "svg", "o", "", "also write the overlay to an SVG file")

	convergeCmd := &cobra.Command{
		Use:   "converge [model]",
		Short: "measure the observed order of accuracy",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convergence,
	}
	addSolverFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&levels, "levels", 5, "number of step halvings")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity [model]",
		Short: "estimate how fast nearby solutions separate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sensitivity,
	}
	addSolverFlags(sensitivityCmd)
	sensitivityCmd.Flags().Float64Var(&delta, "delta", 1e-6, "initial perturbation")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "integrate many initial values in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSolverFlags(ensembleCmd)
	ensembleCmd.Flags().Float64SliceVar(&y0List, "y0s", []float64{0.5, 1, 1.5, 2}, "initial values")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "time every integrator over a range of step sizes",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model|run_id]",
		Short: "replay a trajectory in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSolverFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "neon", "color theme")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "vary one model parameter and report the error",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "name", "rate", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -1, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "integrate randomly perturbed initial values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSolverFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64Var(&mcSpread, "spread", 0.1, "half width of the y0 interval")
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Uint64Var(&mcSeed, "seed", 1, "random seed")
	monteCarloCmd.Flags().Float64Var(&mcBound, "bound", 1e6, "|y(tf)| above which a trial counts as unbounded")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "find the cheapest step size that meets an error target",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSolverFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&tuneTarget, "target", 1e-6, "largest acceptable max error")
	tuneCmd.Flags().Float64SliceVar(&tuneSteps, "steps", []float64{0.5, 0.2, 0.1, 0.05, 0.02, 0.01, 0.005, 0.001}, "candidate step sizes")
	tuneCmd.Flags().StringSliceVar(&tuneIntegrators, "integrators", []string{"euler", "rk4", "rk45"}, "integrators to tune")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and integrators",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, deleteCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd,
		compareCmd, convergeCmd, sensitivityCmd, ensembleCmd, benchCmd,
		scenarioCmd, sweepCmd, monteCarloCmd, tuneCmd,
		liveCmd, presetsCmd, modelsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", "rk4", "integrator")
	f.Float64Var(&t0, "t0", config.DefaultT0, "initial time")
	f.Float64Var(&y0, "y0", config.DefaultY0, "initial value")
	f.Float64Var(&dt, "dt", config.DefaultDt, "step size (initial step when adaptive)")
	f.Float64Var(&tf, "tf", config.DefaultTF, "final time")
	f.StringVar(&endpoint, "endpoint", "clamp", "endpoint policy (clamp, truncate, overshoot)")
	f.Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	f.Float64Var(&minDt, "min-dt", config.DefaultMinDt, "smallest adaptive step")
	f.Float64Var(&maxDt, "max-dt", 0, "largest adaptive step (0 = unbounded)")
	f.IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step limit")
	f.BoolVar(&noValidate, "no-validate", false, "skip the non-finite state check on fixed-step runs")
	f.BoolVar(&fixedStep, "fixed", false, "run an adaptive integrator with a fixed step")
	f.StringToStringVar(&params, "param", nil, "model parameter, e.g. --param rate=-2")
}

func addPlotFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 12, "plot height")
}
