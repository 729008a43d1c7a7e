package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rkode/internal/analysis"
	"github.com/san-kum/rkode/internal/config"
	"github.com/san-kum/rkode/internal/dynamo"
	"github.com/san-kum/rkode/internal/experiment"
	"github.com/san-kum/rkode/internal/export"
	"github.com/san-kum/rkode/internal/models"
	"github.com/san-kum/rkode/internal/storage"
	"github.com/san-kum/rkode/internal/viz"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the named file, or the command's stdout for "".
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

func loadRun(runID string) (*storage.RunMetadata, dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, dynamo.Trajectory{}, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, dynamo.Trajectory{}, err
	}
	return meta, traj, nil
}

// problemFor rebuilds the model a run was produced from.
func problemFor(meta *storage.RunMetadata) (models.Problem, error) {
	problem, err := experiment.NewRegistry().GetModel(meta.Model)
	if err != nil {
		return nil, err
	}
	if c, ok := problem.(dynamo.Configurable); ok {
		for name, v := range meta.Params {
			if err := c.SetParam(name, v); err != nil {
				return nil, err
			}
		}
	}
	return problem, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODEL\tINTEG\tTIME\tINTERVAL\tDT\tSAMPLES\tFINAL ERR")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t[%g, %g]\t%g\t%d\t%.2e\n",
			run.ID,
			run.Model,
			run.Integrator,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0, run.TF,
			run.Dt,
			run.Samples,
			run.Metrics["final_error"],
		)
	}
	return tw.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fields := []viz.Field{
		viz.F("model", "%s", meta.Model),
		viz.F("integrator", "%s", meta.Integrator),
		viz.F("created", "%s", meta.Timestamp.Format("2006-01-02 15:04:05")),
		viz.F("interval", "[%g, %g]", meta.T0, meta.TF),
		viz.F("y0", "%g", meta.Y0),
		viz.F("dt", "%g", meta.Dt),
		viz.F("endpoint", "%s", meta.Endpoint),
		viz.F("adaptive", "%t", meta.Adaptive),
		viz.F("samples", "%d", meta.Samples),
		viz.F("steps", "%d", meta.StepsTaken),
		viz.F("rejected", "%d", meta.Rejected),
		viz.F("evaluations", "%d", meta.Evaluations),
	}
	if meta.Adaptive {
		fields = append(fields, viz.F("tolerance", "%g", meta.Tolerance))
	}
	for _, name := range sortedNames(meta.Params) {
		fields = append(fields, viz.F("param "+name, "%g", meta.Params[name]))
	}
	for _, name := range sortedNames(meta.Metrics) {
		fields = append(fields, viz.F(name, "%.4g", meta.Metrics[name]))
	}

	fmt.Fprintln(cmd.OutOrStdout(), viz.NewStyles(viz.ThemeNeon).Summary(meta.ID, fields))
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	if err := storage.New(dataDir).Delete(args[0]); err != nil {
		return err
	}
	logger.Info("deleted run", "id", args[0])
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run: %s\nmodel: %s\nsamples: %d\n\n", meta.ID, meta.Model, traj.Len())

	if slopeField {
		problem, err := problemFor(meta)
		if err != nil {
			return err
		}
		fmt.Fprint(w, analysis.SlopeField(problem, traj, width, height*2))
		return nil
	}

	caption := fmt.Sprintf("y(t), %s on %s", meta.Integrator, meta.Model)
	fmt.Fprintln(w, viz.PlotTrajectory(traj, caption, width, height))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(cmd, outFile)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(out, traj); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(cmd, outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, *meta, traj); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	svg := export.SeriesToSVG([]export.Series{{
		Name: fmt.Sprintf("%s %s", meta.Model, meta.Integrator),
		Traj: traj,
	}}, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("run %s has fewer than two samples", meta.ID)
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("wrote svg", "path", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Fprintf(w, "no presets for model: %s\n", args[0])
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PRESET\tINTEG\tY0\tDT\tINTERVAL\n")
	for _, name := range presets {
		p := config.GetPreset(args[0], name)
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t[%g, %g]\n", name, p.Integrator, p.Y0, p.Dt, p.T0, p.TF)
	}
	return tw.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := cmd.OutOrStdout()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tPARAMS\tPRESETS")
	for _, name := range reg.ListModels() {
		problem, err := reg.GetModel(name)
		if err != nil {
			return err
		}
		var ps map[string]float64
		if c, ok := problem.(dynamo.Configurable); ok {
			ps = c.GetParams()
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\n", name, formatParams(ps), config.ListPresets(name))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, name := range reg.ListIntegrators() {
		kind := "fixed"
		if reg.IsAdaptive(name) {
			kind = "adaptive"
		}
		fmt.Fprintf(w, "%-6s %s\n", name, kind)
	}
	return nil
}
