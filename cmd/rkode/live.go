package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/rkode/internal/dynamo"
	"github.com/san-kum/rkode/internal/experiment"
	"github.com/san-kum/rkode/internal/storage"
	"github.com/san-kum/rkode/internal/viz"
)

// runLive replays a stored run when the argument names one, otherwise it
// integrates the argument as a model first.
func runLive(cmd *cobra.Command, args []string) error {
	var (
		traj  dynamo.Trajectory
		title string
	)

	if len(args) == 1 {
		if meta, err := storage.New(dataDir).Load(args[0]); err == nil {
			_, traj, err = loadRun(meta.ID)
			if err != nil {
				return err
			}
			title = fmt.Sprintf("%s  %s / %s", meta.ID, meta.Model, meta.Integrator)
		}
	}

	if title == "" {
		cfg, err := resolveConfig(cmd, args)
		if err != nil {
			return err
		}
		exp, err := newExperiment(cfg, experiment.NewRegistry(), true)
		if err != nil {
			return err
		}
		out, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		traj = out.Trajectory
		title = fmt.Sprintf("%s / %s  max error %.2e", cfg.Model, cfg.Integrator, out.MaxError)
	}

	model := viz.NewReplay(traj, title).WithTheme(viz.GetTheme(theme))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}
