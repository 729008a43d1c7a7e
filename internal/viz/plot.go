package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rkode/internal/dynamo"
)

// PlotTrajectory renders y(t) as an ASCII line chart. The samples are
// plotted in order, so adaptive runs are compressed where steps are small.
func PlotTrajectory(traj dynamo.Trajectory, caption string, width, height int) string {
	if traj.Len() == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	return asciigraph.Plot(traj.Y, opts...)
}

// PlotCompare overlays several trajectories in one chart, one color each.
func PlotCompare(trajs []dynamo.Trajectory, legends []string, width, height int) string {
	series := make([][]float64, 0, len(trajs))
	for _, tr := range trajs {
		if tr.Len() > 0 {
			series = append(series, tr.Y)
		}
	}
	if len(series) == 0 {
		return ""
	}

	colors := []asciigraph.AnsiColor{
		asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow,
		asciigraph.Green, asciigraph.Red, asciigraph.Blue,
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors[:min(len(series), len(colors))]...),
	}
	if len(legends) == len(series) {
		opts = append(opts, asciigraph.SeriesLegends(legends...))
	}
	return asciigraph.PlotMany(series, opts...)
}
