// Package viz renders trajectories in the terminal.
//
//   - [PlotTrajectory] and [PlotCompare]: asciigraph line charts
//   - [Canvas]: Braille dot matrix for denser plots
//   - [Styles]: lipgloss summary panels and convergence tables
//   - [Replay]: Bubble Tea program that plays a trajectory back
//
// # Replay keys
//
//	Space - Pause/Resume
//	R     - Restart
//	[ ]   - Seek backward/forward
//	+ -   - Change playback speed
//	T     - Cycle color themes
//	?     - Toggle help
package viz
