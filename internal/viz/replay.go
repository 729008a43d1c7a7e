package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rkode/internal/dynamo"
)

const (
	canvasWidth  = 60
	canvasHeight = 18
	frameRate    = 30
	maxSpeed     = 1024
)

type TickMsg time.Time

type keyMap struct {
	Pause, Restart, Back, Forward, Faster, Slower, Theme, Help, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Restart, k.Back, k.Forward},
		{k.Faster, k.Slower, k.Theme, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Back:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "seek back")),
	Forward: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "seek forward")),
	Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Replay reveals a finished trajectory sample by sample.
type Replay struct {
	traj    dynamo.Trajectory
	title   string
	canvas  *Canvas
	theme   Theme
	styles  Styles
	help    help.Model
	head    int
	speed   int
	running bool
}

func NewReplay(traj dynamo.Trajectory, title string) Replay {
	speed := max(1, traj.Len()/(frameRate*5))
	return Replay{
		traj:    traj,
		title:   title,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   ThemeNeon,
		styles:  NewStyles(ThemeNeon),
		help:    help.New(),
		head:    min(1, traj.Len()),
		speed:   speed,
		running: true,
	}
}

// WithTheme selects the initial color scheme.
func (m Replay) WithTheme(t Theme) Replay {
	m.theme = t
	m.styles = NewStyles(t)
	return m
}

func (m Replay) Init() tea.Cmd {
	return tick()
}

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.running = !m.running
		case key.Matches(msg, keys.Restart):
			m.head = min(1, m.traj.Len())
			m.running = true
		case key.Matches(msg, keys.Back):
			m.seek(-m.speed)
		case key.Matches(msg, keys.Forward):
			m.seek(m.speed)
		case key.Matches(msg, keys.Faster):
			m.speed = min(m.speed*2, maxSpeed)
		case key.Matches(msg, keys.Slower):
			m.speed = max(m.speed/2, 1)
		case key.Matches(msg, keys.Theme):
			m.theme = nextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case TickMsg:
		if m.running {
			m.seek(m.speed)
			if m.Done() {
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Replay) seek(delta int) {
	m.head = max(min(m.head+delta, m.traj.Len()), min(1, m.traj.Len()))
}

// Head is the number of samples currently shown.
func (m Replay) Head() int { return m.head }

func (m Replay) Speed() int { return m.speed }

func (m Replay) Running() bool { return m.running }

func (m Replay) Done() bool { return m.head >= m.traj.Len() }

func (m Replay) View() string {
	m.canvas.Clear()
	m.canvas.PlotTrajectory(m.traj, m.head)

	plot := lipgloss.NewStyle().Foreground(m.theme.Primary).Padding(1, 2).Render(m.canvas.String())
	side := m.stats()
	body := lipgloss.JoinHorizontal(lipgloss.Top, plot, side)

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Replay) stats() string {
	n := m.traj.Len()
	if n == 0 {
		return m.styles.Summary("empty trajectory", nil)
	}

	i := m.head - 1
	status := m.styles.Good.Render("playing")
	switch {
	case m.Done():
		status = m.styles.Value.Render("done")
	case !m.running:
		status = m.styles.Warn.Render("paused")
	}

	fields := []Field{
		F("sample", "%d / %d", m.head, n),
		F("t", "%.6g", m.traj.T[i]),
		F("y", "%.6g", m.traj.Y[i]),
		F("speed", "%dx", m.speed),
		{Label: "status", Value: status},
	}
	if i > 0 {
		fields = append(fields, F("dt", "%.3g", m.traj.T[i]-m.traj.T[i-1]))
	}

	panel := m.styles.Summary("state", fields)
	progress := m.styles.ProgressBar(float64(m.head)/float64(n), 30)
	spark := Sparkline(m.traj.Y[:m.head], 30)
	return lipgloss.JoinVertical(lipgloss.Left, panel, progress, spark, fmt.Sprintf("theme %s", m.theme.Name))
}
