package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rkode/internal/dynamo"
)

func ramp(n int) dynamo.Trajectory {
	tr := dynamo.Trajectory{T: make([]float64, n), Y: make([]float64, n)}
	for i := range n {
		tr.T[i] = float64(i) * 0.1
		tr.Y[i] = float64(i)
	}
	return tr
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != brailleBlank|0x01 {
		t.Errorf("cell 0 = %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank|0x80 {
		t.Errorf("cell 1 = %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("Clear left a dot")
	}
}

func TestCanvasPlotTrajectory(t *testing.T) {
	c := NewCanvas(10, 5)
	c.PlotTrajectory(ramp(11), -1)

	// y rises with t, so the corners of the diagonal are lit.
	if !c.IsSet(0, 19) {
		t.Error("first sample should be bottom left")
	}
	if !c.IsSet(19, 0) {
		t.Error("last sample should be top right")
	}

	partial := NewCanvas(10, 5)
	partial.PlotTrajectory(ramp(11), 3)
	if partial.IsSet(19, 0) {
		t.Error("partial plot drew past its head")
	}
}

func TestPlotTrajectory(t *testing.T) {
	if PlotTrajectory(dynamo.Trajectory{}, "", 40, 10) != "" {
		t.Error("empty trajectory should render nothing")
	}
	out := PlotTrajectory(ramp(20), "growth rk4", 40, 10)
	if !strings.Contains(out, "growth rk4") {
		t.Errorf("caption missing:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines < 10 {
		t.Errorf("expected at least 10 lines, got %d", lines)
	}
}

func TestPlotCompare(t *testing.T) {
	out := PlotCompare([]dynamo.Trajectory{ramp(10), ramp(5)}, []string{"rk4", "euler"}, 30, 8)
	if !strings.Contains(out, "rk4") || !strings.Contains(out, "euler") {
		t.Errorf("legends missing:\n%s", out)
	}
	if PlotCompare(nil, nil, 30, 8) != "" {
		t.Error("no series should render nothing")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("got %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}, 3); got != "▁▁▁" {
		t.Errorf("flat series got %q", got)
	}
	if Sparkline(nil, 5) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("retro").Name != "retro" {
		t.Error("retro not found")
	}
	if GetTheme("missing").Name != ThemeNeon.Name {
		t.Error("unknown theme should fall back to neon")
	}
	if nextTheme(ThemePlain).Name != Themes[0].Name {
		t.Error("theme cycle should wrap")
	}
}

func TestReplayPlayback(t *testing.T) {
	m := NewReplay(ramp(10), "test")
	if m.Head() != 1 || !m.Running() {
		t.Fatalf("initial head=%d running=%v", m.Head(), m.Running())
	}

	for range 20 {
		next, cmd := m.Update(TickMsg{})
		m = next.(Replay)
		if cmd == nil {
			t.Fatal("tick should schedule another tick")
		}
	}
	if !m.Done() || m.Running() {
		t.Errorf("replay should stop at the end, head=%d", m.Head())
	}

	next, _ := m.Update(key("r"))
	m = next.(Replay)
	if m.Head() != 1 || !m.Running() {
		t.Errorf("restart gave head=%d running=%v", m.Head(), m.Running())
	}
}

func TestReplayKeys(t *testing.T) {
	m := NewReplay(ramp(100), "test")

	next, _ := m.Update(key(" "))
	m = next.(Replay)
	if m.Running() {
		t.Error("space should pause")
	}

	next, _ = m.Update(TickMsg{})
	m = next.(Replay)
	if m.Head() != 1 {
		t.Errorf("paused replay advanced to %d", m.Head())
	}

	next, _ = m.Update(key("+"))
	m = next.(Replay)
	if m.Speed() != 2 {
		t.Errorf("speed = %d, want 2", m.Speed())
	}

	next, _ = m.Update(key("]"))
	m = next.(Replay)
	if m.Head() != 3 {
		t.Errorf("seek forward gave head %d", m.Head())
	}

	for range 5 {
		next, _ = m.Update(key("["))
		m = next.(Replay)
	}
	if m.Head() != 1 {
		t.Errorf("seek backward should stop at the first sample, got %d", m.Head())
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestReplayView(t *testing.T) {
	m := NewReplay(ramp(5), "growth")
	view := m.View()
	for _, want := range []string{"growth", "sample", "1 / 5", "? help"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := NewReplay(dynamo.Trajectory{}, "none")
	if !strings.Contains(empty.View(), "empty trajectory") {
		t.Error("empty replay should say so")
	}
}

func TestReplayHelpToggle(t *testing.T) {
	m := NewReplay(ramp(5), "growth")
	if strings.Contains(m.View(), "restart") {
		t.Error("short help should not list every binding")
	}

	next, _ := m.Update(key("?"))
	m = next.(Replay)
	if !strings.Contains(m.View(), "restart") {
		t.Error("full help should list restart")
	}
}
