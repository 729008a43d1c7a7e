package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rkode/internal/analysis"
)

type Styles struct {
	Panel  lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Hint   lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
	Header lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value: lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Hint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Good:  lipgloss.NewStyle().Foreground(t.Good),
		Warn:  lipgloss.NewStyle().Foreground(t.Warn),
		Bad:   lipgloss.NewStyle().Foreground(t.Bad),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
	}
}

// Field is one labelled line of a summary panel.
type Field struct {
	Label string
	Value string
}

func F(label string, format string, args ...any) Field {
	return Field{Label: label, Value: fmt.Sprintf(format, args...)}
}

// Summary renders a titled panel of label/value lines.
func (s Styles) Summary(title string, fields []Field) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(title))
	for _, f := range fields {
		b.WriteByte('\n')
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render(f.Label), s.Value.Render(f.Value)))
	}
	return s.Panel.Render(b.String())
}

// ConvergenceTable lists each refinement level with its errors and the
// observed order against the previous level.
func (s Styles) ConvergenceTable(points []analysis.ConvergencePoint) string {
	cell := lipgloss.NewStyle().Width(14).Align(lipgloss.Right)

	var rows []string
	rows = append(rows, s.Header.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		cell.Render("h"), cell.Render("steps"), cell.Render("evals"),
		cell.Render("max error"), cell.Render("final error"), cell.Render("order"))))

	for i, p := range points {
		order := "-"
		if i > 0 {
			order = fmt.Sprintf("%.2f", p.Order)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			cell.Render(fmt.Sprintf("%g", p.H)),
			cell.Render(fmt.Sprintf("%d", p.Steps)),
			cell.Render(fmt.Sprintf("%d", p.Evaluations)),
			cell.Render(fmt.Sprintf("%.3e", p.MaxError)),
			cell.Render(fmt.Sprintf("%.3e", p.FinalError)),
			cell.Render(order)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// ProgressBar renders fraction in [0, 1] as a bar of the given width.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case fraction >= 1:
		return s.Good.Render(bar)
	case fraction > 0.4:
		return s.Warn.Render(bar)
	default:
		return s.Bad.Render(bar)
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline samples values down to width characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	stride := max(1, len(values)/width)
	var b strings.Builder
	for i := 0; i < width && i*stride < len(values); i++ {
		norm := (values[i*stride] - lo) / rng
		idx := int(norm * float64(len(sparkChars)-1))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}
