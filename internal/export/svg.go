package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rkode/internal/dynamo"
)

// Series is one trajectory drawn as a polyline.
type Series struct {
	Name  string
	Traj  dynamo.Trajectory
	Color string
}

var palette = []string{"#00ff88", "#ff00ff", "#00ccff", "#ffcc00", "#ff4444"}

// TrajectoryToSVG plots a single trajectory as y against t.
func TrajectoryToSVG(traj dynamo.Trajectory, width, height int, strokeColor string) string {
	return SeriesToSVG([]Series{{Traj: traj, Color: strokeColor}}, width, height)
}

// SeriesToSVG plots every series on shared axes. Series with fewer than
// two samples are skipped; if none remain the result is empty.
func SeriesToSVG(series []Series, width, height int) string {
	drawn := make([]Series, 0, len(series))
	for _, s := range series {
		if s.Traj.Len() >= 2 {
			drawn = append(drawn, s)
		}
	}
	if len(drawn) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range drawn {
		for i := range s.Traj.T {
			minX = math.Min(minX, s.Traj.T[i])
			maxX = math.Max(maxX, s.Traj.T[i])
			minY = math.Min(minY, s.Traj.Y[i])
			maxY = math.Max(maxY, s.Traj.Y[i])
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	w, h := float64(width), float64(height)
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if minY < 0 && maxY > 0 {
		zero := h - (0-minY)/rangeY*h
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4 4"/>
`, zero, width, zero)
	}

	for n, s := range drawn {
		color := s.Color
		if color == "" {
			color = palette[n%len(palette)]
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5"`, color)
		if s.Name != "" {
			fmt.Fprintf(&sb, ` data-name="%s"`, s.Name)
		}
		sb.WriteString(` d="M`)
		for i := range s.Traj.T {
			x := (s.Traj.T[i] - minX) / rangeX * w
			y := h - (s.Traj.Y[i]-minY)/rangeY*h
			if i > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		}
		sb.WriteString("\"/>\n")
	}

	for n, s := range drawn {
		if s.Name == "" {
			continue
		}
		color := s.Color
		if color == "" {
			color = palette[n%len(palette)]
		}
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*n, color, s.Name)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
