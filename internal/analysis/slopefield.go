package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/rkode/internal/dynamo"
)

// SlopeField renders the direction field of sys over the bounding box of
// traj, with the trajectory drawn on top.
func SlopeField(sys dynamo.System, traj dynamo.Trajectory, width, height int) string {
	if traj.Len() == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := traj.T[0], traj.T[0]
	minY, maxY := traj.Y[0], traj.Y[0]
	for i := range traj.T {
		minX = math.Min(minX, traj.T[i])
		maxX = math.Max(maxX, traj.T[i])
		minY = math.Min(minY, traj.Y[i])
		maxY = math.Max(maxY, traj.Y[i])
	}

	// Add padding
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

	canvas := make([][]rune, height)
	for row := range canvas {
		canvas[row] = make([]rune, width)
		for col := range canvas[row] {
			canvas[row][col] = ' '
		}
	}

	// Slopes are drawn in screen units so the glyph matches the visible angle.
	aspect := (rangeY / float64(height-1)) / (rangeX / float64(width-1))
	for row := 0; row < height; row += 2 {
		for col := 0; col < width; col += 4 {
			t := minX + float64(col)/float64(width-1)*rangeX
			y := maxY - float64(row)/float64(height-1)*rangeY
			dy, err := sys.Derive(t, y)
			if err != nil || math.IsNaN(dy) {
				continue
			}
			canvas[row][col] = slopeGlyph(dy / aspect)
		}
	}

	for i := range traj.T {
		if math.IsNaN(traj.Y[i]) || math.IsInf(traj.Y[i], 0) {
			continue
		}
		col := int((traj.T[i] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((traj.Y[i]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func slopeGlyph(s float64) rune {
	angle := math.Atan(s) * 180 / math.Pi
	switch {
	case angle > 67.5 || angle < -67.5:
		return '|'
	case angle > 22.5:
		return '/'
	case angle < -22.5:
		return '\\'
	default:
		return '-'
	}
}
