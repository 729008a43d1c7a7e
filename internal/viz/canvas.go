package viz

import (
	"math"
	"strings"

	"github.com/san-kum/rkode/internal/dynamo"
)

const brailleBlank = 0x2800

// Braille cells are 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a dot matrix of Width*2 by Height*4 sub-pixels drawn with
// Braille characters.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return
	}
	c.Grid[y/4][x/2] |= dotBits[y%4][x%2]
}

// IsSet reports whether the dot at sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return false
	}
	return c.Grid[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine uses Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// PlotTrajectory draws the first n samples of traj as a polyline scaled to
// the bounding box of the whole trajectory, so a partial plot keeps the
// axes of the full one. n < 0 draws everything.
func (c *Canvas) PlotTrajectory(traj dynamo.Trajectory, n int) {
	if n < 0 || n > traj.Len() {
		n = traj.Len()
	}
	if n == 0 {
		return
	}

	b := boundsOf(traj)
	px, py := c.Width*2-1, c.Height*4-1
	toPixel := func(i int) (int, int) {
		x := (traj.T[i] - b.minX) / b.rangeX() * float64(px)
		y := (traj.Y[i] - b.minY) / b.rangeY() * float64(py)
		return int(math.Round(x)), py - int(math.Round(y))
	}

	x0, y0 := toPixel(0)
	c.Set(x0, y0)
	for i := 1; i < n; i++ {
		x1, y1 := toPixel(i)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func boundsOf(traj dynamo.Trajectory) bounds {
	b := bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
	for i := range traj.T {
		b.minX = math.Min(b.minX, traj.T[i])
		b.maxX = math.Max(b.maxX, traj.T[i])
		b.minY = math.Min(b.minY, traj.Y[i])
		b.maxY = math.Max(b.maxY, traj.Y[i])
	}
	return b
}

func (b bounds) rangeX() float64 {
	if r := b.maxX - b.minX; r > 0 {
		return r
	}
	return 1
}

func (b bounds) rangeY() float64 {
	if r := b.maxY - b.minY; r > 0 {
		return r
	}
	return 1
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
