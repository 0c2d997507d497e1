package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Background is the colour trail dots fade towards.
var Background = colorful.Color{}

// Canvas is a braille pixel grid with one colour per character cell. The
// brightest dot written into a cell decides its colour.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	colors [][]colorful.Color
	weight [][]float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		colors: make([][]colorful.Color, h),
		weight: make([][]float64, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.colors[i] = make([]colorful.Color, w)
		c.weight[i] = make([]float64, w)
	}
	c.Clear()
	return c
}

// PixelSize returns the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

// Set lights the sub-pixel (x, y) in col at full strength.
func (c *Canvas) Set(x, y int, col colorful.Color) {
	c.SetAlpha(x, y, col, 1)
}

// SetAlpha lights the sub-pixel (x, y) with col blended towards the
// background by 1-alpha.
func (c *Canvas) SetAlpha(x, y int, col colorful.Color, alpha float64) {
	if x < 0 || y < 0 {
		return
	}

	cx, cy := x/2, y/4
	if cx >= c.Width || cy >= c.Height {
		return
	}

	c.Grid[cy][cx] |= rune(pixelMap[y%4][x%2])
	if alpha > c.weight[cy][cx] {
		c.weight[cy][cx] = alpha
		c.colors[cy][cx] = Background.BlendRgb(col, alpha).Clamped()
	}
}

// At reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) At(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// ColorAt returns the colour of the cell holding sub-pixel (x, y).
func (c *Canvas) ColorAt(x, y int) colorful.Color {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return Background
	}
	return c.colors[y/4][x/2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.colors[i][j] = Background
			c.weight[i][j] = 0
		}
	}
}

// FillCircle lights every sub-pixel within r of (cx, cy). A radius below one
// sub-pixel still lights the centre.
func (c *Canvas) FillCircle(cx, cy, r float64, col colorful.Color, alpha float64) {
	if r < 0.5 {
		c.SetAlpha(floor(cx), floor(cy), col, alpha)
		return
	}
	for y := floor(cy - r); y <= floor(cy+r); y++ {
		for x := floor(cx - r); x <= floor(cx+r); x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r*r {
				c.SetAlpha(x, y, col, alpha)
			}
		}
	}
}

// String renders the grid without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the grid with each lit cell in its colour.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if r == blank {
				b.WriteRune(r)
				continue
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.colors[i][j].Hex()))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func floor(v float64) int { return int(math.Floor(v)) }
