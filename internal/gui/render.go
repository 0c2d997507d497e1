package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/render"
)

// drawSprites draws trail discs faded by their alpha, then the bodies.
func drawSprites(sprites []render.Sprite, vp render.Viewport) {
	for _, sp := range sprites {
		x, y := vp.ToScreen(sp.Center)
		r := float32(vp.Radius(sp.Radius))
		if r < 1 {
			r = 1
		}
		rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), r, rl.Fade(toColor(sp.Color), float32(sp.Alpha)))
	}
}

func toColor(hex string) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.White
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, 255)
}

func drawText(text string, x, y, size int32, color rl.Color) {
	rl.DrawText(text, x, y, size, color)
}

// drawTelemetry plots the energy history as a line strip inside the given
// rectangle.
func drawTelemetry(values []float64, x, y, width, height int32) {
	if len(values) < 2 {
		return
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(values))
	for i, val := range values {
		px := float32(x) + float32(i)/float32(len(values)-1)*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(y+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	drawText(fmt.Sprintf("E: %.3e", values[len(values)-1]), x+width+10, y+height-10, 14, ColText)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
