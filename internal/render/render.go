// Package render turns bodies and their trails into drawable discs.
//
// Every frontend (window, terminal, SVG) draws the same sprite list so the
// fade and shrink of a trail look alike everywhere. For trail index i of a
// trail with capacity n:
//
//	progress = i / n
//	alpha    = TrailOpacity * (1 - progress)
//	radius   = bodyRadius * (1 - 0.7*progress)
//
// Trail sprites come first and the opaque body disc last, so drawing the list
// in order puts trails behind the body.
package render

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// TrailOpacity scales the alpha of every trail disc.
	TrailOpacity = 0.3
	// ShrinkFactor is how much of the radius the oldest trail disc loses.
	ShrinkFactor = 0.7
)

type Sprite struct {
	Center r2.Vec
	Radius float64
	Alpha  float64
	Color  string
	Trail  bool
}

func Progress(i, capacity int) float64 {
	return float64(i) / float64(capacity)
}

func Fade(progress float64) float64 {
	return 1 - progress
}

func Shrink(progress float64) float64 {
	return 1 - ShrinkFactor*progress
}

// Sprites returns the trail of b from newest to oldest followed by b itself.
func Sprites(b *dynamo.Body) []Sprite {
	out := make([]Sprite, 0, b.Trail.Len()+1)
	for i, p := range b.Trail.All() {
		progress := b.Trail.Progress(i)
		out = append(out, Sprite{
			Center: p,
			Radius: b.Radius() * Shrink(progress),
			Alpha:  TrailOpacity * Fade(progress),
			Color:  b.Color,
			Trail:  true,
		})
	}
	return append(out, Sprite{
		Center: b.Pos,
		Radius: b.Radius(),
		Alpha:  1,
		Color:  b.Color,
	})
}

// Frame returns the sprites of every body in draw order.
func Frame(bodies ...*dynamo.Body) []Sprite {
	var out []Sprite
	for _, b := range bodies {
		out = append(out, Sprites(b)...)
	}
	return out
}

// Viewport maps world coordinates to pixels. World [-1,1] spans the shorter
// screen side at Zoom 1; y points up in the world and down on screen.
type Viewport struct {
	Width, Height int
	Zoom          float64
}

func NewViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height, Zoom: 1}
}

func (v Viewport) scale() float64 {
	side := v.Width
	if v.Height < side {
		side = v.Height
	}
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return float64(side) / 2 * zoom
}

func (v Viewport) ToScreen(p r2.Vec) (x, y float64) {
	s := v.scale()
	return float64(v.Width)/2 + p.X*s, float64(v.Height)/2 - p.Y*s
}

func (v Viewport) Radius(r float64) float64 {
	return r * v.scale()
}
