package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/trail"
	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a point mass. Mass and radius are fixed at construction; position
// and velocity are advanced in place by the stepper.
type Body struct {
	Name  string
	Color string
	Pos   r2.Vec
	Vel   r2.Vec
	Trail *trail.Buffer

	mass   float64
	radius float64
}

func NewBody(name string, mass, radius float64, pos, vel r2.Vec) (*Body, error) {
	if !positive(mass) {
		return nil, fmt.Errorf("body %q: mass %v: %w", name, mass, ErrParameterBounds)
	}
	if !positive(radius) {
		return nil, fmt.Errorf("body %q: radius %v: %w", name, radius, ErrParameterBounds)
	}
	return &Body{
		Name:   name,
		Color:  "#ffffff",
		Pos:    pos,
		Vel:    vel,
		Trail:  trail.New(trail.DefaultLength),
		mass:   mass,
		radius: radius,
	}, nil
}

func (b *Body) Mass() float64   { return b.mass }
func (b *Body) Radius() float64 { return b.radius }

func (b *Body) Momentum() r2.Vec {
	return r2.Scale(b.mass, b.Vel)
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * r2.Norm2(b.Vel)
}

// IsValid reports whether position and velocity are finite.
func (b *Body) IsValid() bool {
	for _, v := range [...]float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Clone copies the body with an empty trail of the same capacity.
func (b *Body) Clone() *Body {
	c := *b
	c.Trail = trail.New(b.Trail.Cap())
	return &c
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// State is a flat snapshot: x1, y1, vx1, vy1, x2, y2, vx2, vy2.
type State []float64

const StateDim = 8

func Snapshot(a, b *Body) State {
	return State{
		a.Pos.X, a.Pos.Y, a.Vel.X, a.Vel.Y,
		b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y,
	}
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Bodies splits the snapshot into per-body position and velocity.
func (s State) Bodies() (posA, velA, posB, velB r2.Vec) {
	return r2.Vec{X: s[0], Y: s[1]}, r2.Vec{X: s[2], Y: s[3]},
		r2.Vec{X: s[4], Y: s[5]}, r2.Vec{X: s[6], Y: s[7]}
}

// Separation returns the distance between the two bodies in the snapshot.
func (s State) Separation() float64 {
	return math.Hypot(s[4]-s[0], s[5]-s[1])
}

type Metric interface {
	Name() string
	Observe(a, b *Body, t float64)
	Value() float64
	Reset()
}

type Config struct {
	G             float64
	Dt            float64
	TrailLength   int
	MinDistance   float64
	ValidateState bool
}

const (
	DefaultG  = 6.67430e-11
	DefaultDt = 0.01
)

func DefaultConfig() Config {
	return Config{
		G:             DefaultG,
		Dt:            DefaultDt,
		TrailLength:   trail.DefaultLength,
		MinDistance:   0,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if !positive(c.G) {
		return fmt.Errorf("g must be positive, got %v: %w", c.G, ErrParameterBounds)
	}
	if !positive(c.Dt) {
		return fmt.Errorf("dt must be positive, got %v: %w", c.Dt, ErrParameterBounds)
	}
	if c.TrailLength < 1 {
		return fmt.Errorf("trail length must be positive, got %d: %w", c.TrailLength, ErrParameterBounds)
	}
	if c.MinDistance < 0 || math.IsNaN(c.MinDistance) || math.IsInf(c.MinDistance, 0) {
		return fmt.Errorf("min distance must be finite and non-negative, got %v: %w", c.MinDistance, ErrParameterBounds)
	}
	return nil
}

type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}
