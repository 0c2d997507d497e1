package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

type Stepper struct {
	G           float64
	MinDistance float64
}

func NewStepper(g float64) *Stepper {
	return &Stepper{G: g}
}

// NewStepperFromConfig copies G and MinDistance from cfg.
func NewStepperFromConfig(cfg dynamo.Config) *Stepper {
	return &Stepper{G: cfg.G, MinDistance: cfg.MinDistance}
}

// separation returns d = posB - posA and the distance used for the force,
// clamped to MinDistance when one is set.
func (s *Stepper) separation(a, b *dynamo.Body) (r2.Vec, float64, error) {
	d := r2.Sub(b.Pos, a.Pos)
	r := r2.Norm(d)
	if r < s.MinDistance {
		r = s.MinDistance
	}
	if r == 0 {
		return d, 0, dynamo.ErrCoincident
	}
	return d, r, nil
}

// Force returns the gravitational force on a due to b. The force on b is its
// negation.
func (s *Stepper) Force(a, b *dynamo.Body) (r2.Vec, error) {
	d, r, err := s.separation(a, b)
	if err != nil {
		return r2.Vec{}, err
	}
	f := s.G * a.Mass() * b.Mass() / (r * r)
	return r2.Scale(f/r, d), nil
}

// Accelerations returns F*d/(r*mA) for a and -F*d/(r*mB) for b.
func (s *Stepper) Accelerations(a, b *dynamo.Body) (accA, accB r2.Vec, err error) {
	d, r, err := s.separation(a, b)
	if err != nil {
		return r2.Vec{}, r2.Vec{}, err
	}
	f := s.G * a.Mass() * b.Mass() / (r * r)
	accA = r2.Scale(f/(r*a.Mass()), d)
	accB = r2.Scale(-f/(r*b.Mass()), d)
	return accA, accB, nil
}

// Step advances both bodies by dt in place. On error neither body is changed.
func (s *Stepper) Step(a, b *dynamo.Body, dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("dt %v: %w", dt, dynamo.ErrParameterBounds)
	}

	accA, accB, err := s.Accelerations(a, b)
	if err != nil {
		return err
	}

	a.Vel = r2.Add(a.Vel, r2.Scale(dt, accA))
	b.Vel = r2.Add(b.Vel, r2.Scale(dt, accB))

	a.Pos = r2.Add(a.Pos, r2.Scale(dt, a.Vel))
	b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
	return nil
}

// GetParams returns the tunable stepper parameters by name.
func (s *Stepper) GetParams() map[string]float64 {
	return map[string]float64{
		"g":            s.G,
		"min_distance": s.MinDistance,
	}
}

func (s *Stepper) SetParam(name string, value float64) error {
	switch name {
	case "g":
		if value <= 0 {
			return fmt.Errorf("g %v: %w", value, dynamo.ErrParameterBounds)
		}
		s.G = value
	case "min_distance":
		if value < 0 {
			return fmt.Errorf("min_distance %v: %w", value, dynamo.ErrParameterBounds)
		}
		s.MinDistance = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
