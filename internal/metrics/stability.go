package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Bounded reports the fraction of steps where both bodies stay within
// threshold of the origin.
type Bounded struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{
		name:      "bounded",
		threshold: threshold,
	}
}

func (s *Bounded) Name() string {
	return s.name
}

func (s *Bounded) Observe(a, b *dynamo.Body, t float64) {
	s.samples++
	for _, body := range [...]*dynamo.Body{a, b} {
		if math.Abs(body.Pos.X) > s.threshold || math.Abs(body.Pos.Y) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Bounded) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Bounded) Reset() {
	s.violations = 0
	s.samples = 0
}

// MinSeparation tracks the closest approach of the two bodies.
type MinSeparation struct {
	min float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return "min_separation" }

func (m *MinSeparation) Observe(a, b *dynamo.Body, t float64) {
	m.min = math.Min(m.min, physics.Separation(a, b))
}

func (m *MinSeparation) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }

// Defaults returns the metrics recorded for every headless run.
func Defaults(cfg dynamo.Config) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(cfg.G),
		NewEnergyDrift(cfg.G),
		NewMomentumDrift(),
		NewMinSeparation(),
		NewBounded(1.0),
	}
}
