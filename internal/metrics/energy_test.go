package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func pair(t *testing.T, posA, posB, velA, velB r2.Vec) (*dynamo.Body, *dynamo.Body) {
	t.Helper()
	a, err := dynamo.NewBody("a", 2, 0.1, posA, velA)
	if err != nil {
		t.Fatal(err)
	}
	b, err := dynamo.NewBody("b", 3, 0.1, posB, velB)
	if err != nil {
		t.Fatal(err)
	}
	return a, b
}

func TestEnergy(t *testing.T) {
	m := NewEnergy(1.0)
	a, b := pair(t, r2.Vec{}, r2.Vec{X: 2}, r2.Vec{X: 1}, r2.Vec{Y: 2})

	m.Observe(a, b, 0)
	// ke = 1 + 6, pe = -2*3/2
	if got := m.Value(); math.Abs(got-4) > 1e-12 {
		t.Errorf("expected energy 4, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergy_SkipsCoincident(t *testing.T) {
	m := NewEnergy(1.0)
	a, b := pair(t, r2.Vec{}, r2.Vec{}, r2.Vec{}, r2.Vec{})

	m.Observe(a, b, 0)
	if m.Value() != 0 {
		t.Errorf("expected coincident sample to be skipped, got %f", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(1.0)
	a, b := pair(t, r2.Vec{}, r2.Vec{X: 2}, r2.Vec{X: 1}, r2.Vec{Y: 2})

	m.Observe(a, b, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift after first sample, got %f", m.Value())
	}

	b.Vel = r2.Vec{Y: 0}
	m.Observe(a, b, 0.1)
	// energy 4 -> -2: drift 1.5
	if got := m.Value(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("expected drift 1.5, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()
	a, b := pair(t, r2.Vec{}, r2.Vec{X: 1}, r2.Vec{X: 1}, r2.Vec{})

	m.Observe(a, b, 0)
	a.Vel = r2.Vec{X: 1, Y: 2}
	m.Observe(a, b, 0.1)

	// delta p = 2 * (0, 2)
	if got := m.Value(); math.Abs(got-4) > 1e-12 {
		t.Errorf("expected drift 4, got %f", got)
	}
}

func TestMinSeparation(t *testing.T) {
	m := NewMinSeparation()
	if m.Value() != 0 {
		t.Errorf("expected 0 before observations, got %f", m.Value())
	}

	a, b := pair(t, r2.Vec{}, r2.Vec{X: 3}, r2.Vec{}, r2.Vec{})
	m.Observe(a, b, 0)
	b.Pos = r2.Vec{X: 1}
	m.Observe(a, b, 0)
	b.Pos = r2.Vec{X: 2}
	m.Observe(a, b, 0)

	if m.Value() != 1 {
		t.Errorf("expected min separation 1, got %f", m.Value())
	}
}

func TestBounded(t *testing.T) {
	m := NewBounded(1.0)
	a, b := pair(t, r2.Vec{}, r2.Vec{X: 0.5}, r2.Vec{}, r2.Vec{})

	m.Observe(a, b, 0)
	b.Pos = r2.Vec{X: 1.5}
	m.Observe(a, b, 0)

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestDefaults(t *testing.T) {
	names := make(map[string]bool)
	for _, m := range Defaults(dynamo.DefaultConfig()) {
		if names[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		names[m.Name()] = true
	}
	for _, want := range []string{"energy", "energy_drift", "momentum_drift", "min_separation", "bounded"} {
		if !names[want] {
			t.Errorf("missing default metric %s", want)
		}
	}
}
