package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Energy returns kinetic plus gravitational potential energy. The potential
// uses the true separation and is -Inf for coincident bodies.
func Energy(a, b *dynamo.Body, g float64) float64 {
	ke := a.KineticEnergy() + b.KineticEnergy()
	r := Separation(a, b)
	if r == 0 {
		return math.Inf(-1)
	}
	pe := -g * a.Mass() * b.Mass() / r
	return ke + pe
}

func Momentum(a, b *dynamo.Body) r2.Vec {
	return r2.Add(a.Momentum(), b.Momentum())
}

// AngularMomentum returns the z component of the total angular momentum about the origin.
func AngularMomentum(a, b *dynamo.Body) float64 {
	L := 0.0
	for _, body := range [...]*dynamo.Body{a, b} {
		L += body.Mass() * r2.Cross(body.Pos, body.Vel)
	}
	return L
}

func Separation(a, b *dynamo.Body) float64 {
	return r2.Norm(r2.Sub(b.Pos, a.Pos))
}

func CenterOfMass(a, b *dynamo.Body) r2.Vec {
	m := a.Mass() + b.Mass()
	return r2.Scale(1/m, r2.Add(r2.Scale(a.Mass(), a.Pos), r2.Scale(b.Mass(), b.Pos)))
}
