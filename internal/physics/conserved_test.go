package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/physics"
)

var _ = Describe("conserved quantities", func() {
	It("computes kinetic plus potential energy", func() {
		a, b := newPair(2, 3, r2.Vec{}, r2.Vec{X: 2}, r2.Vec{X: 1}, r2.Vec{Y: 2})
		// ke = 0.5*2*1 + 0.5*3*4 = 7, pe = -1*2*3/2 = -3
		Expect(physics.Energy(a, b, 1)).To(BeNumerically("~", 4, 1e-12))
	})

	It("reports -Inf potential for coincident bodies", func() {
		a, b := newPair(1, 1, r2.Vec{}, r2.Vec{}, r2.Vec{}, r2.Vec{})
		Expect(math.IsInf(physics.Energy(a, b, 1), -1)).To(BeTrue())
	})

	It("keeps energy drift small over a bound orbit", func() {
		// Circular orbit for equal masses: v = sqrt(G*m/(4*r)) with r the half separation.
		g, m, half := 1.0, 1.0, 0.5
		v := math.Sqrt(g * m / (4 * half))
		a, b := newPair(m, m, r2.Vec{X: -half}, r2.Vec{X: half}, r2.Vec{Y: v}, r2.Vec{Y: -v})

		st := physics.NewStepper(g)
		e0 := physics.Energy(a, b, g)
		for i := 0; i < 5000; i++ {
			Expect(st.Step(a, b, 1e-3)).To(Succeed())
		}
		drift := math.Abs(physics.Energy(a, b, g)-e0) / math.Abs(e0)
		Expect(drift).To(BeNumerically("<", 1e-2))
		Expect(physics.Separation(a, b)).To(BeNumerically("~", 2*half, 1e-2))
	})

	It("computes angular momentum and centre of mass", func() {
		a, b := newPair(1, 3, r2.Vec{X: -1}, r2.Vec{X: 1}, r2.Vec{Y: 1}, r2.Vec{Y: -1})
		// L = 1*(-1*1) + 3*(1*-1) = -4
		Expect(physics.AngularMomentum(a, b)).To(BeNumerically("~", -4, 1e-12))
		com := physics.CenterOfMass(a, b)
		Expect(com.X).To(BeNumerically("~", 0.5, 1e-12))
		Expect(com.Y).To(BeNumerically("~", 0, 1e-12))
		Expect(physics.Momentum(a, b)).To(Equal(r2.Vec{X: 0, Y: -2}))
	})
})
