package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const (
	mass   = 5000000.0
	radius = 0.05
	dt     = 0.01
)

func newPair(massA, massB float64, posA, posB, velA, velB r2.Vec) (*dynamo.Body, *dynamo.Body) {
	a, err := dynamo.NewBody("a", massA, radius, posA, velA)
	Expect(err).NotTo(HaveOccurred())
	b, err := dynamo.NewBody("b", massB, radius, posB, velB)
	Expect(err).NotTo(HaveOccurred())
	return a, b
}

func scenario() (*dynamo.Body, *dynamo.Body) {
	return newPair(mass, mass,
		r2.Vec{X: -0.5}, r2.Vec{X: 0.5},
		r2.Vec{Y: 0.01}, r2.Vec{Y: -0.01})
}

var _ = Describe("Stepper", func() {
	var st *physics.Stepper

	BeforeEach(func() {
		st = physics.NewStepper(dynamo.DefaultG)
	})

	Describe("a single step of the reference scenario", func() {
		It("changes body A's velocity by G*mB*dt toward B", func() {
			a, b := scenario()
			Expect(st.Step(a, b, dt)).To(Succeed())

			// d=(1,0), r=1: accA = G*mA*mB/(r*mA) = G*mB
			wantDelta := dynamo.DefaultG * mass * dt
			Expect(a.Vel.X).To(BeNumerically("~", wantDelta, 1e-20))
			Expect(a.Vel.Y).To(Equal(0.01))
			Expect(b.Vel.X).To(BeNumerically("~", -wantDelta, 1e-20))
			Expect(b.Vel.Y).To(Equal(-0.01))
		})

		It("moves positions with the updated velocity", func() {
			a, b := scenario()
			Expect(st.Step(a, b, dt)).To(Succeed())

			wantDelta := dynamo.DefaultG * mass * dt
			Expect(a.Pos.X).To(BeNumerically("~", -0.5+wantDelta*dt, 1e-15))
			Expect(a.Pos.Y).To(BeNumerically("~", 0.01*dt, 1e-15))
			Expect(b.Pos.X).To(BeNumerically("~", 0.5-wantDelta*dt, 1e-15))
			Expect(b.Pos.Y).To(BeNumerically("~", -0.01*dt, 1e-15))
		})

		It("leaves mass and radius unchanged", func() {
			a, b := scenario()
			Expect(st.Step(a, b, dt)).To(Succeed())
			Expect(a.Mass()).To(Equal(mass))
			Expect(b.Radius()).To(Equal(radius))
		})
	})

	Describe("semi-implicit ordering", func() {
		It("uses the new velocity for the position update", func() {
			a, b := newPair(1, 1, r2.Vec{X: -1}, r2.Vec{X: 1}, r2.Vec{}, r2.Vec{})
			st.G = 1

			Expect(st.Step(a, b, 0.5)).To(Succeed())

			// acc = G*mB/r^2 = 0.25; v = 0.125; x += v*dt = 0.0625
			Expect(a.Vel.X).To(BeNumerically("~", 0.125, 1e-15))
			Expect(a.Pos.X).To(BeNumerically("~", -1+0.0625, 1e-15))
		})
	})

	DescribeTable("momentum conservation",
		func(massA, massB float64, steps int) {
			a, b := newPair(massA, massB,
				r2.Vec{X: -0.4, Y: 0.1}, r2.Vec{X: 0.6, Y: -0.2},
				r2.Vec{X: 0.002, Y: 0.01}, r2.Vec{X: -0.001, Y: -0.02})
			st.G = 1e-6

			p0 := physics.Momentum(a, b)
			for i := 0; i < steps; i++ {
				Expect(st.Step(a, b, dt)).To(Succeed())
			}
			p1 := physics.Momentum(a, b)

			scale := math.Max(r2.Norm(p0), 1)
			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-9*scale))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-9*scale))
		},
		Entry("equal masses", 5e3, 5e3, 1000),
		Entry("unequal masses", 1e4, 2.5e2, 1000),
		Entry("single step", 7.0, 3.0, 1),
	)

	Describe("symmetry", func() {
		It("produces equal and opposite forces when the bodies are swapped", func() {
			a, b := newPair(3e6, 7e6,
				r2.Vec{X: -0.3, Y: 0.2}, r2.Vec{X: 0.4, Y: -0.1},
				r2.Vec{}, r2.Vec{})

			fAB, err := st.Force(a, b)
			Expect(err).NotTo(HaveOccurred())
			fBA, err := st.Force(b, a)
			Expect(err).NotTo(HaveOccurred())

			tol := 1e-12 * r2.Norm(fAB)
			Expect(r2.Norm(fAB)).To(BeNumerically("~", r2.Norm(fBA), tol))
			Expect(fAB.X).To(BeNumerically("~", -fBA.X, tol))
			Expect(fAB.Y).To(BeNumerically("~", -fBA.Y, tol))
		})

		It("scales each acceleration by the body's own mass", func() {
			a, b := newPair(2, 8, r2.Vec{}, r2.Vec{X: 2}, r2.Vec{}, r2.Vec{})
			st.G = 1

			accA, accB, err := st.Accelerations(a, b)
			Expect(err).NotTo(HaveOccurred())
			Expect(accA.X * a.Mass()).To(BeNumerically("~", -accB.X*b.Mass(), 1e-15))
			Expect(accA.X).To(BeNumerically(">", 0))
			Expect(accB.X).To(BeNumerically("<", 0))
		})
	})

	Describe("coincident bodies", func() {
		var a, b *dynamo.Body

		BeforeEach(func() {
			a, b = newPair(mass, mass, r2.Vec{X: 0.1}, r2.Vec{X: 0.1}, r2.Vec{Y: 1}, r2.Vec{Y: -1})
		})

		It("rejects the step without a minimum distance", func() {
			err := st.Step(a, b, dt)
			Expect(err).To(MatchError(dynamo.ErrCoincident))
			Expect(a.Pos).To(Equal(r2.Vec{X: 0.1}))
			Expect(a.Vel).To(Equal(r2.Vec{Y: 1}))
			Expect(b.Vel).To(Equal(r2.Vec{Y: -1}))
		})

		It("stays finite when a minimum distance is configured", func() {
			st.MinDistance = 0.01
			Expect(st.Step(a, b, dt)).To(Succeed())
			Expect(a.IsValid()).To(BeTrue())
			Expect(b.IsValid()).To(BeTrue())
			Expect(a.Vel).To(Equal(r2.Vec{Y: 1}))
		})

		It("clamps the force magnitude below the minimum distance", func() {
			st.G = 1
			st.MinDistance = 1
			near, far := newPair(1, 1, r2.Vec{}, r2.Vec{X: 0.001}, r2.Vec{}, r2.Vec{})

			f, err := st.Force(near, far)
			Expect(err).NotTo(HaveOccurred())
			// r clamped to 1: |F| = G*m*m/1 scaled by |d|/r
			Expect(r2.Norm(f)).To(BeNumerically("~", 0.001, 1e-12))
		})
	})

	DescribeTable("invalid time steps",
		func(step float64) {
			a, b := scenario()
			Expect(st.Step(a, b, step)).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("zero", 0.0),
		Entry("negative", -0.01),
		Entry("NaN", math.NaN()),
		Entry("Inf", math.Inf(1)),
	)

	Describe("parameters", func() {
		It("round-trips through SetParam", func() {
			Expect(st.SetParam("min_distance", 0.02)).To(Succeed())
			Expect(st.GetParams()).To(HaveKeyWithValue("min_distance", 0.02))
			Expect(st.SetParam("g", -1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(st.SetParam("mass", 1)).To(HaveOccurred())
		})
	})
})
