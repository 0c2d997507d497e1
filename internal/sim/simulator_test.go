package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

func newBodies(posA, posB r2.Vec) (*dynamo.Body, *dynamo.Body) {
	a, err := dynamo.NewBody("a", 5e6, 0.05, posA, r2.Vec{Y: 0.01})
	Expect(err).NotTo(HaveOccurred())
	b, err := dynamo.NewBody("b", 5e6, 0.05, posB, r2.Vec{Y: -0.01})
	Expect(err).NotTo(HaveOccurred())
	return a, b
}

func newSim(cfg dynamo.Config) *sim.Simulation {
	a, b := newBodies(r2.Vec{X: -0.5}, r2.Vec{X: 0.5})
	s, err := sim.New(cfg, a, b)
	Expect(err).NotTo(HaveOccurred())
	return s
}

type countingMetric struct {
	observed int
	lastTime float64
	lastPos  r2.Vec
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(a, _ *dynamo.Body, t float64) {
	c.observed++
	c.lastTime = t
	c.lastPos = a.Pos
}
func (c *countingMetric) Value() float64 { return float64(c.observed) }
func (c *countingMetric) Reset()         { *c = countingMetric{} }

type frameLimit struct {
	frames int
	limit  int
}

func (f *frameLimit) Render(*sim.Simulation) { f.frames++ }
func (f *frameLimit) Continue() bool         { return f.frames < f.limit }

type pausedFrontend struct{ frameLimit }

func (p *pausedFrontend) Paused() bool { return true }

var _ = Describe("Simulation", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
	})

	Describe("construction", func() {
		It("rejects an invalid config", func() {
			cfg.Dt = 0
			a, b := newBodies(r2.Vec{X: -0.5}, r2.Vec{X: 0.5})
			_, err := sim.New(cfg, a, b)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("requires two distinct bodies", func() {
			a, _ := newBodies(r2.Vec{}, r2.Vec{})
			_, err := sim.New(cfg, a, a)
			Expect(err).To(MatchError(dynamo.ErrBodyCount))
			_, err = sim.New(cfg, a, nil)
			Expect(err).To(MatchError(dynamo.ErrBodyCount))
		})

		It("attaches trails of the configured length", func() {
			cfg.TrailLength = 7
			s := newSim(cfg)
			a, b := s.Bodies()
			Expect(a.Trail.Cap()).To(Equal(7))
			Expect(b.Trail.Cap()).To(Equal(7))
		})
	})

	Describe("Tick", func() {
		It("records positions from the start of the step", func() {
			s := newSim(cfg)
			a, b := s.Bodies()
			startA, startB := a.Pos, b.Pos

			Expect(s.Tick()).To(Succeed())

			front, ok := a.Trail.Front()
			Expect(ok).To(BeTrue())
			Expect(front).To(Equal(startA))
			front, _ = b.Trail.Front()
			Expect(front).To(Equal(startB))
			Expect(a.Pos).NotTo(Equal(startA))
		})

		It("keeps the newest recorded position at the front", func() {
			s := newSim(cfg)
			a, _ := s.Bodies()
			for i := 0; i < 20; i++ {
				before := a.Pos
				Expect(s.Tick()).To(Succeed())
				Expect(a.Trail.At(0)).To(Equal(before))
			}
		})

		It("bounds the trail at its capacity", func() {
			cfg.TrailLength = 50
			s := newSim(cfg)
			a, b := s.Bodies()
			for i := 0; i < 120; i++ {
				Expect(s.Tick()).To(Succeed())
				if i+1 >= 50 {
					Expect(a.Trail.Len()).To(Equal(50))
					Expect(b.Trail.Len()).To(Equal(50))
				}
			}
		})

		It("advances time and step count", func() {
			s := newSim(cfg)
			for i := 0; i < 3; i++ {
				Expect(s.Tick()).To(Succeed())
			}
			Expect(s.Steps()).To(Equal(3))
			Expect(s.Time()).To(BeNumerically("~", 0.03, 1e-12))
		})

		It("reports coincident bodies with step context", func() {
			a, b := newBodies(r2.Vec{X: 0.2}, r2.Vec{X: 0.2})
			s, err := sim.New(cfg, a, b)
			Expect(err).NotTo(HaveOccurred())

			err = s.Tick()
			Expect(err).To(MatchError(dynamo.ErrCoincident))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
			Expect(a.IsValid()).To(BeTrue())
		})

		It("leaves trails untouched when the step fails", func() {
			a, b := newBodies(r2.Vec{X: 0.2}, r2.Vec{X: 0.2})
			s, err := sim.New(cfg, a, b)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				Expect(s.Tick()).To(MatchError(dynamo.ErrCoincident))
			}
			Expect(s.Steps()).To(Equal(0))
			Expect(a.Trail.Len()).To(Equal(0))
			Expect(b.Trail.Len()).To(Equal(0))
			Expect(a.Pos).To(Equal(r2.Vec{X: 0.2}))
		})

		It("steps through coincidence when a minimum distance is set", func() {
			cfg.MinDistance = 0.01
			a, b := newBodies(r2.Vec{X: 0.2}, r2.Vec{X: 0.2})
			s, err := sim.New(cfg, a, b)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Tick()).To(Succeed())
			Expect(a.IsValid()).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("restores the initial bodies and clears trails", func() {
			s := newSim(cfg)
			a, _ := s.Bodies()
			start := a.Pos
			for i := 0; i < 10; i++ {
				Expect(s.Tick()).To(Succeed())
			}

			s.Reset()

			a2, _ := s.Bodies()
			Expect(a2).To(BeIdenticalTo(a))
			Expect(a.Pos).To(Equal(start))
			Expect(a.Trail.Len()).To(Equal(0))
			Expect(a.Trail.Cap()).To(Equal(cfg.TrailLength))
			Expect(s.Steps()).To(Equal(0))
			Expect(s.Time()).To(Equal(0.0))
		})
	})

	Describe("Run", func() {
		It("samples states and collects metrics", func() {
			s := newSim(cfg)
			m := &countingMetric{}
			s.AddMetric(m)

			result, err := s.Run(context.Background(), 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(100))
			Expect(result.States).To(HaveLen(11))
			Expect(result.Times).To(HaveLen(11))
			Expect(result.Times[10]).To(BeNumerically("~", 1.0, 1e-9))
			Expect(result.Metrics).To(HaveKeyWithValue("count", 101.0))
			Expect(result.Errors).To(BeEmpty())
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-3))
		})

		It("observes the state after the final step", func() {
			s := newSim(cfg)
			m := &countingMetric{}
			s.AddMetric(m)

			result, err := s.Run(context.Background(), 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(1))
			Expect(m.observed).To(Equal(2))
			Expect(m.lastTime).To(BeNumerically("~", cfg.Dt, 1e-12))

			a, _ := s.Bodies()
			Expect(m.lastPos).To(Equal(a.Pos))
		})

		It("stops at the first failing step", func() {
			a, b := newBodies(r2.Vec{}, r2.Vec{})
			s, err := sim.New(cfg, a, b)
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Run(context.Background(), 10, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(0))
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(MatchError(dynamo.ErrCoincident))
		})

		It("returns the partial result on cancellation", func() {
			s := newSim(cfg)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := s.Run(ctx, 10, 1)
			Expect(err).To(MatchError(context.Canceled))
			Expect(result).NotTo(BeNil())
			Expect(result.States).To(HaveLen(1))
		})

		It("rejects a non-positive step count", func() {
			s := newSim(cfg)
			_, err := s.Run(context.Background(), 0, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Loop", func() {
		It("ticks and renders once per frame until the frontend stops", func() {
			s := newSim(cfg)
			f := &frameLimit{limit: 5}

			Expect(s.Loop(context.Background(), f)).To(Succeed())
			Expect(f.frames).To(Equal(5))
			Expect(s.Steps()).To(Equal(5))
		})

		It("renders without ticking while paused", func() {
			s := newSim(cfg)
			f := &pausedFrontend{frameLimit{limit: 3}}

			Expect(s.Loop(context.Background(), f)).To(Succeed())
			Expect(f.frames).To(Equal(3))
			Expect(s.Steps()).To(Equal(0))
		})

		It("finishes the current iteration when the context is canceled", func() {
			s := newSim(cfg)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			f := &frameLimit{limit: 100}

			Expect(s.Loop(ctx, f)).To(Succeed())
			Expect(f.frames).To(Equal(1))
		})

		It("returns the tick error", func() {
			a, b := newBodies(r2.Vec{}, r2.Vec{})
			s, err := sim.New(cfg, a, b)
			Expect(err).NotTo(HaveOccurred())

			f := &frameLimit{limit: 10}
			Expect(s.Loop(context.Background(), f)).To(MatchError(dynamo.ErrCoincident))
			Expect(f.frames).To(Equal(0))
		})
	})
})
