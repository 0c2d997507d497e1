package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/trail"
)

// Simulation owns both bodies for its whole lifetime.
type Simulation struct {
	cfg     dynamo.Config
	stepper *physics.Stepper
	a, b    *dynamo.Body
	initA   *dynamo.Body
	initB   *dynamo.Body
	t       float64
	steps   int
	metrics []dynamo.Metric
}

// Frontend is the platform collaborator driven by Loop.
type Frontend interface {
	// Render draws, presents and polls input for the current frame.
	Render(s *Simulation)
	// Continue reports whether the loop should run another iteration.
	Continue() bool
}

// Pauser is implemented by frontends that can hold the simulation still
// while they keep rendering.
type Pauser interface {
	Paused() bool
}

func New(cfg dynamo.Config, a, b *dynamo.Body) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if a == nil || b == nil || a == b {
		return nil, dynamo.ErrBodyCount
	}

	a.Trail = trail.New(cfg.TrailLength)
	b.Trail = trail.New(cfg.TrailLength)

	return &Simulation{
		cfg:     cfg,
		stepper: physics.NewStepperFromConfig(cfg),
		a:       a,
		b:       b,
		initA:   a.Clone(),
		initB:   b.Clone(),
		metrics: make([]dynamo.Metric, 0),
	}, nil
}

// AddMetric attaches m to headless runs. It observes the initial state and
// the state after every step.
func (s *Simulation) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulation) Bodies() (*dynamo.Body, *dynamo.Body) { return s.a, s.b }
func (s *Simulation) Config() dynamo.Config                { return s.cfg }
func (s *Simulation) Time() float64                        { return s.t }
func (s *Simulation) Steps() int                           { return s.steps }
func (s *Simulation) State() dynamo.State                  { return dynamo.Snapshot(s.a, s.b) }

func (s *Simulation) Energy() float64 {
	return physics.Energy(s.a, s.b, s.stepper.G)
}

// Tick advances the bodies by one time step and records both trails at the
// start-of-step positions. A step the stepper rejects leaves bodies and trails
// unchanged.
func (s *Simulation) Tick() error {
	startA, startB := s.a.Pos, s.b.Pos

	if err := s.stepper.Step(s.a, s.b, s.cfg.Dt); err != nil {
		return &dynamo.SimulationError{Step: s.steps, Time: s.t, Wrapped: err}
	}
	s.a.Trail.Record(startA)
	s.b.Trail.Record(startB)

	if s.cfg.ValidateState && (!s.a.IsValid() || !s.b.IsValid()) {
		return &dynamo.SimulationError{Step: s.steps, Time: s.t, Wrapped: dynamo.ErrInvalidState}
	}

	s.t += s.cfg.Dt
	s.steps++
	return nil
}

// Reset restores the initial bodies and clears both trails.
func (s *Simulation) Reset() {
	a, b := s.initA.Clone(), s.initB.Clone()
	*s.a = *a
	*s.b = *b
	s.t = 0
	s.steps = 0
}

// Run advances the simulation headlessly for the given number of steps,
// sampling the state every sampleEvery steps.
func (s *Simulation) Run(ctx context.Context, steps, sampleEvery int) (*dynamo.Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, steps/sampleEvery+1),
		Times:   make([]float64, 0, steps/sampleEvery+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.States = append(result.States, s.State())
	result.Times = append(result.Times, s.t)

	initialEnergy := s.Energy()
	s.observe()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy)
			return result, ctx.Err()
		default:
		}

		if err := s.Tick(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++
		s.observe()

		if result.StepsTaken%sampleEvery == 0 {
			result.States = append(result.States, s.State())
			result.Times = append(result.Times, s.t)
		}
	}

	s.finish(result, initialEnergy)
	return result, nil
}

func (s *Simulation) observe() {
	for _, m := range s.metrics {
		m.Observe(s.a, s.b, s.t)
	}
}

func (s *Simulation) finish(result *dynamo.Result, initialEnergy float64) {
	finalEnergy := s.Energy()
	if initialEnergy != 0 && !math.IsInf(initialEnergy, 0) {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Loop runs {tick, render} until the frontend stops, the context is canceled
// or a tick fails. The current iteration always completes.
func (s *Simulation) Loop(ctx context.Context, f Frontend) error {
	pauser, _ := f.(Pauser)
	for {
		if pauser == nil || !pauser.Paused() {
			if err := s.Tick(); err != nil {
				return err
			}
		}
		f.Render(s)

		if !f.Continue() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
