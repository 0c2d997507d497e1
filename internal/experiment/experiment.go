package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

// Experiment is one headless run of a configuration with the default metrics
// attached.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulation
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a, b, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	simCfg := cfg.SimConfig()
	s, err := sim.New(simCfg, a, b)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Defaults(simCfg) {
		s.AddMetric(m)
	}
	return &Experiment{cfg: cfg, simulator: s}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Run advances cfg.Steps steps, keeping every sampleEvery-th state.
func (e *Experiment) Run(ctx context.Context, sampleEvery int) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Steps, sampleEvery)
}
