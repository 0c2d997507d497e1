package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/physics"
	"golang.org/x/sync/errgroup"
)

// Candidate is one evaluated parameter combination.
type Candidate struct {
	Params      map[string]float64
	Steps       int
	Score       float64
	EnergyDrift float64
	Metrics     map[string]float64
	Err         error
}

// GridSearch runs every combination of parameter values against a base
// configuration, several at a time.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.NumCPU()}
}

func (g *GridSearch) SetWorkers(n int) {
	if n > 0 {
		g.workers = n
	}
}

// Search evaluates the grid and returns candidates ordered by the named
// metric, smallest first. Candidates whose run failed sort last. The
// simulated duration stays that of base when dt varies.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if !knownParam(name) {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
	}

	var grid []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &grid)

	duration := float64(base.Steps) * base.Dt
	candidates := make([]Candidate, len(grid))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range grid {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			candidates[i] = evaluate(ctx, base, duration, params, metricName)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if (ci.Err == nil) != (cj.Err == nil) {
			return ci.Err == nil
		}
		return ci.Score < cj.Score
	})
	return candidates, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, out)
	}
}

func evaluate(ctx context.Context, base *config.Config, duration float64, params map[string]float64, metricName string) Candidate {
	c := Candidate{Params: params, Score: math.Inf(1)}

	cfg := base.Clone()
	for name, v := range params {
		if err := applyParam(cfg, name, v); err != nil {
			c.Err = err
			return c
		}
	}
	if v, ok := params["dt"]; ok && v > 0 {
		cfg.Steps = max(1, int(math.Round(duration/v)))
	}
	c.Steps = cfg.Steps

	exp, err := experiment.New(cfg)
	if err != nil {
		c.Err = err
		return c
	}
	result, err := exp.Run(ctx, cfg.Steps)
	if err != nil {
		c.Err = err
		return c
	}
	if len(result.Errors) > 0 {
		c.Err = result.Errors[0]
	}

	c.EnergyDrift = result.EnergyDrift
	c.Metrics = result.Metrics
	if v, ok := result.Metrics[metricName]; ok {
		c.Score = v
	}
	return c
}

// knownParam reports whether name is dt or one of the stepper parameters.
func knownParam(name string) bool {
	if name == "dt" {
		return true
	}
	_, ok := physics.NewStepper(dynamo.DefaultG).GetParams()[name]
	return ok
}

// applyParam sets dt directly and stepper parameters through
// [physics.Stepper.SetParam], so their bounds apply.
func applyParam(cfg *config.Config, name string, v float64) error {
	if name == "dt" {
		cfg.Dt = v
		return nil
	}
	st := physics.NewStepperFromConfig(cfg.SimConfig())
	if err := st.SetParam(name, v); err != nil {
		return err
	}
	cfg.G, cfg.MinDistance = st.G, st.MinDistance
	return nil
}

// Sweep runs base at each time step over the same simulated duration and
// ranks the results by energy drift.
func Sweep(ctx context.Context, base *config.Config, dts []float64, workers int) ([]Candidate, error) {
	g := NewGridSearch([]string{"dt"}, [][]float64{dts})
	g.SetWorkers(workers)
	return g.Search(ctx, base, "energy_drift")
}

// Best returns the first successful candidate.
func Best(candidates []Candidate) (Candidate, bool) {
	for _, c := range candidates {
		if c.Err == nil {
			return c, true
		}
	}
	return Candidate{}, false
}
