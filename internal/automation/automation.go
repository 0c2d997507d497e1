package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is one run. It starts from a preset or a config file and
// applies the overrides that are set.
type ScenarioStep struct {
	Preset      string   `yaml:"preset"`
	Config      string   `yaml:"config"`
	Dt          *float64 `yaml:"dt"`
	G           *float64 `yaml:"g"`
	MinDistance *float64 `yaml:"min_distance"`
	TrailLength *int     `yaml:"trail_length"`
	Steps       *int     `yaml:"steps"`
	Sample      int      `yaml:"sample"`
	SaveAs      string   `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	RunID  string
	Result *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file. Config paths inside it are
// relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", path)
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

// Resolve returns the configuration a step runs with.
func (sc *Scenario) Resolve(step ScenarioStep) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case step.Config != "":
		path := step.Config
		if !filepath.IsAbs(path) && sc.dir != "" {
			path = filepath.Join(sc.dir, path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case step.Preset != "":
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if step.Dt != nil {
		cfg.Dt = *step.Dt
	}
	if step.G != nil {
		cfg.G = *step.G
	}
	if step.MinDistance != nil {
		cfg.MinDistance = *step.MinDistance
	}
	if step.TrailLength != nil {
		cfg.TrailLength = *step.TrailLength
	}
	if step.Steps != nil {
		cfg.Steps = *step.Steps
	}
	if step.SaveAs != "" {
		cfg.Name = step.SaveAs
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order and saves each run when store is
// not nil. It stops at the first step that cannot be set up.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := scenario.Resolve(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Name)

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx, step.Sample)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: cfg.Name, Result: result}
		if store != nil {
			id, err := store.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
	// EscapeFactor marks a trial unstable when the final separation exceeds
	// this multiple of the initial one.
	EscapeFactor float64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID       int
	Bodies        []config.BodyConfig
	FinalState    dynamo.State
	MinSeparation float64
	Stable        bool
	Err           error
}

// RunMonteCarlo runs the base configuration with every body position and
// velocity jittered uniformly within ±Perturbation.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	escape := cfg.EscapeFactor
	if escape <= 0 {
		escape = 10
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		trialCfg := cfg.Base.Clone()
		for i := range trialCfg.Bodies {
			b := &trialCfg.Bodies[i]
			for k := 0; k < 2; k++ {
				b.Pos[k] += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
				b.Vel[k] += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
			}
		}

		mc := MonteCarloResult{TrialID: trial, Bodies: trialCfg.Bodies}

		exp, err := experiment.New(trialCfg)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx, trialCfg.Steps)
		if err != nil {
			return nil, err
		}

		initial := result.States[0].Separation()
		mc.FinalState = result.States[len(result.States)-1]
		mc.MinSeparation = result.Metrics["min_separation"]
		if len(result.Errors) > 0 {
			mc.Err = result.Errors[0]
		}
		mc.Stable = mc.Err == nil && mc.FinalState.IsValid() && mc.FinalState.Separation() <= escape*initial

		results = append(results, mc)

		if (trial+1)%10 == 0 {
			fmt.Printf("Monte Carlo: %d/%d trials complete\n", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
