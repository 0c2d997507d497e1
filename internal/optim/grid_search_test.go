package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestSweep_RanksByEnergyDrift(t *testing.T) {
	base := config.GetPreset("eccentric")
	base.Steps = 500

	candidates, err := Sweep(context.Background(), base, []float64{0.05, -1, 0.001}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}

	best, ok := Best(candidates)
	if !ok {
		t.Fatal("no successful candidate")
	}
	if best.Params["dt"] != 0.001 {
		t.Errorf("best dt = %v, want 0.001", best.Params["dt"])
	}
	if best.Steps != 5000 {
		t.Errorf("best steps = %d, want 5000 (same duration as base)", best.Steps)
	}
	if candidates[1].Params["dt"] != 0.05 {
		t.Errorf("second dt = %v, want 0.05", candidates[1].Params["dt"])
	}

	last := candidates[2]
	if last.Params["dt"] != -1 || !errors.Is(last.Err, dynamo.ErrParameterBounds) {
		t.Errorf("invalid dt should rank last with ErrParameterBounds, got %+v", last)
	}
}

func TestSweep_CoarseStepDoesNotWin(t *testing.T) {
	base := config.DefaultConfig()
	base.Steps = 1000

	candidates, err := Sweep(context.Background(), base, []float64{10, 0.01}, 2)
	if err != nil {
		t.Fatal(err)
	}
	best, ok := Best(candidates)
	if !ok {
		t.Fatal("no successful candidate")
	}
	if best.Params["dt"] != 0.01 {
		t.Errorf("best dt = %v, want 0.01; candidates %+v", best.Params["dt"], candidates)
	}

	for _, c := range candidates {
		if c.Params["dt"] == 10 && c.Score == 0 {
			t.Errorf("single-step run scored zero drift: %+v", c)
		}
	}
}

func TestGridSearch_StepperParamBounds(t *testing.T) {
	base := config.GetPreset("binary")
	base.Steps = 20

	g := NewGridSearch([]string{"min_distance"}, [][]float64{{-0.5, 0.01}})
	candidates, err := g.Search(context.Background(), base, "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if candidates[0].Err != nil || candidates[0].Params["min_distance"] != 0.01 {
		t.Errorf("first candidate = %+v, want min_distance 0.01", candidates[0])
	}
	if !errors.Is(candidates[1].Err, dynamo.ErrParameterBounds) {
		t.Errorf("negative min_distance: got %v, want ErrParameterBounds", candidates[1].Err)
	}
}

func TestGridSearch_Combinations(t *testing.T) {
	base := config.GetPreset("binary")
	base.Steps = 20

	g := NewGridSearch([]string{"dt", "min_distance"}, [][]float64{{0.01, 0.02}, {0, 0.1}})
	candidates, err := g.Search(context.Background(), base, "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 4 {
		t.Fatalf("got %d candidates, want 4", len(candidates))
	}

	seen := make(map[[2]float64]bool)
	for _, c := range candidates {
		if c.Err != nil {
			t.Errorf("candidate %v failed: %v", c.Params, c.Err)
		}
		seen[[2]float64{c.Params["dt"], c.Params["min_distance"]}] = true
	}
	if len(seen) != 4 {
		t.Errorf("combinations not distinct: %v", seen)
	}
}

func TestGridSearch_UnknownParam(t *testing.T) {
	g := NewGridSearch([]string{"spin"}, [][]float64{{1}})
	if _, err := g.Search(context.Background(), config.DefaultConfig(), "energy_drift"); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestSweep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Sweep(ctx, config.DefaultConfig(), []float64{0.01, 0.02}, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
