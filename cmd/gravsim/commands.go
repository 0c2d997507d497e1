package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/gui"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/render"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r2"
)

// buildConfig resolves preset, config file and flags, in increasing priority.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("g") {
		cfg.G = gravity
	}
	if flags.Changed("trail") {
		cfg.TrailLength = trailLength
	}
	if flags.Changed("min-distance") {
		cfg.MinDistance = minDistance
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulation(cfg *config.Config) (*sim.Simulation, error) {
	a, b, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return sim.New(cfg.SimConfig(), a, b)
}

func openWindow(cmd *cobra.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	return gui.Run(cmd.Context(), s)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Name)
	start := time.Now()

	result, err := exp.Run(cmd.Context(), sampleEvery)
	if result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d steps\n", result.StepsTaken)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	opts := []viz.Option{viz.WithFPS(frameRate)}
	if onlyChanged(cmd, "fps", "data") {
		return viz.RunInteractive(cmd.Context(), opts...)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, viz.WithTitle(cfg.Name))
	return viz.Run(cmd.Context(), s, opts...)
}

// onlyChanged reports whether every flag the user set is one of names.
func onlyChanged(cmd *cobra.Command, names ...string) bool {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	only := true
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if !allowed[f.Name] {
			only = false
		}
	})
	return only
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tDT\tDRIFT\tERRORS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.2e\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Dt,
			run.EnergyDrift,
			len(run.Errors),
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.State, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, states, times, nil
}

// energySeries recomputes the total energy of every sampled state from the
// masses recorded with the run.
func energySeries(meta *storage.RunMetadata, states []dynamo.State) ([]float64, error) {
	if len(meta.Bodies) != 2 {
		return nil, dynamo.ErrBodyCount
	}
	bodies := make([]*dynamo.Body, 2)
	for i, bc := range meta.Bodies {
		b, err := dynamo.NewBody(bc.Name, bc.Mass, bc.Radius, r2.Vec{}, r2.Vec{})
		if err != nil {
			return nil, err
		}
		bodies[i] = b
	}

	out := make([]float64, len(states))
	for i, s := range states {
		a, b := bodies[0], bodies[1]
		a.Pos, a.Vel, b.Pos, b.Vel = s.Bodies()
		out[i] = physics.Energy(a, b, meta.G)
	}
	return out, nil
}

func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(states))

	energy, err := energySeries(meta, states)
	if err != nil {
		return err
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"separation vs time", analysis.SeparationSeries(states)},
		{"total energy vs time", finiteOnly(energy)},
	}
	for _, s := range series {
		if len(s.data) == 0 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if len(args) == 1 {
		return st.ExportCSV(os.Stdout, args[0])
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := st.ExportCSV(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", args[1])
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("samples: %d over %.2f time units\n\n", len(states), times[len(times)-1]-times[0])

	peri, apo, ecc := analysis.Apsides(states)
	fmt.Printf("periapsis: %.5f\n", peri)
	fmt.Printf("apoapsis: %.5f\n", apo)
	fmt.Printf("eccentricity: %.4f\n", ecc)

	if period, err := analysis.OrbitalPeriod(states, times); err != nil {
		fmt.Printf("spectral period: %v\n", err)
	} else {
		fmt.Printf("spectral period: %.3f\n", period)
	}

	passages := analysis.PeriapsisTimes(states, times)
	if interval, err := analysis.MeanInterval(passages); err != nil {
		fmt.Printf("periapsis period: %v\n", err)
	} else {
		fmt.Printf("periapsis period: %.3f (%d passages)\n", interval, len(passages))
	}

	fmt.Printf("energy drift: %.3e\n", meta.EnergyDrift)
	return nil
}

func orbitPlot(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("relative orbit: %s\n", meta.ID)
	fmt.Printf("position of %s relative to %s\n\n", meta.Bodies[1].Name, meta.Bodies[0].Name)
	fmt.Print(analysis.OrbitToASCII(analysis.RelativeOrbit(states), 70, 25))
	return nil
}

func writeSVG(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulation(cfg)
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Steps; i++ {
		if err := s.Tick(); err != nil {
			return err
		}
	}

	path := "gravsim.svg"
	if len(args) > 0 {
		path = args[0]
	}
	a, b := s.Bodies()
	if err := export.WriteSVG(path, render.Frame(a, b), render.NewViewport(width, height)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (t=%.2f)\n", path, s.Time())
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDT\tTRAIL\tMIN_DIST\tBODIES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.4f\t%d\t%g\t%s, %s\n",
			name, p.Dt, p.TrailLength, p.MinDistance, p.Bodies[0].Name, p.Bodies[1].Name)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %d time steps over %.2f time units\n\n", len(dtList), float64(cfg.Steps)*cfg.Dt)
	candidates, err := optim.Sweep(cmd.Context(), cfg, dtList, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tMAX_DRIFT\tFINAL_DRIFT\tMIN_SEP\tSTATUS")
	for _, c := range candidates {
		status := "ok"
		if c.Err != nil {
			status = c.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%.4f\t%s\n",
			c.Params["dt"], c.Steps, c.Score, c.EnergyDrift, c.Metrics["min_separation"], status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := optim.Best(candidates); ok {
		fmt.Printf("\nbest dt: %g\n", best.Params["dt"])
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if sc.Name != "" {
		fmt.Printf("scenario: %s\n", sc.Name)
	}
	results, err := automation.RunScenario(cmd.Context(), sc, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nNAME\tRUN ID\tSTEPS\tDRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\n", r.Name, r.RunID, r.Result.StepsTaken, r.Result.EnergyDrift)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\n%d trials: %d stable, %d unstable\n", len(results), stable, unstable)
	return nil
}

func benchStepper(cmd *cobra.Command, args []string) error {
	stepCounts := []int{1000, 10000, 100000}
	dts := []float64{0.001, 0.01, 0.1}

	fmt.Println("benchmarking stepper")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tDT\tTIME\tSTEPS/SEC")

	for _, n := range stepCounts {
		for _, d := range dts {
			cfg := config.GetPreset("binary")
			cfg.Dt = d
			cfg.Steps = n

			exp, err := experiment.New(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context(), n)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%.3f\t%v\t%.0f\n", result.StepsTaken, d, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "gravsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
