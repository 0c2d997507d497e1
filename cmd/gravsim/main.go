package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	dt          float64
	gravity     float64
	trailLength int
	minDistance float64
	steps       int
	sampleEvery int
	configFile  string
	preset      string
	frameRate   int
	dtList      []float64
	workers     int
	trials      int
	perturb     float64
	seed        int64
	width       int
	height      int
)

// registerSimFlags adds the flags that describe a simulation. Flags the user
// sets override the config file, which overrides the preset.
func registerSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset (see 'gravsim presets')")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultConfig().Dt, "timestep")
	cmd.Flags().Float64Var(&gravity, "g", config.DefaultConfig().G, "gravitational constant")
	cmd.Flags().IntVar(&trailLength, "trail", config.DefaultConfig().TrailLength, "trail length per body")
	cmd.Flags().Float64Var(&minDistance, "min-distance", 0, "lower bound on the separation used for the force")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "two-body gravity simulation",
		Run:   runGUI,
	}
	registerSimFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the simulation window",
		Args:  cobra.NoArgs,
		Run:   runGUI,
	}
	registerSimFlags(guiCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and save the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	registerSimFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample", 10, "keep every n-th state")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	registerSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot separation and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [file]",
		Short: "export run data to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportCSV,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period and apsides of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	orbitCmd := &cobra.Command{
		Use:   "orbit [run_id]",
		Short: "plot the relative orbit of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  orbitPlot,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [file]",
		Short: "write an SVG snapshot after --steps steps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeSVG,
	}
	registerSimFlags(svgCmd)
	svgCmd.Flags().IntVar(&width, "width", 800, "image width")
	svgCmd.Flags().IntVar(&height, "height", 600, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare time steps over the same simulated duration",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	registerSimFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&dtList, "dts", []float64{0.001, 0.005, 0.01, 0.05}, "time steps to compare")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = number of CPUs)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial bodies and count stable orbits",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	registerSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.001, "maximum perturbation of each coordinate")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the stepper",
		Args:  cobra.NoArgs,
		RunE:  benchStepper,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [file]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	})

	rootCmd.AddCommand(guiCmd, runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd,
		analyzeCmd, orbitCmd, svgCmd, presetsCmd, sweepCmd, scenarioCmd, monteCarloCmd, benchCmd, configCmd)
	return rootCmd
}

func runGUI(cmd *cobra.Command, args []string) {
	if err := openWindow(cmd); err != nil {
		log.Fatalf("gravsim: %v", err)
	}
}
