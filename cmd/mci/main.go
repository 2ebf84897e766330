// Command mci runs Metropolis Monte Carlo integrations from the command
// line: single runs, parameter sweeps, step-size-tuner benchmarks, and
// scripted multi-step scenarios.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mcintegrate/internal/automation"
	"github.com/san-kum/mcintegrate/internal/config"
	"github.com/san-kum/mcintegrate/internal/experiment"
	"github.com/san-kum/mcintegrate/internal/export"
	"github.com/san-kum/mcintegrate/internal/integrator"
	"github.com/san-kum/mcintegrate/internal/optim"
	"github.com/san-kum/mcintegrate/internal/storage"
	"github.com/san-kum/mcintegrate/internal/tui"
	"github.com/san-kum/mcintegrate/internal/viz"
)

var (
	dataDir              string
	distribution         string
	ndim                 int
	nmc                  int
	seed                 uint64
	targetAcceptanceRate float64
	initStepSize         float64
	trialMoveVecLen      int
	accumulatorKind      string
	nblocks              int
	presetName           string
	configFile           string
	sweepField           string
	sweepMin, sweepMax   float64
	sweepSteps           int
	sweepOptimize        bool
	scenarioFile         string
	liveView             bool
	plotScatter          bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mci",
		Short: "Metropolis Monte Carlo integration engine",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mci", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a single integration",
		RunE:  runIntegration,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&liveView, "live", false, "show a live terminal progress view while sampling")
	runCmd.Flags().BoolVar(&plotScatter, "plot", false, "render a scatter plot of the walker trace after sampling")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one config field across a range of values",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepField, "field", "target_acceptance_rate", "field to sweep: target_acceptance_rate|init_step_size|nblocks")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "sweep range minimum")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.9, "sweep range maximum")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of sweep points")
	sweepCmd.Flags().BoolVar(&sweepOptimize, "optimize", false, "grid-search the swept field for the value minimizing x2's error bar instead of plotting the acceptance-rate curve")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step-size auto-tuning convergence",
		RunE:  runBench,
	}
	addRunFlags(benchCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [distribution]",
		Short: "list available presets for a distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for distribution: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, benchCmd, scenarioCmd, presetsCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&distribution, "dist", "gaussian", "distribution: gaussian|doublewell|exponential|vonmises")
	cmd.Flags().IntVar(&ndim, "ndim", config.DefaultNDim, "walker dimensionality")
	cmd.Flags().IntVar(&nmc, "nmc", config.DefaultNMC, "number of kept Metropolis steps")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&targetAcceptanceRate, "target-acc", config.DefaultTargetAcceptanceRate, "target acceptance rate")
	cmd.Flags().Float64Var(&initStepSize, "step", config.DefaultInitStepSize, "initial trial move step size")
	cmd.Flags().IntVar(&trialMoveVecLen, "veclen", 1, "trial move block length")
	cmd.Flags().StringVar(&accumulatorKind, "accumulator", "full", "accumulator: simple|block|full")
	cmd.Flags().IntVar(&nblocks, "nblocks", config.DefaultNBlocks, "number of blocks for block accumulation/estimation")
	cmd.Flags().StringVar(&presetName, "preset", "", "use a named preset for --dist")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml), overrides flags")
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Distribution = distribution
	cfg.NDim = ndim
	cfg.NMC = nmc
	cfg.Seed = seed
	cfg.TargetAcceptanceRate = targetAcceptanceRate
	cfg.InitStepSize = initStepSize
	cfg.TrialMoveVecLen = trialMoveVecLen
	cfg.AccumulatorKind = accumulatorKind
	cfg.NBlocks = nblocks

	if presetName != "" {
		preset := config.GetPreset(distribution, presetName)
		if preset == nil {
			return nil, fmt.Errorf("unknown preset %q for distribution %q", presetName, distribution)
		}
		cfg = preset
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return cfg, nil
}

func runIntegration(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	exp := experiment.New(cfg, reg)
	if err := exp.Setup(); err != nil {
		return err
	}

	var trace *traceObserver
	if plotScatter || liveView {
		var feed tui.Feed
		if liveView {
			feed = make(tui.Feed, 64)
		}
		trace = newTraceObserver(cfg.NDim, cfg.NMC, feed)
		exp.Integrator().AddObserver(trace)
	}

	var result *integrator.Result
	var elapsed time.Duration

	if liveView {
		done := make(chan struct{})
		go func() {
			defer close(done)
			result, err = exp.Run(context.Background())
			close(trace.feed)
		}()
		start := time.Now()
		if _, runErr := tui.NewProgram(trace.feed).Run(); runErr != nil {
			return runErr
		}
		<-done
		elapsed = time.Since(start)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("sampling %s (ndim=%d, nmc=%d)...\n", cfg.Distribution, cfg.NDim, cfg.NMC)
		start := time.Now()
		result, err = exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed = time.Since(start)
	}

	runID, err := st.Save(cfg.Distribution, cfg.Seed, cfg.NDim, cfg.NMC, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("acceptance rate: %.4f\n\n", result.AcceptanceRate)
	for i, name := range result.Names {
		fmt.Printf("%s:\n", name)
		for j := range result.Avg[i] {
			fmt.Printf("  [%d] %.6g +/- %.6g\n", j, result.Avg[i][j], result.Err[i][j])
		}
	}

	if plotScatter && trace != nil {
		canvas := viz.ScatterTrace(trace.xs, trace.ys, 60, 20)
		fmt.Println()
		fmt.Print(canvas.String())
		svg := export.WalkerScatterSVG(trace.xs, trace.ys, 60, 20, 6)
		if err := st.SaveScatterSVG(runID, svg); err != nil {
			return err
		}
		fmt.Printf("scatter plot saved alongside run %s\n", runID)
	}

	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var field automation.FieldSetter
	switch sweepField {
	case "target_acceptance_rate":
		field = automation.TargetAcceptanceRateField
	case "init_step_size":
		field = automation.InitStepSizeField
	case "nblocks":
		field = automation.NBlocksField
	default:
		return fmt.Errorf("unknown sweep field: %s", sweepField)
	}

	reg := experiment.NewRegistry()

	if sweepOptimize {
		grid := optim.NewGridSearch([]string{sweepField}, [][]float64{linspace(sweepMin, sweepMax, sweepSteps)})
		build := func(params map[string]float64) (*experiment.Experiment, error) {
			c := *cfg
			field(&c, params[sweepField])
			return experiment.New(&c, reg), nil
		}
		// x2 is the second observable Experiment.Setup registers.
		best, score, err := grid.Search(context.Background(), build, optim.ErrorObjective(1, 0))
		if err != nil {
			return err
		}
		fmt.Printf("best %s = %.6g (x2 error = %.6g)\n", sweepField, best[sweepField], score)
		return nil
	}

	sweep := &automation.Sweep{Base: *cfg, Field: field, Min: sweepMin, Max: sweepMax, NumSteps: sweepSteps}
	results, err := automation.RunSweep(context.Background(), sweep, reg)
	if err != nil {
		return err
	}

	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Result.AcceptanceRate
	}
	fmt.Println(asciigraph.Plot(values, asciigraph.Height(10), asciigraph.Caption("acceptance rate vs "+sweepField)))

	return nil
}

// linspace returns steps evenly spaced values from min to max inclusive.
func linspace(min, max float64, steps int) []float64 {
	if steps < 2 {
		return []float64{min}
	}
	out := make([]float64, steps)
	step := (max - min) / float64(steps-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	exp := experiment.New(cfg, reg)
	if err := exp.Setup(); err != nil {
		return err
	}

	start := time.Now()
	if err := exp.Integrator().FindMRT2Step(); err != nil {
		return err
	}
	fmt.Printf("auto-tuned step size in %v, acceptance rate %.4f\n", time.Since(start), exp.Integrator().GetAcceptanceRate())
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	results, err := automation.RunScenario(context.Background(), scenario, reg)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s: acceptance=%.4f\n", r.Label, r.Result.AcceptanceRate)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  ndim=%d nmc=%d acc=%.3f\n", r.ID, r.Distribution, r.NDim, r.NMC, r.AcceptanceRate)
	}
	return nil
}
