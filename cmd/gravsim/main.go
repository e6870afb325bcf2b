package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/life"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	configFile   string
	preset       string
	bodies       int
	steps        int
	stepSize     float64
	seed         uint64
	workers      int
	integrator   string
	force        string
	distribution string
	gravity      float64
	damping      float64
	theta        float64
	speed        float64

	noSave bool
	name   string

	lifeWidth   int
	lifeHeight  int
	lifeDensity float64

	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "double-buffered n-body simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&name, "name", "run", "run name")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [integrator]...",
		Short: "compare integrators on the same initial state",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure steps per second across body and worker counts",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	addSimFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	lifeCmd := &cobra.Command{
		Use:   "life",
		Short: "interactive game of life on the same double buffer",
		Args:  cobra.NoArgs,
		RunE:  runLife,
	}
	lifeCmd.Flags().IntVar(&lifeWidth, "width", 80, "grid width")
	lifeCmd.Flags().IntVar(&lifeHeight, "height", 40, "grid height")
	lifeCmd.Flags().Float64Var(&lifeDensity, "density", 0.25, "initial live fraction")
	lifeCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for time)")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, benchCmd, presetsCmd, lifeCmd)
	rootCmd.AddCommand(runCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.IntVar(&bodies, "bodies", config.DefaultBodies, "number of bodies")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.Float64Var(&stepSize, "dt", sim.DefaultStepSize, "step size")
	f.Uint64Var(&seed, "seed", 0, "random seed (0 for time)")
	f.IntVar(&workers, "workers", 0, "goroutines per step (0 for GOMAXPROCS)")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.StringVar(&force, "force", config.DefaultForce, "force model")
	f.StringVar(&distribution, "dist", config.DefaultDistribution, "initial distribution")
	f.Float64Var(&gravity, "g", 0, "gravitational constant")
	f.Float64Var(&damping, "damping", 0, "softening length")
	f.Float64Var(&theta, "theta", 0, "barnes-hut opening angle")
	f.Float64Var(&speed, "speed", 0, "initial rim speed")
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("bodies") {
		cfg.Bodies = bodies
	}
	if changed("steps") {
		cfg.Steps = steps
	}
	if changed("dt") {
		cfg.StepSize = stepSize
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("force") {
		cfg.Force.Kind = force
	}
	if changed("dist") {
		cfg.Distribution.Kind = distribution
	}
	if changed("g") {
		cfg.Force.G = gravity
	}
	if changed("damping") {
		cfg.Force.Damping = damping
	}
	if changed("theta") {
		cfg.Force.Theta = theta
	}
	if changed("speed") {
		cfg.Distribution.Speed = speed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupExperiment(cfg experiment.Config) (*experiment.Experiment, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), logger); err != nil {
		return nil, err
	}
	return exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ecfg := cfg.Experiment()
	exp, err := setupExperiment(ecfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %d bodies, %s/%s, %d steps...\n", ecfg.Bodies, ecfg.Force, ecfg.Integrator, ecfg.Steps)
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f steps/sec)\n", result.Elapsed, float64(result.Steps)/result.Elapsed.Seconds())
	fmt.Println(viz.MetricsPanel("metrics", result.Metrics))
	if len(result.Kinetic) > 1 {
		fmt.Println(asciigraph.Plot(result.Kinetic,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy"),
		))
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, ecfg, result, exp.Engine().CopyPositions(nil))
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := setupExperiment(cfg.Experiment())
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s · %s", cfg.Force.Kind, cfg.Integrator)
	return viz.RunLive(viz.NewModel(exp.Engine(), title, max(cfg.Distribution.Radius.Max, 1)))
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engines := make([]*sim.Engine, 0, len(args))
	for _, integ := range args {
		ecfg := cfg.Experiment()
		ecfg.Integrator = integ
		exp, err := setupExperiment(ecfg)
		if err != nil {
			return fmt.Errorf("%s: %w", integ, err)
		}
		engines = append(engines, exp.Engine())
	}

	fmt.Printf("comparing integrators (%d bodies, dt=%.4f, %d steps)\n\n", cfg.Bodies, cfg.StepSize, cfg.Steps)
	start := time.Now()
	if err := sim.RunAll(cmd.Context(), engines, cfg.Steps); err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tKINETIC\tENERGY_DRIFT\tMOMENTUM_DRIFT\tSTABILITY")
	for _, e := range engines {
		m := e.Metrics()
		fmt.Fprintf(w, "%s\t%.6g\t%.3e\t%.3e\t%.3f\n",
			e.Integrator().Name(), m["kinetic_energy"], m["energy_drift"], m["momentum_drift"], m["stability"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nall runs finished in %v\n", elapsed)
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("steps") {
		cfg.Steps = 10
	}

	counts := []int{100, 500, 1000, 2000}
	pools := []int{1, runtime.GOMAXPROCS(0)}

	fmt.Printf("benchmarking %s/%s\n\n", cfg.Force.Kind, cfg.Integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		for _, p := range pools {
			ecfg := cfg.Experiment()
			ecfg.Bodies, ecfg.Workers = n, p
			exp, err := setupExperiment(ecfg)
			if err != nil {
				return err
			}
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.1f\n",
				n, p, result.Steps, result.Elapsed, float64(result.Steps)/result.Elapsed.Seconds())
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tDIST\tFORCE\tINTEG\tSTEPS")
	for _, p := range config.ListPresets() {
		c := config.GetPreset(p)
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\n",
			p, c.Bodies, c.Distribution.Kind, c.Force.Kind, c.Integrator, c.Steps)
	}
	return w.Flush()
}

func runLife(cmd *cobra.Command, args []string) error {
	s, err := life.New(lifeWidth, lifeHeight)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s.Randomize(distrib.NewSource(seed), lifeDensity)
	return viz.RunLife(viz.NewLifeModel(s))
}

func hr(n int) string {
	return strings.Repeat("-", n)
}
