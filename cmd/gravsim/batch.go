package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int

	trials int

	tuneGrid   []string
	tuneMetric string

	chaosDelta float64
)

func batchCommands() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter over a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "g", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1e-4, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "repeat a run over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&trials, "trials", 8, "number of seeds")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search for the parameters minimising a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "energy_drift", "metric to minimise")

	chaosCmd := &cobra.Command{
		Use:   "chaos",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  runChaos,
	}
	addSimFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&chaosDelta, "delta", 1e-9, "initial displacement of body 0")

	return []*cobra.Command{scenarioCmd, sweepCmd, ensembleCmd, tuneCmd, chaosCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	results, err := automation.NewRunner(st, logger).RunScenario(cmd.Context(), scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tINTEG\tSTEPS\tKINETIC\tENERGY_DRIFT\tRUN_ID")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6g\t%.3e\t%s\n",
			r.Name, r.Result.Integrator, r.Result.Steps,
			r.Result.Metrics["kinetic_energy"], r.Result.Metrics["energy_drift"], r.RunID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.NewRunner(nil, logger).RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:   cfg.Experiment(),
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Points: sweepPoints,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tKINETIC\tENERGY_DRIFT\tSTABILITY\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		m := r.Result.Metrics
		fmt.Fprintf(w, "%.4g\t%.6g\t%.3e\t%.3f\n", r.Value, m["kinetic_energy"], m["energy_drift"], m["stability"])
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.NewRunner(nil, logger).RunEnsemble(cmd.Context(), cfg.Experiment(), trials)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tKINETIC\tSTABILITY\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.6g\t%.3f\t%v\n", r.Seed, r.Result.Metrics["kinetic_energy"], r.Result.Metrics["stability"], r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.EnsembleStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}

// parseGrid turns "name=v1,v2" entries into parallel name and value lists.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		k, vs, ok := strings.Cut(e, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad grid entry %q, want name=v1,v2", e)
		}
		var vals []float64
		for _, s := range strings.Split(vs, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", k, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(k))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneGrid)
	if err != nil {
		return err
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	gs.SetLogger(logger)

	best, err := gs.Search(cmd.Context(), experiment.NewRegistry(), cfg.Experiment(), tuneMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", tuneMetric, best.Value)
	for _, k := range names {
		fmt.Printf("  %s = %g\n", k, best.Params[k])
	}
	return nil
}

func runChaos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ecfg := cfg.Experiment()

	reg := experiment.NewRegistry()
	dist, err := reg.GetDistribution(ecfg.Distribution, ecfg.DistParams)
	if err != nil {
		return err
	}
	model, err := reg.GetForce(ecfg.Force, ecfg.ForceParams)
	if err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(ecfg.Integrator)
	if err != nil {
		return err
	}

	ref, pert, err := analysis.PerturbedPair(ecfg.Bodies, dist, sim.Options{
		Seed:       ecfg.Seed,
		StepSize:   ecfg.StepSize,
		Workers:    ecfg.Workers,
		Force:      model,
		Integrator: integ,
		Logger:     logger,
	}, chaosDelta)
	if err != nil {
		return err
	}

	sep, err := analysis.Divergence(cmd.Context(), ref, pert, ecfg.Steps)
	if err != nil {
		return err
	}

	logSep := make([]float64, len(sep))
	for i, s := range sep {
		logSep[i] = math.Log10(max(s, math.SmallestNonzeroFloat64))
	}
	fmt.Println(asciigraph.Plot(logSep,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("log10 separation"),
	))
	fmt.Printf("\nlyapunov exponent: %.4g per unit time\n", analysis.LyapunovExponent(sep, ecfg.StepSize))
	return nil
}
