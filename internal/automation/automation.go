// Package automation runs batches of experiments: YAML scenarios, one
// parameter sweeps and seed ensembles.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/storage"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides what
// it names. Params takes the names understood by experiment.SetParam.
type ScenarioStep struct {
	Name         string             `yaml:"name"`
	Preset       string             `yaml:"preset"`
	Seed         uint64             `yaml:"seed"`
	Steps        int                `yaml:"steps"`
	Integrator   string             `yaml:"integrator"`
	Force        string             `yaml:"force"`
	Distribution string             `yaml:"distribution"`
	Params       map[string]float64 `yaml:"params"`
	Save         bool               `yaml:"save"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.Invalid("steps", "scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into an experiment configuration.
func (s ScenarioStep) Config() (experiment.Config, error) {
	base := config.DefaultConfig()
	if s.Preset != "" {
		base = config.GetPreset(s.Preset)
		if base == nil {
			return experiment.Config{}, dynamo.Invalid("preset", "unknown preset %q", s.Preset)
		}
	}

	cfg := base.Experiment()
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Steps != 0 {
		cfg.Steps = s.Steps
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Force != "" {
		cfg.Force = s.Force
	}
	if s.Distribution != "" {
		cfg.Distribution = s.Distribution
	}
	for k, v := range s.Params {
		if err := experiment.SetParam(&cfg, k, v); err != nil {
			return experiment.Config{}, err
		}
	}
	return cfg, nil
}

// StepResult pairs a finished step with its run id when it was saved.
type StepResult struct {
	Name   string
	RunID  string
	Result *experiment.Result
}

type Runner struct {
	Registry *experiment.Registry
	// Store, when set, receives the steps marked save.
	Store  *storage.Store
	Logger *slog.Logger
}

func NewRunner(store *storage.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{Registry: experiment.NewRegistry(), Store: store, Logger: log}
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", scenario.Name, i+1)
		}
		r.Logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(r.Registry, r.Logger); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: result}
		if step.Save && r.Store != nil {
			sr.RunID, err = r.Store.Save(name, cfg, result, exp.Engine().CopyPositions(nil))
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep varies one parameter linearly over Points values.
type ParameterSweep struct {
	Base   experiment.Config
	Param  string
	Min    float64
	Max    float64
	Points int
}

type SweepResult struct {
	Value  float64
	Result *experiment.Result
}

// Values returns the parameter values the sweep visits.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.Points < 1 {
		return nil, dynamo.Invalid("points", "must be positive, got %d", s.Points)
	}
	if s.Points == 1 {
		return []float64{s.Min}, nil
	}
	step := (s.Max - s.Min) / float64(s.Points-1)
	vals := make([]float64, s.Points)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals, nil
}

// RunSweep runs every point of the sweep concurrently; results are in
// sweep order.
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	vals, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	cfgs := make([]experiment.Config, len(vals))
	for i, v := range vals {
		cfgs[i] = sweep.Base
		if err := experiment.SetParam(&cfgs[i], sweep.Param, v); err != nil {
			return nil, err
		}
	}

	runs, err := r.runAll(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(vals))
	for i, v := range vals {
		results[i] = SweepResult{Value: v, Result: runs[i]}
		r.Logger.Debug("sweep point", "param", sweep.Param, "value", v, "metrics", runs[i].Metrics)
	}
	return results, nil
}

// EnsembleResult is one trial of a seed ensemble.
type EnsembleResult struct {
	Seed   uint64
	Result *experiment.Result
	// Stable is set when no body ever left the stability radius.
	Stable bool
}

// RunEnsemble repeats base with trials consecutive seeds starting at
// base.Seed.
func (r *Runner) RunEnsemble(ctx context.Context, base experiment.Config, trials int) ([]EnsembleResult, error) {
	if trials < 1 {
		return nil, dynamo.Invalid("trials", "must be positive, got %d", trials)
	}

	cfgs := make([]experiment.Config, trials)
	for i := range cfgs {
		cfgs[i] = base
		cfgs[i].Seed = base.Seed + uint64(i)
	}

	runs, err := r.runAll(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]EnsembleResult, trials)
	for i, res := range runs {
		results[i] = EnsembleResult{
			Seed:   cfgs[i].Seed,
			Result: res,
			Stable: res.Metrics["stability"] >= 1,
		}
	}
	return results, nil
}

// EnsembleStats counts stable and unstable trials.
func EnsembleStats(results []EnsembleResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}

func (r *Runner) runAll(ctx context.Context, cfgs []experiment.Config) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, cfg := range cfgs {
		g.Go(func() error {
			exp := experiment.New(cfg)
			if err := exp.Setup(r.Registry, r.Logger); err != nil {
				return err
			}
			res, err := exp.Run(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
