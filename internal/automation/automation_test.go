package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/storage"
)

const scenarioYAML = `
name: smoke
description: two short runs
steps:
  - name: disc
    seed: 4
    steps: 3
    params:
      bodies: 24
  - preset: binary
    steps: 2
    integrator: euler
    params:
      step_size: 0.01
    save: true
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func smallConfig() experiment.Config {
	return experiment.Config{
		Bodies:       12,
		Seed:         1,
		Steps:        3,
		StepSize:     0.1,
		Distribution: "sphere",
		DistParams:   experiment.DefaultDistParams(),
		Force:        "gravity",
		ForceParams:  experiment.DefaultForceParams(),
		Integrator:   "euler",
	}
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "smoke" || len(s.Steps) != 2 {
		t.Fatalf("expected scenario smoke with 2 steps, got %q with %d", s.Name, len(s.Steps))
	}

	cfg, err := s.Steps[1].Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Force != "gravity" || cfg.Integrator != "euler" || cfg.Bodies != 2 || cfg.StepSize != 0.01 {
		t.Errorf("expected binary preset with overrides, got %+v", cfg)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty scenario, got %v", err)
	}
}

func TestStepConfigErrors(t *testing.T) {
	tests := []ScenarioStep{
		{Preset: "nope"},
		{Params: map[string]float64{"mass": 1}},
	}
	for _, step := range tests {
		if _, err := step.Config(); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for %+v, got %v", step, err)
		}
	}
}

func TestRunScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(store, nil)

	results, err := r.RunScenario(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "disc" || results[0].Result.Steps != 3 {
		t.Errorf("expected disc with 3 steps, got %s with %d", results[0].Name, results[0].Result.Steps)
	}
	if results[0].RunID != "" {
		t.Errorf("expected unsaved first step, got %s", results[0].RunID)
	}
	if results[1].Name != "smoke-2" || results[1].RunID == "" {
		t.Errorf("expected saved smoke-2, got %+v", results[1])
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Bodies != 2 {
		t.Errorf("expected one stored run of 2 bodies, got %+v", runs)
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	s := &Scenario{Name: "bad", Steps: []ScenarioStep{
		{Steps: 1, Params: map[string]float64{"bodies": 4}},
		{Integrator: "leapfrog"},
	}}
	results, err := NewRunner(nil, nil).RunScenario(context.Background(), s)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result before the failure, got %d", len(results))
	}
}

func TestSweepValues(t *testing.T) {
	tests := []struct {
		min, max float64
		points   int
		want     []float64
	}{
		{0, 1, 3, []float64{0, 0.5, 1}},
		{2, 5, 1, []float64{2}},
		{1, 0, 2, []float64{1, 0}},
	}
	for _, tt := range tests {
		s := &ParameterSweep{Min: tt.min, Max: tt.max, Points: tt.points}
		got, err := s.Values()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("expected %v, got %v", tt.want, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		}
	}

	if _, err := (&ParameterSweep{}).Values(); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero points, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	r := NewRunner(nil, nil)
	results, err := r.RunSweep(context.Background(), &ParameterSweep{
		Base: smallConfig(), Param: "bodies", Min: 4, Max: 12, Points: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []float64{4, 8, 12} {
		if results[i].Value != want {
			t.Errorf("expected value %g, got %g", want, results[i].Value)
		}
		if results[i].Result.Steps != 3 {
			t.Errorf("expected 3 steps, got %d", results[i].Result.Steps)
		}
	}

	_, err = r.RunSweep(context.Background(), &ParameterSweep{Base: smallConfig(), Param: "mass", Points: 2})
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown param, got %v", err)
	}
}

func TestRunEnsemble(t *testing.T) {
	r := NewRunner(nil, nil)
	results, err := r.RunEnsemble(context.Background(), smallConfig(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(results))
	}
	for i, res := range results {
		if res.Seed != uint64(1+i) {
			t.Errorf("expected seed %d, got %d", 1+i, res.Seed)
		}
	}

	stable, unstable := EnsembleStats(results)
	if stable+unstable != 4 {
		t.Errorf("expected 4 counted trials, got %d", stable+unstable)
	}
	// A unit sphere stays well inside the stability radius for three steps.
	if stable != 4 {
		t.Errorf("expected every trial stable, got %d", stable)
	}

	if _, err := r.RunEnsemble(context.Background(), smallConfig(), 0); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero trials, got %v", err)
	}
}

func TestRunScenarioRejectsNegativeSteps(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, `
name: backwards
steps:
  - steps: -5
    params:
      bodies: 4
`))
	if err != nil {
		t.Fatal(err)
	}

	results, err := NewRunner(nil, nil).RunScenario(context.Background(), s)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRunSweepRejectsNegativeSteps(t *testing.T) {
	base := smallConfig()
	base.Steps = -1
	_, err := NewRunner(nil, nil).RunSweep(context.Background(), &ParameterSweep{
		Base: base, Param: "g", Min: 0, Max: 1e-5, Points: 2,
	})
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
