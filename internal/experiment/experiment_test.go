package experiment

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func testConfig() Config {
	return Config{
		Bodies:       32,
		Seed:         7,
		Steps:        4,
		StepSize:     0.5,
		Distribution: "cylinder",
		DistParams:   DefaultDistParams(),
		Force:        "gravity",
		ForceParams:  DefaultForceParams(),
		Integrator:   "euler",
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	for _, name := range reg.ListIntegrators() {
		integ, err := reg.GetIntegrator(name)
		if err != nil {
			t.Fatalf("integrator %s: %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("expected integrator %s, got %s", name, integ.Name())
		}
	}

	for _, name := range reg.ListForces() {
		m, err := reg.GetForce(name, DefaultForceParams())
		if err != nil {
			t.Fatalf("force %s: %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("expected force %s, got %s", name, m.Name())
		}
	}

	for _, name := range reg.ListDistributions() {
		d, err := reg.GetDistribution(name, DefaultDistParams())
		if err != nil {
			t.Fatalf("distribution %s: %v", name, err)
		}
		if d.Name() != name {
			t.Errorf("expected distribution %s, got %s", name, d.Name())
		}
	}

	if !slices.Equal(reg.ListForces(), []string{"barneshut", "gravity", "lj"}) {
		t.Errorf("unexpected force list %v", reg.ListForces())
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		err  error
	}{
		{"integrator", func() error { _, err := reg.GetIntegrator("leapfrog"); return err }()},
		{"force", func() error { _, err := reg.GetForce("coulomb", DefaultForceParams()); return err }()},
		{"distribution", func() error { _, err := reg.GetDistribution("disk", DefaultDistParams()); return err }()},
		{"bad sigma", func() error {
			p := DefaultForceParams()
			p.Sigma = -1
			_, err := reg.GetForce("lj", p)
			return err
		}()},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, dynamo.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, tt.err)
		}
	}
}

func TestForcesAreFresh(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.GetForce("barneshut", DefaultForceParams())
	b, _ := reg.GetForce("barneshut", DefaultForceParams())
	if a == b {
		t.Error("expected distinct barneshut instances")
	}
}

func TestExperimentRun(t *testing.T) {
	exp := New(testConfig())

	if _, err := exp.Run(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup, got %v", err)
	}

	if err := exp.Setup(NewRegistry(), nil); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Steps != 4 {
		t.Errorf("expected 4 steps, got %d", res.Steps)
	}
	if res.Time != 2.0 {
		t.Errorf("expected time 2.0, got %f", res.Time)
	}
	if len(res.Kinetic) != 5 {
		t.Errorf("expected 5 kinetic samples, got %d", len(res.Kinetic))
	}
	for _, name := range []string{"kinetic_energy", "energy_drift", "momentum_drift", "stability"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("expected metric %s", name)
		}
	}
	if res.Integrator != "euler" {
		t.Errorf("expected integrator euler, got %s", res.Integrator)
	}
}

func TestExperimentSetupRejectsUnknown(t *testing.T) {
	cfg := testConfig()
	cfg.Integrator = "midpoint"
	if err := New(cfg).Setup(NewRegistry(), nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetParam(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name string
		v    float64
	}{
		{"bodies", 64},
		{"step_size", 0.25},
		{"g", 2e-4},
		{"damping", 0.05},
		{"eps", 0.5},
		{"sigma", 3},
		{"theta", 0.7},
		{"speed", 1.5},
	}
	for _, tt := range tests {
		if err := SetParam(&cfg, tt.name, tt.v); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		got, err := GetParam(&cfg, tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.v {
			t.Errorf("%s: expected %g, got %g", tt.name, tt.v, got)
		}
	}

	if len(ListParams()) != len(tests) {
		t.Errorf("expected %d params, got %d", len(tests), len(ListParams()))
	}
	if err := SetParam(&cfg, "mass", 1); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown param, got %v", err)
	}
	if err := SetParam(&cfg, "g", math.Inf(1)); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for infinite value, got %v", err)
	}
}

func TestSetupRejectsNegativeSteps(t *testing.T) {
	cfg := testConfig()
	cfg.Steps = -5

	exp := New(cfg)
	err := exp.Setup(NewRegistry(), nil)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var ce *dynamo.ConfigError
	if !errors.As(err, &ce) || ce.Field != "steps" {
		t.Errorf("expected a steps ConfigError, got %v", err)
	}
	if _, err := exp.Run(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup after rejected setup, got %v", err)
	}
}
