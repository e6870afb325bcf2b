package config

import (
	"fmt"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBodies       = 1000
	DefaultSteps        = 200
	DefaultDistribution = "cylinder"
	DefaultForce        = "gravity"
	DefaultIntegrator   = "euler"
)

type Config struct {
	Bodies     int     `yaml:"bodies"`
	Seed       uint64  `yaml:"seed"`
	Steps      int     `yaml:"steps"`
	StepSize   float64 `yaml:"step_size"`
	Workers    int     `yaml:"workers"`
	Integrator string  `yaml:"integrator"`

	Distribution DistributionConfig `yaml:"distribution"`
	Force        ForceConfig        `yaml:"force"`
}

type DistributionConfig struct {
	Kind                  string `yaml:"kind"`
	experiment.DistParams `yaml:",inline"`
}

type ForceConfig struct {
	Kind                   string `yaml:"kind"`
	experiment.ForceParams `yaml:",inline"`
}

func DefaultConfig() *Config {
	return &Config{
		Bodies:     DefaultBodies,
		Steps:      DefaultSteps,
		StepSize:   sim.DefaultStepSize,
		Integrator: DefaultIntegrator,
		Distribution: DistributionConfig{
			Kind:       DefaultDistribution,
			DistParams: experiment.DefaultDistParams(),
		},
		Force: ForceConfig{
			Kind:        DefaultForce,
			ForceParams: experiment.DefaultForceParams(),
		},
	}
}

// Load decodes the file at path over DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the scalar settings. Names and model parameters are
// checked when the registry resolves them.
func (c *Config) Validate() error {
	if c.Bodies <= 0 {
		return dynamo.Invalid("bodies", "must be positive, got %d", c.Bodies)
	}
	if c.Steps < 0 {
		return dynamo.Invalid("steps", "must be non-negative, got %d", c.Steps)
	}
	if c.StepSize <= 0 {
		return dynamo.Invalid("step_size", "must be positive, got %g", c.StepSize)
	}
	if c.Workers < 0 {
		return dynamo.Invalid("workers", "must be non-negative, got %d", c.Workers)
	}
	return nil
}

func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Bodies:       c.Bodies,
		Seed:         c.Seed,
		Steps:        c.Steps,
		StepSize:     c.StepSize,
		Workers:      c.Workers,
		Distribution: c.Distribution.Kind,
		DistParams:   c.Distribution.DistParams,
		Force:        c.Force.Kind,
		ForceParams:  c.Force.ForceParams,
		Integrator:   c.Integrator,
	}
}

// Clone returns a deep copy; presets hand out clones so callers may edit.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
