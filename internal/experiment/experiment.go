// Package experiment turns a named configuration into a running engine.
package experiment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Config struct {
	Bodies   int
	Seed     uint64
	Steps    int
	StepSize float64
	Workers  int

	Distribution string
	DistParams   DistParams
	Force        string
	ForceParams  ForceParams
	Integrator   string
}

type Result struct {
	Integrator string
	Steps      int
	Time       float64
	Elapsed    time.Duration
	Metrics    map[string]float64
	// Kinetic is the total kinetic energy after each step, starting with
	// the initial state.
	Kinetic []float64
}

type Experiment struct {
	cfg     Config
	engine  *sim.Engine
	kinetic *metrics.KineticEnergy
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup resolves every name through reg and builds the engine with the
// default metrics attached.
func (e *Experiment) Setup(reg *Registry, log *slog.Logger) error {
	if e.cfg.Steps < 0 {
		return dynamo.Invalid("steps", "must be non-negative, got %d", e.cfg.Steps)
	}
	dist, err := reg.GetDistribution(e.cfg.Distribution, e.cfg.DistParams)
	if err != nil {
		return err
	}
	force, err := reg.GetForce(e.cfg.Force, e.cfg.ForceParams)
	if err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	engine, err := sim.New(e.cfg.Bodies, dist, sim.Options{
		Seed:       e.cfg.Seed,
		StepSize:   e.cfg.StepSize,
		Workers:    e.cfg.Workers,
		Force:      force,
		Integrator: integ,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	for _, m := range reg.DefaultMetrics(force) {
		if ke, ok := m.(*metrics.KineticEnergy); ok {
			e.kinetic = ke
		}
		engine.AddMetric(m)
	}
	e.engine = engine
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.engine == nil {
		return nil, ErrNotSetup
	}

	kinetic := make([]float64, 0, e.cfg.Steps+1)
	if e.kinetic != nil {
		kinetic = append(kinetic, e.kinetic.Last())
	}

	start := time.Now()
	err := e.engine.Run(ctx, e.cfg.Steps, func(*sim.Engine) bool {
		if e.kinetic != nil {
			kinetic = append(kinetic, e.kinetic.Last())
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Integrator: e.engine.Integrator().Name(),
		Steps:      e.engine.Steps(),
		Time:       e.engine.Time(),
		Elapsed:    time.Since(start),
		Metrics:    e.engine.Metrics(),
		Kinetic:    kinetic,
	}, nil
}

// Engine returns the underlying engine, nil before Setup.
func (e *Experiment) Engine() *sim.Engine {
	return e.engine
}
