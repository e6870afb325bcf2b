package sim

import (
	"log/slog"
	"time"

	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
)

// DefaultStepSize is the simulated time advanced by every Step.
const DefaultStepSize = 0.5

// Options tunes an Engine. Zero fields take the defaults below.
type Options struct {
	// Seed feeds the sampler when Source is nil.
	Seed   uint64
	Source distrib.Source

	StepSize float64
	// Workers caps the goroutines of a step; 0 means GOMAXPROCS.
	Workers int

	Force      physics.Model
	Integrator integrators.Integrator

	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Seed:       uint64(time.Now().UnixNano()),
		StepSize:   DefaultStepSize,
		Force:      physics.NewGravity(),
		Integrator: integrators.NewEuler(),
	}
}

func (o Options) withDefaults() Options {
	if o.StepSize == 0 {
		o.StepSize = DefaultStepSize
	}
	if o.Force == nil {
		o.Force = physics.NewGravity()
	}
	if o.Integrator == nil {
		o.Integrator = integrators.NewEuler()
	}
	if o.Source == nil {
		o.Source = distrib.NewSource(o.Seed)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Metric observes the read generation after every step.
type Metric interface {
	Name() string
	Observe(pos, vel dynamo.View, t float64)
	Value() float64
	Reset()
}
