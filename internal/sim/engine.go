// Package sim runs the double-buffered N-body engine.
//
// Every Step evaluates all bodies independently against the read
// generation, writes the results into the write generation, waits for all
// of them, swaps, and advances time by the fixed step size. Steps are
// strictly sequential; parallelism exists only within a step.
package sim

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/doublebuf"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

type Engine struct {
	// mu serialises Step against readers; only Step flips the buffer role.
	mu sync.RWMutex

	bufs     *doublebuf.Buffer[dynamo.BodySet]
	n        int
	time     float64
	steps    int
	stepSize float64
	workers  int

	force physics.Model
	integ integrators.Integrator

	metrics []Metric
	log     *slog.Logger
}

// New samples n bodies from dist into the write generation and promotes it
// to read. Configuration problems are reported as *dynamo.ConfigError.
func New(n int, dist distrib.Distribution, opts Options) (*Engine, error) {
	if n <= 0 {
		return nil, dynamo.Invalid("n_bodies", "must be positive, got %d", n)
	}
	if dist == nil {
		return nil, dynamo.Invalid("distribution", "required")
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	if opts.StepSize < 0 || math.IsNaN(opts.StepSize) || math.IsInf(opts.StepSize, 0) {
		return nil, dynamo.Invalid("step_size", "must be positive and finite, got %g", opts.StepSize)
	}
	if opts.Workers < 0 {
		return nil, dynamo.Invalid("workers", "must be non-negative, got %d", opts.Workers)
	}
	if err := opts.Force.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		bufs: doublebuf.New(func() dynamo.BodySet {
			return dynamo.NewBodySet(n)
		}),
		n:        n,
		stepSize: opts.StepSize,
		workers:  opts.Workers,
		force:    opts.Force,
		integ:    opts.Integrator,
		log:      opts.Logger,
	}

	w := e.bufs.Write()
	dist.Fill(opts.Source, w.Velocities, w.Positions)
	e.bufs.Swap()
	e.time = 0

	e.log.Debug("engine initialised",
		"bodies", n,
		"distribution", dist.Name(),
		"force", e.force.Name(),
		"integrator", e.integ.Name(),
		"step_size", e.stepSize,
	)
	return e, nil
}

// SetForceModel validates m and makes it the model used by subsequent
// steps. An invalid model is rejected and the current one kept.
func (e *Engine) SetForceModel(m physics.Model) error {
	if m == nil {
		return dynamo.Invalid("force", "required")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.force = m
	e.mu.Unlock()
	e.log.Debug("force model set", "force", m.Name())
	return nil
}

func (e *Engine) SetIntegrator(integ integrators.Integrator) error {
	if integ == nil {
		return dynamo.Invalid("integrator", "required")
	}
	e.mu.Lock()
	e.integ = integ
	e.mu.Unlock()
	e.log.Debug("integrator set", "integrator", integ.Name())
	return nil
}

// AddMetric resets m, shows it the current state, and registers it to
// observe the read generation after every step.
func (e *Engine) AddMetric(m Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m.Reset()
	cur := e.bufs.Read()
	m.Observe(dynamo.NewView(cur.Positions), dynamo.NewView(cur.Velocities), e.time)
	e.metrics = append(e.metrics, m)
}

// Step advances every body by one step and then swaps generations.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	read, write := e.bufs.Read(), e.bufs.Write()
	force, integ := e.force, e.integ
	dt, t := e.stepSize, e.time

	if p, ok := force.(physics.Preparer); ok {
		if err := p.Prepare(read.Positions); err != nil {
			e.log.Warn("force model preparation failed", "force", force.Name(), "step", e.steps, "err", err)
		}
	}

	dynamo.ParallelFor(e.n, e.workers, func(start, end int) {
		for i := start; i < end; i++ {
			write.Velocities[i], write.Positions[i] = advanceBody(i, read, force, integ, dt, t)
		}
	})

	e.bufs.Swap()
	e.time += dt
	e.steps++

	if len(e.metrics) > 0 {
		cur := e.bufs.Read()
		pos, vel := dynamo.NewView(cur.Positions), dynamo.NewView(cur.Velocities)
		for _, m := range e.metrics {
			m.Observe(pos, vel, e.time)
		}
	}
}

// advanceBody is the per-body unit of work: it reads only from the read
// generation and returns the new velocity and position of body i.
func advanceBody(i int, read *dynamo.BodySet, force physics.Model, integ integrators.Integrator, dt, t float64) (r3.Vec, r3.Vec) {
	positions := read.Positions
	f := func(_, x r3.Vec, _ float64) r3.Vec {
		return force.Acceleration(i, x, positions)
	}
	v, p, _ := integ.Advance(f, dt, read.Velocities[i], positions[i], t)
	return v, p
}

// Run calls Step up to steps times. ctx is checked between steps and
// onStep, when non-nil, may stop the run early by returning false.
func (e *Engine) Run(ctx context.Context, steps int, onStep func(*Engine) bool) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Step()
		if onStep != nil && !onStep(e) {
			return nil
		}
	}
	return nil
}

// Positions returns a read-only snapshot of the authoritative positions,
// taken under the engine lock. Later steps never change it. WithPositions
// reads the generation in place without copying.
func (e *Engine) Positions() dynamo.View {
	return dynamo.NewView(e.CopyPositions(nil))
}

// Velocities returns a read-only snapshot of the authoritative velocities.
func (e *Engine) Velocities() dynamo.View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return dynamo.NewView(dynamo.NewView(e.bufs.Read().Velocities).CopyTo(nil))
}

// WithPositions calls fn with the authoritative positions while holding off
// any concurrent Step, so fn never observes a generation mid-update.
func (e *Engine) WithPositions(fn func(dynamo.View)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(dynamo.NewView(e.bufs.Read().Positions))
}

// CopyPositions copies the authoritative positions into dst.
func (e *Engine) CopyPositions(dst []r3.Vec) []r3.Vec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return dynamo.NewView(e.bufs.Read().Positions).CopyTo(dst)
}

func (e *Engine) N() int { return e.n }

func (e *Engine) StepSize() float64 { return e.stepSize }

func (e *Engine) Time() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.time
}

func (e *Engine) Steps() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.steps
}

func (e *Engine) Force() physics.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.force
}

func (e *Engine) Integrator() integrators.Integrator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.integ
}

// Metrics returns the current value of every registered metric.
func (e *Engine) Metrics() map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
