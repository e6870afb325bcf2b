package experiment

import (
	"slices"

	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// ForceParams carries the parameters of every force model; each model reads
// the fields it needs.
type ForceParams struct {
	G       float64 `yaml:"g"`
	Damping float64 `yaml:"damping"`
	Eps     float64 `yaml:"eps"`
	Sigma   float64 `yaml:"sigma"`
	Theta   float64 `yaml:"theta"`
}

func DefaultForceParams() ForceParams {
	return ForceParams{
		G:       physics.DefaultG,
		Damping: physics.DefaultDamping,
		Eps:     physics.DefaultEps,
		Sigma:   physics.DefaultSigma,
		Theta:   physics.DefaultTheta,
	}
}

// DistParams carries the sampler ranges. The sphere only reads Radius.
type DistParams struct {
	Radius distrib.Range `yaml:"radius"`
	Angle  distrib.Range `yaml:"angle"`
	Height distrib.Range `yaml:"height"`
	Speed  float64       `yaml:"speed"`
}

func DefaultDistParams() DistParams {
	c := distrib.DefaultCylinder()
	return DistParams{Radius: c.Radius, Angle: c.Angle, Height: c.Height, Speed: c.Speed}
}

type Registry struct {
	integrators   map[string]func() integrators.Integrator
	forces        map[string]func(ForceParams) physics.Model
	distributions map[string]func(DistParams) distrib.Distribution
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators:   make(map[string]func() integrators.Integrator),
		forces:        make(map[string]func(ForceParams) physics.Model),
		distributions: make(map[string]func(DistParams) distrib.Distribution),
	}

	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() integrators.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() integrators.Integrator { return integrators.NewVerlet() }

	r.forces["gravity"] = func(p ForceParams) physics.Model {
		return physics.Gravity{G: p.G, Damping: p.Damping}
	}
	r.forces["lj"] = func(p ForceParams) physics.Model {
		return physics.LennardJones{Eps: p.Eps, Sigma: p.Sigma}
	}
	r.forces["barneshut"] = func(p ForceParams) physics.Model {
		return &physics.BarnesHut{G: p.G, Damping: p.Damping, Theta: p.Theta}
	}

	r.distributions["cylinder"] = func(p DistParams) distrib.Distribution {
		return distrib.Cylinder{Radius: p.Radius, Angle: p.Angle, Height: p.Height, Speed: p.Speed}
	}
	r.distributions["sphere"] = func(p DistParams) distrib.Distribution {
		return distrib.Sphere{Radius: p.Radius}
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, dynamo.Invalid("integrator", "unknown integrator %q", name)
	}
	return fn(), nil
}

// GetForce builds a fresh, validated force model. Models that keep
// per-step state must not be shared between engines, so every call
// returns a new instance.
func (r *Registry) GetForce(name string, p ForceParams) (physics.Model, error) {
	fn, ok := r.forces[name]
	if !ok {
		return nil, dynamo.Invalid("force", "unknown force model %q", name)
	}
	m := fn(p)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Registry) GetDistribution(name string, p DistParams) (distrib.Distribution, error) {
	fn, ok := r.distributions[name]
	if !ok {
		return nil, dynamo.Invalid("distribution", "unknown distribution %q", name)
	}
	d := fn(p)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Registry) ListIntegrators() []string   { return sortedKeys(r.integrators) }
func (r *Registry) ListForces() []string        { return sortedKeys(r.forces) }
func (r *Registry) ListDistributions() []string { return sortedKeys(r.distributions) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultMetrics is the metric set attached to every experiment.
func (r *Registry) DefaultMetrics(model physics.Model) []sim.Metric {
	return []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewEnergyDrift(model),
		metrics.NewMomentumDrift(),
		metrics.NewStability(10.0),
	}
}
