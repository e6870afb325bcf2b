package physics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"
)

const DefaultTheta = 0.5

// BarnesHut approximates Gravity with an octree over the read generation.
// Prepare must be called with the positions before Acceleration; when the
// tree is missing or was built from a different array the exact all-pairs
// sum is used instead.
type BarnesHut struct {
	G       float64 `yaml:"g"`
	Damping float64 `yaml:"damping"`
	Theta   float64 `yaml:"theta"`

	vol       *barneshut.Volume
	prepared  []r3.Vec
	particles []barneshut.Particle3
	bodies    []body
}

type body struct{ p r3.Vec }

func (b *body) Coord3() r3.Vec { return b.p }
func (b *body) Mass() float64  { return 1 }

func NewBarnesHut() *BarnesHut {
	return &BarnesHut{G: DefaultG, Damping: DefaultDamping, Theta: DefaultTheta}
}

func (b *BarnesHut) Name() string { return "barneshut" }

func (b *BarnesHut) Validate() error {
	if err := b.exact().Validate(); err != nil {
		return err
	}
	if err := finite("theta", b.Theta); err != nil {
		return err
	}
	if b.Theta < 0 {
		return dynamo.Invalid("theta", "must be non-negative, got %g", b.Theta)
	}
	return nil
}

func (b *BarnesHut) exact() Gravity {
	return Gravity{G: b.G, Damping: b.Damping}
}

// Prepare rebuilds the octree. It is not safe to call concurrently with
// Acceleration.
func (b *BarnesHut) Prepare(positions []r3.Vec) error {
	if len(b.bodies) != len(positions) {
		b.bodies = make([]body, len(positions))
		b.particles = make([]barneshut.Particle3, len(positions))
		for i := range b.bodies {
			b.particles[i] = &b.bodies[i]
		}
	}
	for i, p := range positions {
		b.bodies[i].p = p
	}

	vol, err := barneshut.NewVolume(b.particles)
	if err != nil {
		b.vol, b.prepared = nil, nil
		return err
	}
	b.vol, b.prepared = vol, positions
	return nil
}

func (b *BarnesHut) Acceleration(i int, x r3.Vec, positions []r3.Vec) r3.Vec {
	if !b.preparedFor(positions) {
		return b.exact().Acceleration(i, x, positions)
	}

	acc := b.vol.ForceOn(&body{p: x}, b.Theta, b.kernel)
	// The query particle is not the tree's own particle, so remove the self term.
	// It is zero whenever x is the body's read position.
	acc = r3.Sub(acc, b.kernel(nil, nil, 1, 1, r3.Sub(positions[i], x)))
	return r3.Scale(b.G, acc)
}

func (b *BarnesHut) preparedFor(positions []r3.Vec) bool {
	return b.vol != nil && len(positions) > 0 &&
		len(b.prepared) == len(positions) && &b.prepared[0] == &positions[0]
}

// kernel is the damped unit-G pair term; m2 is the aggregate node mass.
func (b *BarnesHut) kernel(_, _ barneshut.Particle3, _, m2 float64, v r3.Vec) r3.Vec {
	r := r3.Norm(v)
	if r == 0 {
		return r3.Vec{}
	}
	return r3.Scale(m2/(r*r*r+b.Damping), v)
}

func (b *BarnesHut) PotentialEnergy(positions []r3.Vec) float64 {
	return b.exact().PotentialEnergy(positions)
}
