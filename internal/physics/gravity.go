package physics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultG       = 1e-5
	DefaultDamping = 1e-5
)

// Gravity is unit-mass all-pairs gravitation. Damping is added to the cubed
// distance in every denominator and keeps close encounters finite.
type Gravity struct {
	G       float64 `yaml:"g"`
	Damping float64 `yaml:"damping"`
}

func NewGravity() Gravity {
	return Gravity{G: DefaultG, Damping: DefaultDamping}
}

func (g Gravity) Name() string { return "gravity" }

func (g Gravity) Validate() error {
	if err := finite("g", g.G); err != nil {
		return err
	}
	if err := finite("damping", g.Damping); err != nil {
		return err
	}
	if g.Damping < 0 {
		return dynamo.Invalid("damping", "must be non-negative, got %g", g.Damping)
	}
	return nil
}

func (g Gravity) Acceleration(i int, x r3.Vec, positions []r3.Vec) r3.Vec {
	var acc r3.Vec
	for j, p := range positions {
		diff := r3.Sub(p, x)
		r := r3.Norm(diff)
		acc = r3.Add(acc, r3.Scale(1/(r*r*r+SelfExclusion*indicator(j, i)+g.Damping), diff))
	}
	return r3.Scale(g.G, acc)
}

// PotentialEnergy is the undamped -G/r pair sum.
func (g Gravity) PotentialEnergy(positions []r3.Vec) float64 {
	pe := 0.0
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			r := r3.Norm(r3.Sub(positions[j], positions[i]))
			pe -= g.G / r
		}
	}
	return pe
}
