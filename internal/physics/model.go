package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// SelfExclusion is added to the i == j term of the all-pairs sums.
const SelfExclusion = 1e24

type Model interface {
	Name() string
	Validate() error
	// Acceleration returns the acceleration on body i were it located at x,
	// given the read-generation positions. x differs from positions[i]
	// inside multi-stage integrators.
	Acceleration(i int, x r3.Vec, positions []r3.Vec) r3.Vec
}

// Preparer is implemented by models that build per-step acceleration
// structures from the read generation before any body is evaluated.
type Preparer interface {
	Prepare(positions []r3.Vec) error
}

// Potential is implemented by models that can report total potential energy.
type Potential interface {
	PotentialEnergy(positions []r3.Vec) float64
}

// Accelerations evaluates m for every body at its own position.
func Accelerations(m Model, positions []r3.Vec) []r3.Vec {
	acc := make([]r3.Vec, len(positions))
	for i, p := range positions {
		acc[i] = m.Acceleration(i, p, positions)
	}
	return acc
}

// indicator is [j == i] as a float, folded into the sum rather than
// skipping the self term.
func indicator(j, i int) float64 {
	if j == i {
		return 1
	}
	return 0
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dynamo.Invalid(field, "must be finite, got %g", v)
	}
	return nil
}
