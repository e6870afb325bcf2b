package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultEps   = 1.0
	DefaultSigma = 1e-3
)

// LennardJones sums a 24·eps·sigma·(r⁻⁸ − 2r⁻¹⁴) pair interaction over all
// bodies: repulsive below r = 2^(1/6), weakly attractive beyond.
type LennardJones struct {
	Eps   float64 `yaml:"eps"`
	Sigma float64 `yaml:"sigma"`
}

func NewLennardJones() LennardJones {
	return LennardJones{Eps: DefaultEps, Sigma: DefaultSigma}
}

func (l LennardJones) Name() string { return "lj" }

func (l LennardJones) Validate() error {
	if err := finite("eps", l.Eps); err != nil {
		return err
	}
	if err := finite("sigma", l.Sigma); err != nil {
		return err
	}
	if l.Sigma < 0 {
		return dynamo.Invalid("sigma", "must be non-negative, got %g", l.Sigma)
	}
	return nil
}

func (l LennardJones) Acceleration(i int, x r3.Vec, positions []r3.Vec) r3.Vec {
	a := 24 * l.Eps * l.Sigma

	var acc r3.Vec
	for j, p := range positions {
		diff := r3.Sub(p, x)
		r := r3.Norm(diff) + SelfExclusion*indicator(j, i)

		r2 := r * r
		r8 := r2 * r2 * r2 * r2
		r14 := r8 * r2 * r2 * r2
		acc = r3.Add(acc, r3.Scale(1/r8-2/r14, diff))
	}
	return r3.Scale(a, acc)
}

// PotentialEnergy is the pair sum of 4·eps·sigma·(r⁻¹² − r⁻⁶), the potential
// whose negative gradient is Acceleration.
func (l LennardJones) PotentialEnergy(positions []r3.Vec) float64 {
	pe := 0.0
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			r := r3.Norm(r3.Sub(positions[j], positions[i]))
			r6 := math.Pow(r, 6)
			pe += 1/(r6*r6) - 1/r6
		}
	}
	return 4 * l.Eps * l.Sigma * pe
}
