package analysis

import (
	"context"
	"math"

	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// PerturbedPair builds a reference engine and a copy of it whose first body
// is displaced by delta along x. Both share opts, including the force model
// and integrator, so they must be stepped alternately, never concurrently.
func PerturbedPair(n int, dist distrib.Distribution, opts sim.Options, delta float64) (*sim.Engine, *sim.Engine, error) {
	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, nil, dynamo.Invalid("delta", "must be finite and non-zero, got %g", delta)
	}

	ref, err := sim.New(n, dist, opts)
	if err != nil {
		return nil, nil, err
	}

	pos := ref.CopyPositions(nil)
	vel := ref.Velocities().CopyTo(nil)
	pos[0].X += delta

	opts.Force, opts.Integrator = ref.Force(), ref.Integrator()
	pert, err := sim.New(n, distrib.Points{Positions: pos, Velocities: vel}, opts)
	if err != nil {
		return nil, nil, err
	}
	return ref, pert, nil
}

// Separation is the Euclidean distance between two configurations.
func Separation(a, b []r3.Vec) float64 {
	s := 0.0
	for i := range min(len(a), len(b)) {
		s += r3.Norm2(r3.Sub(a[i], b[i]))
	}
	return math.Sqrt(s)
}

// Divergence steps both engines and returns their separation before the
// first step and after each one.
func Divergence(ctx context.Context, ref, pert *sim.Engine, steps int) ([]float64, error) {
	var a, b []r3.Vec
	sep := make([]float64, 0, steps+1)

	measure := func() {
		a = ref.CopyPositions(a)
		b = pert.CopyPositions(b)
		sep = append(sep, Separation(a, b))
	}

	measure()
	for range steps {
		if err := ctx.Err(); err != nil {
			return sep, err
		}
		ref.Step()
		pert.Step()
		measure()
	}
	return sep, nil
}

// LyapunovExponent fits ln(separation) against time by least squares and
// returns the slope. Zero separations are skipped.
func LyapunovExponent(sep []float64, dt float64) float64 {
	var n, st, sy, stt, sty float64
	for i, s := range sep {
		if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
			continue
		}
		t, y := float64(i)*dt, math.Log(s)
		n++
		st += t
		sy += y
		stt += t * t
		sty += t * y
	}
	den := n*stt - st*st
	if n < 2 || den == 0 {
		return 0
	}
	return (n*sty - st*sy) / den
}
