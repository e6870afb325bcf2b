// Package integrators advances a single body by one fixed timestep.
//
// An integrator only sees an opaque [ForceFunc]; it never knows which force
// model produced it. Implementations hold no per-call state and are safe to
// share across every body of a step.
package integrators

import "gonum.org/v1/gonum/spatial/r3"

// ForceFunc returns the acceleration of a body with velocity v at position p
// and time t.
type ForceFunc func(v, p r3.Vec, t float64) r3.Vec

type Integrator interface {
	Name() string
	Advance(f ForceFunc, dt float64, v0, p0 r3.Vec, t0 float64) (v1, p1 r3.Vec, t1 float64)
}

// axpy returns x + a·y.
func axpy(x r3.Vec, a float64, y r3.Vec) r3.Vec {
	return r3.Add(x, r3.Scale(a, y))
}
