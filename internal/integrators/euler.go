package integrators

import "gonum.org/v1/gonum/spatial/r3"

// Euler is the semi-implicit (symplectic) Euler step: the position update
// uses the freshly computed velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Advance(f ForceFunc, dt float64, v0, p0 r3.Vec, t0 float64) (r3.Vec, r3.Vec, float64) {
	v1 := axpy(v0, dt, f(v0, p0, t0))
	p1 := axpy(p0, dt, v1)
	return v1, p1, t0 + dt
}
