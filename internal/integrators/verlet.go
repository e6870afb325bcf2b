package integrators

import "gonum.org/v1/gonum/spatial/r3"

// Verlet is velocity Verlet. It evaluates the force twice per step, at the
// start and at the new position, and assumes the force does not depend on
// velocity.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Advance(f ForceFunc, dt float64, v0, p0 r3.Vec, t0 float64) (r3.Vec, r3.Vec, float64) {
	a0 := f(v0, p0, t0)
	p1 := axpy(axpy(p0, dt, v0), 0.5*dt*dt, a0)

	a1 := f(v0, p1, t0+dt)
	v1 := axpy(v0, 0.5*dt, r3.Add(a0, a1))

	return v1, p1, t0 + dt
}
