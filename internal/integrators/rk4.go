package integrators

import "gonum.org/v1/gonum/spatial/r3"

// RK4 is the classic fourth-order Runge-Kutta scheme applied to the 6-D
// system dv/dt = f(v, p, t), dp/dt = v.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Advance(f ForceFunc, dt float64, v0, p0 r3.Vec, t0 float64) (r3.Vec, r3.Vec, float64) {
	half := dt * 0.5

	// each stage yields (dv, dp) = (f(v, p, t), v)
	dv1 := f(v0, p0, t0)
	dp1 := v0

	v2 := axpy(v0, half, dv1)
	p2 := axpy(p0, half, dp1)
	dv2 := f(v2, p2, t0+half)
	dp2 := v2

	v3 := axpy(v0, half, dv2)
	p3 := axpy(p0, half, dp2)
	dv3 := f(v3, p3, t0+half)
	dp3 := v3

	v4 := axpy(v0, dt, dv3)
	p4 := axpy(p0, dt, dp3)
	dv4 := f(v4, p4, t0+dt)
	dp4 := v4

	dt6 := dt / 6.0
	v1 := axpy(v0, dt6, r3.Add(r3.Add(dv1, r3.Scale(2, dv2)), r3.Add(r3.Scale(2, dv3), dv4)))
	p1 := axpy(p0, dt6, r3.Add(r3.Add(dp1, r3.Scale(2, dp2)), r3.Add(r3.Scale(2, dp3), dp4)))

	return v1, p1, t0 + dt
}
