package physics

import "gonum.org/v1/gonum/spatial/r3"

// All bodies carry unit mass.

func KineticEnergy(vel []r3.Vec) float64 {
	ke := 0.0
	for _, v := range vel {
		ke += 0.5 * r3.Norm2(v)
	}
	return ke
}

func Momentum(vel []r3.Vec) r3.Vec {
	var p r3.Vec
	for _, v := range vel {
		p = r3.Add(p, v)
	}
	return p
}

func AngularMomentum(pos, vel []r3.Vec) r3.Vec {
	var l r3.Vec
	for i := range pos {
		l = r3.Add(l, r3.Cross(pos[i], vel[i]))
	}
	return l
}

func CenterOfMass(pos []r3.Vec) r3.Vec {
	if len(pos) == 0 {
		return r3.Vec{}
	}
	var c r3.Vec
	for _, p := range pos {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pos)), c)
}

// TotalEnergy adds kinetic energy to the model's potential, if it has one.
func TotalEnergy(m Model, pos, vel []r3.Vec) (float64, bool) {
	p, ok := m.(Potential)
	if !ok {
		return KineticEnergy(vel), false
	}
	return KineticEnergy(vel) + p.PotentialEnergy(pos), true
}
