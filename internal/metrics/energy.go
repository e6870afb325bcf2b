package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// KineticEnergy averages the total kinetic energy over every observation.
type KineticEnergy struct {
	name    string
	sum     float64
	last    float64
	samples int
	scratch []r3.Vec
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(_, vel dynamo.View, _ float64) {
	k.scratch = vel.CopyTo(k.scratch)
	k.last = physics.KineticEnergy(k.scratch)
	k.sum += k.last
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.sum / float64(k.samples)
}

// Last is the kinetic energy of the most recent observation.
func (k *KineticEnergy) Last() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.sum, k.last = 0, 0
	k.samples = 0
}

// EnergyDrift tracks the largest relative departure of total energy from
// the first observation. Models without a potential are measured on
// kinetic energy alone.
type EnergyDrift struct {
	name          string
	model         physics.Model
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	pos, vel      []r3.Vec
}

func NewEnergyDrift(model physics.Model) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		model: model,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(pos, vel dynamo.View, _ float64) {
	e.pos = pos.CopyTo(e.pos)
	e.vel = vel.CopyTo(e.vel)
	energy, _ := physics.TotalEnergy(e.model, e.pos, e.vel)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest change of total linear momentum.
type MomentumDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
	scratch  []r3.Vec
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(_, vel dynamo.View, _ float64) {
	m.scratch = vel.CopyTo(m.scratch)
	p := physics.Momentum(m.scratch)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, r3.Norm(r3.Sub(p, m.initial)))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.maxDrift = 0
	m.samples = 0
}
