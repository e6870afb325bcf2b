package distrib

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Points places bodies at explicit coordinates. It consumes no randomness.
// Bodies beyond the given coordinates are placed at rest at the origin;
// missing velocities are zero.
type Points struct {
	Positions  []r3.Vec
	Velocities []r3.Vec
}

func (p Points) Name() string { return "points" }

func (p Points) Validate() error {
	if len(p.Positions) == 0 {
		return dynamo.Invalid("positions", "at least one position required")
	}
	if len(p.Velocities) > len(p.Positions) {
		return dynamo.Invalid("velocities", "%d velocities for %d positions", len(p.Velocities), len(p.Positions))
	}
	for _, v := range p.Positions {
		if !dynamo.IsFinite(v) {
			return dynamo.Invalid("positions", "non-finite coordinate %v", v)
		}
	}
	for _, v := range p.Velocities {
		if !dynamo.IsFinite(v) {
			return dynamo.Invalid("velocities", "non-finite component %v", v)
		}
	}
	return nil
}

func (p Points) Fill(_ Source, vel, pos []r3.Vec) {
	clear(pos[copy(pos, p.Positions):])
	clear(vel[copy(vel, p.Velocities):])
}
