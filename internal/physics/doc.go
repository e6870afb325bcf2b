// Package physics provides the force models of the N-body engine.
//
// Each model implements [Model], producing the acceleration on one body
// from the positions of the whole read generation:
//
//   - [Gravity]: all-pairs gravitation with a damping term
//   - [LennardJones]: all-pairs Lennard-Jones interaction
//   - [BarnesHut]: octree-approximated gravity
//
// Models are pure functions of their parameters and the positions they are
// given; they never mutate either, so many bodies may be evaluated
// concurrently against the same array.
//
// # Self-Exclusion
//
// The all-pairs sums run over every j including j == i. Rather than branch,
// the self term adds [SelfExclusion] to its denominator (or distance), which
// makes a zero-vector numerator contribute exactly zero.
//
// Models that also implement [Potential] can report potential energy:
//
//	if p, ok := model.(physics.Potential); ok {
//	    energy := p.PotentialEnergy(positions)
//	}
package physics
