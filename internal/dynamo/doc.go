// Package dynamo provides the core primitives shared by the simulation
// packages:
//
//   - [BodySet]: struct-of-arrays storage for body velocities and positions
//   - [View]: read-only window onto a vector array
//   - [ParallelFor]: chunked parallel-for with a completion barrier
//   - [ConfigError]: the configuration error class
//
// Vectors are gonum r3.Vec values throughout.
//
// # Example
//
//	set := dynamo.NewBodySet(n)
//	dynamo.ParallelFor(n, 0, func(start, end int) {
//	    for i := start; i < end; i++ {
//	        set.Positions[i] = update(i)
//	    }
//	})
package dynamo
