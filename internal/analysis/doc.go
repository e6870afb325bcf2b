// Package analysis inspects finished or running simulations.
//
//   - [Spectrum] and [DominantFrequency]: oscillations in an energy trace
//   - [PerturbedPair], [Divergence] and [LyapunovExponent]: sensitivity of
//     an N-body system to a tiny displacement of one body
//
// A positive exponent means nearby states separate exponentially:
//
//	ref, pert, _ := analysis.PerturbedPair(n, dist, opts, 1e-9)
//	sep, _ := analysis.Divergence(ctx, ref, pert, steps)
//	lambda := analysis.LyapunovExponent(sep, ref.StepSize())
package analysis
