package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum returns the one-sided amplitude spectrum of a trace sampled
// every dt. The mean is removed and a Hann window applied first.
func Spectrum(trace []float64, dt float64) (freqs, amps []float64) {
	n := len(trace)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range trace {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range trace {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	coeffs := fft.FFTReal(x)
	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		amps[k] = cmplx.Abs(coeffs[k])
	}
	return freqs, amps
}

// DominantFrequency is the non-zero frequency with the largest amplitude.
// It reports false for traces that are too short or flat.
func DominantFrequency(trace []float64, dt float64) (float64, bool) {
	freqs, amps := Spectrum(trace, dt)
	best := 0
	for k := 1; k < len(amps); k++ {
		if amps[k] > amps[best] || best == 0 {
			best = k
		}
	}
	if best == 0 || amps[best] == 0 {
		return 0, false
	}
	return freqs[best], true
}
