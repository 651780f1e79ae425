// Package signal synthesizes complex baseband test signals.
package signal

import (
	"math"
	"math/cmplx"
)

const twoPi = 2.0 * math.Pi

// Tone is a complex sinusoid A·exp(j(2πf·t + φ)).
type Tone struct {
	// Frequency in cycles per sample, normalized to the sample rate
	Frequency float64

	// Amplitude is the linear magnitude
	Amplitude float64

	// Phase is the initial phase in radians
	Phase float64
}

// At evaluates the sum of tones at real-valued time t (in samples).
func At(t float64, tones ...Tone) complex128 {
	var sum complex128
	for _, tone := range tones {
		sum += cmplx.Rect(tone.Amplitude, twoPi*tone.Frequency*t+tone.Phase)
	}
	return sum
}

// Sum returns n samples of the sum of tones at integer times 0..n-1.
func Sum(n int, tones ...Tone) []complex128 {
	if n <= 0 {
		return []complex128{}
	}
	out := make([]complex128, n)
	for i := range out {
		out[i] = At(float64(i), tones...)
	}
	return out
}

// Impulse returns n samples with a unit impulse at index pos.
func Impulse(n, pos int) []complex128 {
	out := make([]complex128, max(n, 0))
	if pos >= 0 && pos < n {
		out[pos] = 1
	}
	return out
}

// Power returns the mean squared magnitude of x.
func Power(x []complex128) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum / float64(len(x))
}
