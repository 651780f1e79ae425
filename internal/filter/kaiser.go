// Package filter provides the lowpass design and polyphase decomposition
// used by the arbitrary-rate resampler.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-iq-resampler/internal/mathutil"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// Prototype length limits
	minPrototypeTaps = 1
	maxPrototypeTaps = 1 << 22

	// Highest normalized cutoff (Nyquist)
	maxCutoffFreq = 0.5

	// Default frequency response resolution
	defaultResponsePoints = 512

	// Response bins span half of a 2*numPoints transform
	responseOversample = 2

	// The Kaiser argument sqrt(1 - r²) uses r = (n - c)/c
	windowCenterDivisor = 2.0

	minMagnitude = 1e-10 // Avoid log(0)
	dbMultiplier = 20.0  // 20*log10 for magnitude
)

// ErrInvalidParams indicates filter design parameters that cannot produce a filter.
var ErrInvalidParams = errors.New("invalid filter parameters")

// KaiserWindow returns a symmetric Kaiser window of length samples with
// shape parameter beta, peaking at 1 in the middle. Lengths below one
// return an empty window.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	center := float64(length-1) / windowCenterDivisor
	norm := 1 / mathutil.BesselI0(beta)

	// Evaluate the first half and mirror it
	for n := range (length + 1) / 2 {
		r := (float64(n) - center) / center
		// Rounding can push 1-r² a hair below zero at the edges
		v := mathutil.BesselI0(beta*math.Sqrt(math.Max(0, 1-r*r))) * norm
		w[n] = v
		w[length-1-n] = v
	}
	return w
}

// PrototypeParams describes a Kaiser-windowed sinc lowpass prototype.
type PrototypeParams struct {
	// Length is the number of taps; odd lengths have an integer center
	Length int

	// Cutoff is the -6 dB frequency in cycles per sample, in (0, 0.5]
	Cutoff float64

	// Attenuation is the stopband attenuation in dB (>= 0), setting β
	Attenuation float64

	// Gain is the DC gain (sum of taps)
	Gain float64
}

// Validate checks if prototype parameters are valid.
func (p *PrototypeParams) Validate() error {
	switch {
	case p.Length < minPrototypeTaps || p.Length > maxPrototypeTaps:
		return fmt.Errorf("%w: prototype length %d out of range [%d, %d]",
			ErrInvalidParams, p.Length, minPrototypeTaps, maxPrototypeTaps)

	case math.IsNaN(p.Cutoff) || p.Cutoff <= 0 || p.Cutoff > maxCutoffFreq:
		return fmt.Errorf("%w: cutoff %g out of range (0, 0.5]", ErrInvalidParams, p.Cutoff)

	case math.IsNaN(p.Attenuation) || math.IsInf(p.Attenuation, 0) || p.Attenuation < 0:
		return fmt.Errorf("%w: attenuation %g dB must be finite and non-negative", ErrInvalidParams, p.Attenuation)

	case math.IsNaN(p.Gain) || math.IsInf(p.Gain, 0) || p.Gain <= 0:
		return fmt.Errorf("%w: gain %g must be finite and positive", ErrInvalidParams, p.Gain)
	}
	return nil
}

// sinc returns sin(πx)/(πx).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// DesignPrototype designs the linear-phase lowpass
//
//	h[n] = 2fc·sinc(2fc·(n - c))·w[n],  c = (Length-1)/2
//
// with w the Kaiser window for Attenuation, scaled so Σh = Gain.
func DesignPrototype(params PrototypeParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	h := KaiserWindow(params.Length, mathutil.KaiserBeta(params.Attenuation))
	center := float64(params.Length-1) / windowCenterDivisor
	twoFc := 2 * params.Cutoff

	for n := range h {
		h[n] *= twoFc * sinc(twoFc*(float64(n)-center))
	}

	if sum := f64.Sum(h); sum != 0 {
		f64.Scale(h, h, params.Gain/sum)
	}
	return h, nil
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64

	// Phase response at each frequency (radians)
	Phase []float64
}

// ComputeFrequencyResponse samples the response of an FIR filter at
// numPoints frequencies k/(2·numPoints), k in [0, numPoints), with a real
// FFT of length 2·numPoints. Filters longer than the transform are folded
// modulo its length, which leaves the sampled response exact.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}
	n := responseOversample * numPoints

	folded := make([]float64, n)
	for i, c := range coeffs {
		folded[i%n] += c
	}
	bins := fourier.NewFFT(n).Coefficients(nil, folded)

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}
	for k := range numPoints {
		response.Frequencies[k] = float64(k) / float64(n)
		response.Magnitude[k] = cmplx.Abs(bins[k])
		response.Phase[k] = cmplx.Phase(bins[k])
	}
	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	return dbMultiplier * math.Log10(math.Max(magnitude, minMagnitude))
}
