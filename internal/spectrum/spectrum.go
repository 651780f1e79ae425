// Package spectrum estimates power spectral densities of complex sample
// blocks with a single windowed FFT.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/tphakala/simd/c128"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

const (
	// Highest normalized frequency
	nyquist = 0.5

	dbMultiplier = 20.0
	minMagnitude = 1e-12
)

var (
	// ErrInvalidLength indicates a transform length below one.
	ErrInvalidLength = errors.New("invalid FFT length")

	// ErrUnknownWindow indicates an unsupported window kind.
	ErrUnknownWindow = errors.New("unknown window")
)

// Window selects the taper applied before the transform.
type Window int

const (
	// Hann is the raised-cosine window.
	Hann Window = iota
	// Hamming is the Hamming window.
	Hamming
	// Blackman is the three-term Blackman window.
	Blackman
	// Rectangular applies no taper.
	Rectangular
)

var windowNames = map[Window]string{
	Hann:        "hann",
	Hamming:     "hamming",
	Blackman:    "blackman",
	Rectangular: "rectangular",
}

// String returns the window name.
func (w Window) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// ParseWindow returns the window with the given case-insensitive name.
func ParseWindow(name string) (Window, error) {
	for w, n := range windowNames {
		if strings.EqualFold(n, name) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWindow, name)
}

// coefficients returns the n window weights.
func (w Window) coefficients(n int) ([]float64, error) {
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 1
	}
	if n == 1 {
		return seq, nil
	}

	switch w {
	case Hann:
		return window.Hann(seq), nil
	case Hamming:
		return window.Hamming(seq), nil
	case Blackman:
		return window.Blackman(seq), nil
	case Rectangular:
		return window.Rectangular(seq), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownWindow, w)
	}
}

// Estimator computes windowed FFTs of a fixed length. The window spans the
// samples actually used; shorter inputs are zero-padded.
// An Estimator is not safe for concurrent use.
type Estimator struct {
	fft    *fourier.CmplxFFT
	nfft   int
	window Window

	// Window weights cached per input length
	weights    []complex128
	weightsLen int

	in []complex128
}

// NewEstimator creates an estimator for nfft-point transforms.
func NewEstimator(nfft int, w Window) (*Estimator, error) {
	if nfft < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, nfft)
	}
	if _, ok := windowNames[w]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownWindow, w)
	}

	return &Estimator{
		fft:    fourier.NewCmplxFFT(nfft),
		nfft:   nfft,
		window: w,
		in:     make([]complex128, nfft),
	}, nil
}

// Len returns the transform length.
func (e *Estimator) Len() int {
	return e.nfft
}

// Compute writes the unshifted nfft-bin spectrum of samples into dst
// (allocated when too small) and returns it. Samples beyond nfft are ignored.
func (e *Estimator) Compute(dst, samples []complex128) ([]complex128, error) {
	n := min(len(samples), e.nfft)

	if n > 0 && n != e.weightsLen {
		coeffs, err := e.window.coefficients(n)
		if err != nil {
			return nil, err
		}
		e.weights = make([]complex128, n)
		for i, c := range coeffs {
			e.weights[i] = complex(c, 0)
		}
		e.weightsLen = n
	}

	clear(e.in)
	if n > 0 {
		c128.Mul(e.in[:n], samples[:n], e.weights)
	}

	if len(dst) < e.nfft {
		dst = make([]complex128, e.nfft)
	}
	return e.fft.Coefficients(dst[:e.nfft], e.in), nil
}

// Compute returns the unshifted nfft-bin spectrum of samples under window w.
func Compute(samples []complex128, nfft int, w Window) ([]complex128, error) {
	e, err := NewEstimator(nfft, w)
	if err != nil {
		return nil, err
	}
	return e.Compute(nil, samples)
}

// Shift returns a copy of x with the zero-frequency bin moved to the centre.
func Shift(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	half := n / 2
	copy(out, x[n-half:])
	copy(out[half:], x[:n-half])
	return out
}

// PowerDB returns 20·log10|X[i]| - 20·log10(nfft) for each bin, with the
// magnitude floored to avoid -Inf.
func PowerDB(x []complex128) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	scale := dbMultiplier * math.Log10(float64(len(x)))
	for i, v := range x {
		out[i] = dbMultiplier*math.Log10(math.Max(cmplx.Abs(v), minMagnitude)) - scale
	}
	return out
}

// Frequencies returns the normalized frequency of each shifted bin,
// i/nfft - 0.5, multiplied by scale.
func Frequencies(nfft int, scale float64) []float64 {
	out := make([]float64, max(nfft, 0))
	for i := range out {
		out[i] = (float64(i)/float64(nfft) - nyquist) * scale
	}
	return out
}

// BinFrequency returns the normalized frequency in [-0.5, 0.5) of bin k of
// an unshifted n-bin spectrum.
func BinFrequency(k, n int) float64 {
	f := float64(k) / float64(n)
	if f >= nyquist {
		f--
	}
	return f
}

// PeakFrequency returns the normalized frequency in [-0.5, 0.5) of the
// largest bin of an unshifted spectrum.
func PeakFrequency(x []complex128) float64 {
	if len(x) == 0 {
		return 0
	}
	mags := make([]float64, len(x))
	for i, v := range x {
		mags[i] = cmplx.Abs(v)
	}
	return BinFrequency(floats.MaxIdx(mags), len(x))
}
