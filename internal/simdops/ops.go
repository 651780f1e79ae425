// Package simdops provides SIMD-accelerated kernels over complex samples
// held as split real and imaginary float64 channels.
//
// Splitting a complex stream into two real channels lets one real
// coefficient row be applied to both with the float64 kernels of
// github.com/tphakala/simd.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f64"
)

// DotSplit returns Σ a[i]·(re[i] + j·im[i]).
// All slices must have the same length.
func DotSplit(a, re, im []float64) complex128 {
	return complex(f64.DotProductUnsafe(a, re), f64.DotProductUnsafe(a, im))
}

// LinearDotSplit returns Σ (a[i] + x·b[i])·(re[i] + j·im[i]).
// All slices must have the same length.
func LinearDotSplit(a, b, re, im []float64, x float64) complex128 {
	yr := f64.DotProductUnsafe(a, re) + x*f64.DotProductUnsafe(b, re)
	yi := f64.DotProductUnsafe(a, im) + x*f64.DotProductUnsafe(b, im)
	return complex(yr, yi)
}

// CubicDotSplit returns Σ (a[i] + x·(b[i] + x·(c[i] + x·d[i])))·(re[i] + j·im[i]).
// All slices must have the same length.
func CubicDotSplit(a, b, c, d, re, im []float64, x float64) complex128 {
	return complex(
		f64.CubicInterpDot(re, a, b, c, d, x),
		f64.CubicInterpDot(im, a, b, c, d, x),
	)
}

// Interleave writes re and im as [re0, im0, re1, im1, ...] into dst, which
// must hold 2*len(re) elements.
func Interleave(dst, re, im []float64) {
	f64.Interleave2(dst, re, im)
}

// Split separates complex samples into real and imaginary channels.
func Split(x []complex128) (re, im []float64) {
	re = make([]float64, len(x))
	im = make([]float64, len(x))
	for i, v := range x {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return re, im
}

// Info describes the instruction set used by the kernels.
func Info() string {
	return cpu.Info()
}
