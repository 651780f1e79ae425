// Package mathutil provides the special functions used by the Kaiser filter design.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by its power series. The series converges for every finite x and
// is accurate to a few ulps over the β range of practical Kaiser windows
// (0 to 50).
func BesselI0(x float64) float64 {
	if math.IsNaN(x) {
		return x
	}
	if math.IsInf(x, 0) {
		return math.Inf(1)
	}

	half := besselHalf * x
	sum, term := 1.0, 1.0
	for k := 1; k <= besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term <= besselSeriesEpsilon*sum {
			break
		}
	}
	return sum
}

// KaiserBeta returns the Kaiser window β for a stopband attenuation in dB
// (a positive number), after Kaiser & Schafer:
//
//	att > 50:       β = 0.1102 (att - 8.7)
//	21 <= att <= 50: β = 0.5842 (att - 21)^0.4 + 0.07886 (att - 21)
//	att < 21:       β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}

// KaiserBetaFromSidelobe is KaiserBeta for a sidelobe suppression level
// given as a negative dB value (-60 means 60 dB of rejection).
func KaiserBetaFromSidelobe(sidelobeDB float64) float64 {
	return KaiserBeta(-sidelobeDB)
}

// KaiserAttenuation inverts the high-attenuation branch of KaiserBeta,
// att ≈ 8.7 + β/0.1102. Small β returns 0.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff1
}
