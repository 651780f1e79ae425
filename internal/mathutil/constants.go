package mathutil

// Power series for I₀: Σ ((x/2)^k / k!)², summed until the next term is
// negligible against the partial sum.
const (
	besselSeriesEpsilon = 1e-17
	besselMaxTerms      = 500
	besselHalf          = 0.5
)

// Kaiser & Schafer empirical β formula
const (
	kaiserAttHigh   = 50.0 // dB
	kaiserAttMedium = 21.0 // dB

	kaiserBetaHighCoeff1 = 0.1102
	kaiserBetaHighOffset = 8.7

	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	// Below this β the window is treated as rectangular
	kaiserBetaMinThreshold = 0.1
)
