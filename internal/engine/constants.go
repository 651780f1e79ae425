package engine

// Fixed-point timing accumulator
const (
	// Fractional bits of the accumulator (Q32.32 input-sample periods)
	phaseFracBits = 32

	// One input-sample period in accumulator units
	phaseOne uint64 = 1 << phaseFracBits

	// Mask extracting the fractional part
	phaseFracMask = phaseOne - 1

	// Half a phase step, for rounding to the nearest phase
	phaseHalf uint64 = 1 << (phaseFracBits - 1)

	// Scale turning fractional bits into [0, 1)
	phaseFracScale = float64(phaseOne)

	// Bits of the error word extending the step below the accumulator LSB
	stepErrBits = 64

	// Total fractional bits of the step, accumulator plus error word
	stepTotalBits = phaseFracBits + stepErrBits

	// Mantissa bits of a float64, including the implicit one
	float64MantBits = 53
)

// Rate limits keep the accumulator step inside 64 bits with headroom.
const (
	// MinRate is the smallest supported output/input ratio (2^-20)
	MinRate = 1.0 / (1 << 20)

	// MaxRate is the largest supported output/input ratio (2^20)
	MaxRate = 1 << 20
)

// History window mirroring
const (
	// Each channel keeps two copies of the window so every view is contiguous
	historyMirrorFactor = 2
)

// Output sizing
const (
	// One extra slot on top of ceil(rate) for phase alignment
	extraOutputSlot = 1

	bytesPerFloat64 = 8
)
