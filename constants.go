package resampler

import "github.com/tphakala/go-iq-resampler/internal/engine"

// Default filter parameters
const (
	DefaultSemiLength            = 13
	DefaultBandwidth             = 0.5
	DefaultStopbandAttenuationDB = -60.0
	DefaultNumPhases             = 32
)

// Configuration limits
const (
	// MinRate is the smallest supported output/input ratio
	MinRate = engine.MinRate

	// MaxRate is the largest supported output/input ratio
	MaxRate = engine.MaxRate

	// MaxNumPhases is the largest filter bank size
	MaxNumPhases = 8192

	// maxBandwidth is the input Nyquist frequency
	maxBandwidth = 0.5

	// maxPrototypeTaps bounds 2*SemiLength*NumPhases+1
	maxPrototypeTaps = 1 << 22

	// Each phase spans twice the semi-length
	semiLengthSpan = 2
)

// Interleaved I/Q layout
const (
	iqComponents = 2 // I and Q per complex sample
)
