package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-iq-resampler/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	// Phase count limits
	minNumPhases = 1
	maxNumPhases = 8192

	// Each phase spans 2*SemiLength input samples
	semiLengthSpan = 2

	// Polyphase decomposition constants
	nextPhaseOffset       = 1
	prevPhaseLookback     = 1
	secondNextPhaseOffset = 2

	// Interpolation polynomial coefficients
	cubicCenterCoeff = 0.5
	cubicDCoeff      = 1.0 / 6.0
	cubicCMultiplier = 4.0

	bytesPerFloat64 = 8
)

// InterpOrder represents the coefficient interpolation order between phases.
type InterpOrder int

const (
	// InterpNone selects the nearest phase.
	InterpNone InterpOrder = 0
	// InterpLinear interpolates linearly between adjacent phases.
	InterpLinear InterpOrder = 1
	// InterpCubic interpolates with a cubic through four neighbouring phases.
	InterpCubic InterpOrder = 3
)

// String returns the interpolation order name.
func (o InterpOrder) String() string {
	switch o {
	case InterpNone:
		return "nearest"
	case InterpLinear:
		return "linear"
	case InterpCubic:
		return "cubic"
	default:
		return fmt.Sprintf("InterpOrder(%d)", int(o))
	}
}

// PolyphaseFilterBank is the polyphase decomposition of a Kaiser-windowed
// sinc prototype, ready for arbitrary-rate resampling.
//
// Phase p holds the taps that realise a timing offset of p/NumPhases input
// samples. Taps are stored oldest-to-newest: tap 0 multiplies the oldest
// sample of a 2*SemiLength history window.
//
// Coefficient storage per phase:
//   - InterpNone:   A
//   - InterpLinear: A, B          value = A + B*x
//   - InterpCubic:  A, B, C, D    value = A + (B + (C + D*x)*x)*x
//
// An extra boundary row at index NumPhases holds phase 0 advanced by one
// input sample, so phase NumPhases-1 always has an interpolation partner.
//
// The bank is never mutated after construction and may be read concurrently.
type PolyphaseFilterBank struct {
	// Prototype is the lowpass filter at the upsampled rate,
	// length 2*SemiLength*NumPhases + 1, summing to NumPhases.
	Prototype []float64

	// NumPhases is the number of polyphase branches
	NumPhases int

	// SemiLength is the filter semi-length in input samples (the group delay)
	SemiLength int

	// TapsPerPhase is the number of taps in each phase (2*SemiLength)
	TapsPerPhase int

	// TotalTaps is the prototype length
	TotalTaps int

	// InterpOrder is the coefficient interpolation order (0, 1, or 3)
	InterpOrder InterpOrder

	// Bandwidth is the prototype cutoff normalized to the input rate
	Bandwidth float64

	// Attenuation is the stopband attenuation in dB
	Attenuation float64

	// Beta is the Kaiser window parameter derived from Attenuation
	Beta float64

	rowsA [][]float64 // NumPhases+1 rows
	rowsB [][]float64
	rowsC [][]float64
	rowsD [][]float64
}

// PhaseCoeffs are the read-only coefficient rows of one phase.
// B, C and D are nil when InterpOrder does not use them.
type PhaseCoeffs struct {
	A, B, C, D []float64
}

// PolyphaseParams holds parameters for polyphase filter bank design.
type PolyphaseParams struct {
	// SemiLength is the filter semi-length in input samples (>= 1)
	SemiLength int

	// NumPhases is the number of polyphase branches (timing resolution)
	NumPhases int

	// Bandwidth is the cutoff normalized to the input rate, in (0, 0.5]
	Bandwidth float64

	// Attenuation is the desired stopband attenuation in dB (> 0)
	Attenuation float64

	// InterpOrder specifies coefficient interpolation (0, 1, or 3)
	InterpOrder InterpOrder
}

// Validate checks if polyphase parameters are valid.
func (pp *PolyphaseParams) Validate() error {
	if pp.SemiLength < 1 {
		return fmt.Errorf("%w: semi-length %d must be at least 1", ErrInvalidParams, pp.SemiLength)
	}

	if pp.NumPhases < minNumPhases || pp.NumPhases > maxNumPhases {
		return fmt.Errorf("%w: number of phases %d out of range [%d, %d]",
			ErrInvalidParams, pp.NumPhases, minNumPhases, maxNumPhases)
	}

	if math.IsNaN(pp.Bandwidth) || pp.Bandwidth <= 0 || pp.Bandwidth > maxCutoffFreq {
		return fmt.Errorf("%w: bandwidth %f out of range (0, 0.5]", ErrInvalidParams, pp.Bandwidth)
	}

	if math.IsNaN(pp.Attenuation) || math.IsInf(pp.Attenuation, 0) || pp.Attenuation <= 0 {
		return fmt.Errorf("%w: attenuation %f dB must be positive", ErrInvalidParams, pp.Attenuation)
	}

	if pp.InterpOrder != InterpNone && pp.InterpOrder != InterpLinear && pp.InterpOrder != InterpCubic {
		return fmt.Errorf("%w: invalid interpolation order %d (must be 0, 1, or 3)", ErrInvalidParams, pp.InterpOrder)
	}

	return nil
}

// DesignPolyphaseFilterBank creates a polyphase filter bank from the given parameters.
//
// The process:
// 1. Design a Kaiser lowpass prototype of 2*SemiLength*NumPhases+1 taps with
// cutoff Bandwidth/NumPhases at the upsampled rate and DC gain NumPhases
// 2. Slice it into NumPhases interleaved sub-filters
// 3. Compute interpolation coefficients for sub-phase precision
func DesignPolyphaseFilterBank(params PolyphaseParams) (*PolyphaseFilterBank, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid polyphase parameters: %w", err)
	}

	tapsPerPhase := semiLengthSpan * params.SemiLength
	totalTaps := tapsPerPhase*params.NumPhases + 1

	prototype, err := DesignPrototype(PrototypeParams{
		Length:      totalTaps,
		Cutoff:      params.Bandwidth / float64(params.NumPhases),
		Attenuation: params.Attenuation,
		Gain:        float64(params.NumPhases),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to design prototype filter: %w", err)
	}

	return NewPolyphaseFilterBank(prototype, params)
}

// NewPolyphaseFilterBank decomposes an existing prototype into a bank.
// The prototype must have 2*SemiLength*NumPhases+1 taps.
func NewPolyphaseFilterBank(prototype []float64, params PolyphaseParams) (*PolyphaseFilterBank, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid polyphase parameters: %w", err)
	}

	tapsPerPhase := semiLengthSpan * params.SemiLength
	if want := tapsPerPhase*params.NumPhases + 1; len(prototype) != want {
		return nil, fmt.Errorf("%w: prototype has %d taps, want %d", ErrInvalidParams, len(prototype), want)
	}

	pfb := &PolyphaseFilterBank{
		Prototype:    prototype,
		NumPhases:    params.NumPhases,
		SemiLength:   params.SemiLength,
		TapsPerPhase: tapsPerPhase,
		TotalTaps:    len(prototype),
		InterpOrder:  params.InterpOrder,
		Bandwidth:    params.Bandwidth,
		Attenuation:  params.Attenuation,
	}
	pfb.Beta = mathutil.KaiserBeta(params.Attenuation)

	pfb.decompose()

	return pfb, nil
}

// protoRow returns phase row p (p may fall outside [0, NumPhases]) in
// oldest-to-newest order; taps beyond the prototype are zero.
func (pfb *PolyphaseFilterBank) protoRow(phase int) []float64 {
	row := make([]float64, pfb.TapsPerPhase)
	for tap := range pfb.TapsPerPhase {
		// Tap 0 pairs with the oldest sample, i.e. the largest delay
		idx := (pfb.TapsPerPhase-1-tap)*pfb.NumPhases + phase
		if idx >= 0 && idx < len(pfb.Prototype) {
			row[tap] = pfb.Prototype[idx]
		}
	}
	return row
}

// decompose distributes the prototype across phases and computes the
// interpolation polynomials between adjacent phases.
func (pfb *PolyphaseFilterBank) decompose() {
	numPhases := pfb.NumPhases

	pfb.rowsA = make([][]float64, numPhases+1)
	for phase := range numPhases + 1 {
		pfb.rowsA[phase] = pfb.protoRow(phase)
	}

	switch pfb.InterpOrder {
	case InterpNone:
		return

	case InterpLinear:
		// f(x) = f0 + b*x, b = f1 - f0
		pfb.rowsB = make([][]float64, numPhases)
		for phase := range numPhases {
			f0 := pfb.rowsA[phase]
			f1 := pfb.rowsA[phase+nextPhaseOffset]
			b := make([]float64, pfb.TapsPerPhase)
			for tap := range b {
				b[tap] = f1[tap] - f0[tap]
			}
			pfb.rowsB[phase] = b
		}

	case InterpCubic:
		// f(x) = f0 + b*x + c*x^2 + d*x^3 from centered finite differences
		pfb.rowsB = make([][]float64, numPhases)
		pfb.rowsC = make([][]float64, numPhases)
		pfb.rowsD = make([][]float64, numPhases)

		fm1 := pfb.protoRow(-prevPhaseLookback)
		for phase := range numPhases {
			f0 := pfb.rowsA[phase]
			f1 := pfb.rowsA[phase+nextPhaseOffset]

			var f2 []float64
			if phase+secondNextPhaseOffset <= numPhases {
				f2 = pfb.rowsA[phase+secondNextPhaseOffset]
			} else {
				f2 = pfb.protoRow(phase + secondNextPhaseOffset)
			}

			b := make([]float64, pfb.TapsPerPhase)
			c := make([]float64, pfb.TapsPerPhase)
			d := make([]float64, pfb.TapsPerPhase)
			for tap := range pfb.TapsPerPhase {
				c[tap] = cubicCenterCoeff*(f1[tap]+fm1[tap]) - f0[tap]
				d[tap] = cubicDCoeff * (f2[tap] - f1[tap] + fm1[tap] - f0[tap] - cubicCMultiplier*c[tap])
				b[tap] = f1[tap] - f0[tap] - d[tap] - c[tap]
			}

			pfb.rowsB[phase] = b
			pfb.rowsC[phase] = c
			pfb.rowsD[phase] = d
			fm1 = f0
		}
	}
}

// Phase returns the coefficient rows of a phase in [0, NumPhases].
// Index NumPhases is the boundary row and carries only A.
// The returned slices alias the bank and must not be modified.
func (pfb *PolyphaseFilterBank) Phase(phase int) PhaseCoeffs {
	pc := PhaseCoeffs{A: pfb.rowsA[phase]}
	if phase < pfb.NumPhases {
		if pfb.rowsB != nil {
			pc.B = pfb.rowsB[phase]
		}
		if pfb.rowsC != nil {
			pc.C = pfb.rowsC[phase]
			pc.D = pfb.rowsD[phase]
		}
	}
	return pc
}

// Taps returns a copy of the taps of phase, phase in [0, NumPhases).
func (pfb *PolyphaseFilterBank) Taps(phase int) ([]float64, error) {
	if phase < 0 || phase >= pfb.NumPhases {
		return nil, fmt.Errorf("%w: phase %d out of range [0, %d)", ErrInvalidParams, phase, pfb.NumPhases)
	}
	taps := make([]float64, pfb.TapsPerPhase)
	copy(taps, pfb.rowsA[phase])
	return taps, nil
}

// Locate splits a fractional timing offset mu in [0, 1) into a phase index
// and the sub-phase remainder in [0, 1). Values outside [0, 1) are wrapped.
// For InterpNone the phase is rounded and may equal NumPhases (boundary row)
// with a zero remainder.
func (pfb *PolyphaseFilterBank) Locate(mu float64) (phase int, frac float64) {
	mu -= math.Floor(mu)
	pos := mu * float64(pfb.NumPhases)

	if pfb.InterpOrder == InterpNone {
		return int(math.Round(pos)), 0
	}

	phase = int(pos)
	if phase >= pfb.NumPhases {
		// mu just below 1 can round up to NumPhases
		phase = pfb.NumPhases - 1
	}
	return phase, pos - float64(phase)
}

// InterpolatedTaps writes the taps for fractional timing offset mu into dst
// (grown if needed) and returns it. The taps between phases are evaluated
// with the bank's interpolation order.
func (pfb *PolyphaseFilterBank) InterpolatedTaps(dst []float64, mu float64) []float64 {
	if cap(dst) < pfb.TapsPerPhase {
		dst = make([]float64, pfb.TapsPerPhase)
	}
	dst = dst[:pfb.TapsPerPhase]

	phase, frac := pfb.Locate(mu)
	for tap := range dst {
		dst[tap] = pfb.Coefficient(tap, phase, frac)
	}
	return dst
}

// Coefficient returns the interpolated coefficient for a given tap and fractional phase.
//
// Parameters:
//   - tap: The tap index (0 to TapsPerPhase-1)
//   - phase: The integer phase index (0 to NumPhases-1, or NumPhases for the boundary row)
//   - frac: The fractional phase position [0, 1) for sub-phase interpolation
func (pfb *PolyphaseFilterBank) Coefficient(tap, phase int, frac float64) float64 {
	f0 := pfb.rowsA[phase][tap]
	if phase >= pfb.NumPhases {
		return f0
	}

	switch pfb.InterpOrder {
	case InterpLinear:
		return f0 + pfb.rowsB[phase][tap]*frac

	case InterpCubic:
		b := pfb.rowsB[phase][tap]
		c := pfb.rowsC[phase][tap]
		d := pfb.rowsD[phase][tap]
		return f0 + (b+(c+d*frac)*frac)*frac

	default:
		return f0
	}
}

// PhaseDCGain returns the sum of the taps of a phase in [0, NumPhases].
func (pfb *PolyphaseFilterBank) PhaseDCGain(phase int) float64 {
	var sum float64
	for _, c := range pfb.rowsA[phase] {
		sum += c
	}
	return sum
}

// ComputeFrequencyResponse evaluates the prototype at numPoints frequencies
// from 0 to the input Nyquist (0.5), with frequencies normalized to the input
// rate and magnitude normalized to unity DC gain.
func (pfb *PolyphaseFilterBank) ComputeFrequencyResponse(numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	// Input Nyquist is 1/NumPhases of the prototype band
	full := ComputeFrequencyResponse(pfb.Prototype, numPoints*pfb.NumPhases)
	response := FilterResponse{
		Frequencies: full.Frequencies[:numPoints],
		Magnitude:   full.Magnitude[:numPoints],
		Phase:       full.Phase[:numPoints],
	}

	phases := float64(pfb.NumPhases)
	f64.Scale(response.Frequencies, response.Frequencies, phases)
	f64.Scale(response.Magnitude, response.Magnitude, 1/phases)

	return response
}

// GetMemoryUsage returns the approximate memory usage in bytes.
func (pfb *PolyphaseFilterBank) GetMemoryUsage() int64 {
	count := len(pfb.Prototype)
	for _, rows := range [][][]float64{pfb.rowsA, pfb.rowsB, pfb.rowsC, pfb.rowsD} {
		for _, row := range rows {
			count += len(row)
		}
	}
	return int64(count) * bytesPerFloat64
}
