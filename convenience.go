package resampler

import (
	"fmt"

	"github.com/tphakala/go-iq-resampler/internal/simdops"
)

// NewSimple creates a resampler for rate with the default configuration.
func NewSimple(rate float64) (*Resampler, error) {
	config := DefaultConfig(rate)
	return New(&config)
}

// NewPreset creates a resampler for rate using a quality preset.
func NewPreset(rate float64, preset QualityPreset) (*Resampler, error) {
	config := PresetConfig(rate, preset)
	return New(&config)
}

// NewForSampleRates creates a resampler converting inputRate Hz to
// outputRate Hz with a quality preset.
func NewForSampleRates(inputRate, outputRate float64, preset QualityPreset) (*Resampler, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("%w: sample rates must be positive: input=%g, output=%g",
			ErrInvalidConfig, inputRate, outputRate)
	}
	return NewPreset(outputRate/inputRate, preset)
}

// ResampleIQ is a convenience function for one-shot resampling.
// It creates a resampler, processes the input, flushes, and returns the result.
func ResampleIQ(input []complex128, rate float64, preset QualityPreset) ([]complex128, error) {
	r, err := NewPreset(rate, preset)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	output := r.Process(input)
	return append(output, r.Flush()...), nil
}

// ResampleIQCompensated is like ResampleIQ but drops the outputs that lie
// before input time zero, so output i corresponds to input time i/rate.
func ResampleIQCompensated(input []complex128, rate float64, preset QualityPreset) ([]complex128, error) {
	r, err := NewPreset(rate, preset)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	output := r.Process(input)
	output = append(output, r.Flush()...)

	// First output at or after input time zero
	skip := 0
	for skip < len(output) && r.OutputTime(skip) < 0 {
		skip++
	}
	return output[skip:], nil
}

// InterleaveIQ converts complex samples to interleaved [I0, Q0, I1, Q1, ...].
func InterleaveIQ(x []complex128) []float64 {
	re, im := simdops.Split(x)
	out := make([]float64, len(x)*iqComponents)
	simdops.Interleave(out, re, im)
	return out
}

// DeinterleaveIQ converts interleaved [I0, Q0, I1, Q1, ...] to complex
// samples. A trailing odd value is ignored.
func DeinterleaveIQ(interleaved []float64) []complex128 {
	n := len(interleaved) / iqComponents
	out := make([]complex128, n)
	for i := range n {
		out[i] = complex(interleaved[i*iqComponents], interleaved[i*iqComponents+1])
	}
	return out
}

// JoinIQ combines separate I and Q channels into complex samples.
// The result has the length of the shorter channel.
func JoinIQ(i, q []float64) []complex128 {
	n := min(len(i), len(q))
	out := make([]complex128, n)
	for k := range n {
		out[k] = complex(i[k], q[k])
	}
	return out
}

// SplitIQ separates complex samples into I and Q channels.
func SplitIQ(x []complex128) (i, q []float64) {
	return simdops.Split(x)
}
