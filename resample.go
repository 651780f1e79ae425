package resampler

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-iq-resampler/internal/engine"
	"github.com/tphakala/go-iq-resampler/internal/filter"
	"github.com/tphakala/go-iq-resampler/internal/simdops"
)

// FilterBank is the immutable polyphase filter bank shared by resamplers.
type FilterBank = filter.PolyphaseFilterBank

// InterpolationPolicy selects how filter taps are derived for a timing
// offset that falls between two phases of the bank.
type InterpolationPolicy int

const (
	// InterpLinear interpolates linearly between the two nearest phases.
	InterpLinear InterpolationPolicy = iota

	// InterpNearest uses the nearest phase without interpolation.
	InterpNearest

	// InterpCubic fits a cubic through the four nearest phases.
	InterpCubic
)

// String returns the policy name.
func (p InterpolationPolicy) String() string {
	switch p {
	case InterpLinear:
		return "linear"
	case InterpNearest:
		return "nearest"
	case InterpCubic:
		return "cubic"
	default:
		return fmt.Sprintf("InterpolationPolicy(%d)", int(p))
	}
}

// ParseInterpolation returns the policy named "nearest", "linear" or "cubic".
func ParseInterpolation(name string) (InterpolationPolicy, error) {
	for _, p := range []InterpolationPolicy{InterpLinear, InterpNearest, InterpCubic} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown interpolation %q", ErrInvalidConfig, name)
}

func (p InterpolationPolicy) order() (filter.InterpOrder, bool) {
	switch p {
	case InterpLinear:
		return filter.InterpLinear, true
	case InterpNearest:
		return filter.InterpNone, true
	case InterpCubic:
		return filter.InterpCubic, true
	default:
		return 0, false
	}
}

// Config holds resampler configuration.
type Config struct {
	// Rate is the output/input sample rate ratio.
	Rate float64

	// SemiLength is the filter semi-length in input samples. It is also the
	// group delay of the resampler.
	SemiLength int

	// Bandwidth is the filter cutoff normalized to the input rate, in (0, 0.5].
	// For Rate < 1 it should not exceed Rate/2 to avoid aliasing.
	Bandwidth float64

	// StopbandAttenuationDB is the sidelobe suppression level in dB, negative
	// (for example -60).
	StopbandAttenuationDB float64

	// NumPhases is the number of filters in the bank (timing resolution).
	NumPhases int

	// Interpolation selects how taps between phases are derived.
	Interpolation InterpolationPolicy
}

// Common errors returned by the resampler.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid resampler configuration")

	// ErrClosed indicates an operation on a closed resampler.
	ErrClosed = errors.New("resampler closed")
)

// DefaultConfig returns a configuration for rate with semi-length 13,
// bandwidth 0.5, -60 dB sidelobes, 32 phases and linear interpolation.
func DefaultConfig(rate float64) Config {
	return Config{
		Rate:                  rate,
		SemiLength:            DefaultSemiLength,
		Bandwidth:             DefaultBandwidth,
		StopbandAttenuationDB: DefaultStopbandAttenuationDB,
		NumPhases:             DefaultNumPhases,
		Interpolation:         InterpLinear,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !isFinite(c.Rate) || c.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive and finite, got %g", ErrInvalidConfig, c.Rate)
	}

	if c.Rate < MinRate || c.Rate > MaxRate {
		return fmt.Errorf("%w: rate %g out of range (%g to %g)", ErrInvalidConfig, c.Rate, MinRate, float64(MaxRate))
	}

	if c.SemiLength < 1 {
		return fmt.Errorf("%w: semi-length must be at least 1, got %d", ErrInvalidConfig, c.SemiLength)
	}

	if c.NumPhases < 1 || c.NumPhases > MaxNumPhases {
		return fmt.Errorf("%w: number of phases must be 1-%d, got %d", ErrInvalidConfig, MaxNumPhases, c.NumPhases)
	}

	if c.SemiLength > (maxPrototypeTaps-1)/(semiLengthSpan*c.NumPhases) {
		return fmt.Errorf("%w: filter of %d semi-length and %d phases is too long", ErrInvalidConfig, c.SemiLength, c.NumPhases)
	}

	if !isFinite(c.Bandwidth) || c.Bandwidth <= 0 || c.Bandwidth > maxBandwidth {
		return fmt.Errorf("%w: bandwidth must be in (0, 0.5], got %g", ErrInvalidConfig, c.Bandwidth)
	}

	if !isFinite(c.StopbandAttenuationDB) || c.StopbandAttenuationDB >= 0 {
		return fmt.Errorf("%w: stopband attenuation must be negative dB, got %g", ErrInvalidConfig, c.StopbandAttenuationDB)
	}

	if _, ok := c.Interpolation.order(); !ok {
		return fmt.Errorf("%w: invalid interpolation policy %d", ErrInvalidConfig, int(c.Interpolation))
	}

	return nil
}

func (c *Config) bankParams() filter.PolyphaseParams {
	order, _ := c.Interpolation.order()
	return filter.PolyphaseParams{
		SemiLength:  c.SemiLength,
		NumPhases:   c.NumPhases,
		Bandwidth:   c.Bandwidth,
		Attenuation: -c.StopbandAttenuationDB,
		InterpOrder: order,
	}
}

// DesignFilterBank designs the polyphase filter bank described by config.
// The rate field is ignored; the bank may be shared with NewWithBank.
func DesignFilterBank(config *Config) (*FilterBank, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	bank, err := filter.DesignPolyphaseFilterBank(config.bankParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return bank, nil
}

// Resampler resamples a stream of complex samples by an arbitrary rate.
//
// Outputs are produced one input sample at a time. Output sample i
// corresponds to input time i/Rate - SemiLength.
//
// A Resampler is not safe for concurrent use; use Clone to obtain
// an independent instance sharing the same filter bank.
type Resampler struct {
	eng    *engine.Resampler
	config Config
}

// New creates a resampler with the specified configuration.
func New(config *Config) (*Resampler, error) {
	bank, err := DesignFilterBank(config)
	if err != nil {
		return nil, err
	}
	return newWithBank(config.Rate, bank, *config)
}

// Create creates a resampler with linear interpolation from the classic
// parameter list: rate, filter semi-length, bandwidth, sidelobe
// suppression level (dB, negative) and number of filters in the bank.
func Create(rate float64, semiLength int, bandwidth, sidelobeDB float64, numPhases int) (*Resampler, error) {
	return New(&Config{
		Rate:                  rate,
		SemiLength:            semiLength,
		Bandwidth:             bandwidth,
		StopbandAttenuationDB: sidelobeDB,
		NumPhases:             numPhases,
		Interpolation:         InterpLinear,
	})
}

// NewWithBank creates a resampler for rate over an existing bank.
func NewWithBank(rate float64, bank *FilterBank) (*Resampler, error) {
	if bank == nil {
		return nil, fmt.Errorf("%w: filter bank is nil", ErrInvalidConfig)
	}
	config := Config{
		Rate:                  rate,
		SemiLength:            bank.SemiLength,
		Bandwidth:             bank.Bandwidth,
		StopbandAttenuationDB: -bank.Attenuation,
		NumPhases:             bank.NumPhases,
		Interpolation:         policyFor(bank.InterpOrder),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newWithBank(rate, bank, config)
}

func newWithBank(rate float64, bank *FilterBank, config Config) (*Resampler, error) {
	eng, err := engine.NewResampler(rate, bank)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Resampler{eng: eng, config: config}, nil
}

func policyFor(order filter.InterpOrder) InterpolationPolicy {
	switch order {
	case filter.InterpNone:
		return InterpNearest
	case filter.InterpCubic:
		return InterpCubic
	default:
		return InterpLinear
	}
}

// Execute consumes one input sample and returns between 0 and
// MaxOutputPerSample output samples in a new slice.
//
// Execute panics if called after Close.
func (r *Resampler) Execute(x complex128) []complex128 {
	return r.eng.Execute(x)
}

// AppendExecute is like Execute but appends the outputs to dst. It does not
// allocate when dst has room for MaxOutputPerSample more samples.
func (r *Resampler) AppendExecute(dst []complex128, x complex128) []complex128 {
	return r.eng.AppendExecute(dst, x)
}

// Process executes every sample of input in order and returns all outputs.
func (r *Resampler) Process(input []complex128) []complex128 {
	return r.eng.Process(input)
}

// AppendProcess is like Process but appends to dst.
func (r *Resampler) AppendProcess(dst, input []complex128) []complex128 {
	return r.eng.AppendProcess(dst, input)
}

// Flush feeds SemiLength zeros and returns the outputs still held back by
// the filter delay. The resampler remains usable afterwards.
func (r *Resampler) Flush() []complex128 {
	return r.eng.Flush()
}

// Reset clears the sample history and timing state. The filter bank is kept.
func (r *Resampler) Reset() {
	r.eng.Reset()
}

// Close releases the resampler's resources. Execute panics afterwards.
func (r *Resampler) Close() {
	r.eng.Close()
}

// Clone returns an independent resampler with fresh state that shares this
// resampler's filter bank.
func (r *Resampler) Clone() (*Resampler, error) {
	if r.eng.Closed() {
		return nil, ErrClosed
	}
	return &Resampler{eng: r.eng.Clone(), config: r.config}, nil
}

// Config returns the configuration the resampler was built with.
func (r *Resampler) Config() Config {
	return r.config
}

// Bank returns the shared filter bank, or nil after Close.
func (r *Resampler) Bank() *FilterBank {
	return r.eng.Bank()
}

// GetRatio returns the resampling ratio (output/input).
func (r *Resampler) GetRatio() float64 {
	return r.eng.GetRatio()
}

// GetLatency returns the group delay in input samples.
func (r *Resampler) GetLatency() int {
	return r.config.SemiLength
}

// Delay is an alias of GetLatency.
func (r *Resampler) Delay() int {
	return r.config.SemiLength
}

// Timing returns the fractional timing offset τ in [0, 1).
func (r *Resampler) Timing() float64 {
	return r.eng.Timing()
}

// OutputTime returns the input-time position of output sample i,
// approximately i/Rate - SemiLength.
func (r *Resampler) OutputTime(i int) float64 {
	return r.eng.OutputTime(i)
}

// MaxOutputPerSample returns the most outputs a single Execute can return,
// ceil(Rate)+1.
func (r *Resampler) MaxOutputPerSample() int {
	return r.eng.MaxOutputPerSample()
}

// OutputCapacity returns a buffer capacity sufficient for the outputs of n
// input samples.
func (r *Resampler) OutputCapacity(n int) int {
	return r.eng.OutputCapacity(n)
}

// GetStatistics returns counts of samples consumed and produced since
// creation or Reset.
func (r *Resampler) GetStatistics() map[string]int64 {
	return r.eng.GetStatistics()
}

// Info returns information about the resampler implementation.
type Info struct {
	// Algorithm describes the resampling algorithm in use.
	Algorithm string

	// FilterLength is the number of prototype filter taps.
	FilterLength int

	// TapsPerPhase is the number of taps in each phase.
	TapsPerPhase int

	// Phases is the number of polyphase filter phases.
	Phases int

	// Interpolation is the coefficient interpolation policy.
	Interpolation InterpolationPolicy

	// Latency is the group delay in input samples.
	Latency int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// SIMDEnabled indicates if SIMD optimizations are active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}

// GetInfo returns information about a resampler.
func GetInfo(r *Resampler) Info {
	info := Info{
		Algorithm:     "polyphase-arbitrary",
		Interpolation: r.config.Interpolation,
		Latency:       r.config.SemiLength,
		Phases:        r.config.NumPhases,
		TapsPerPhase:  semiLengthSpan * r.config.SemiLength,
		FilterLength:  semiLengthSpan*r.config.SemiLength*r.config.NumPhases + 1,
	}

	if bank := r.eng.Bank(); bank != nil {
		info.MemoryUsage = bank.GetMemoryUsage() + r.eng.GetMemoryUsage()
	}

	if simd := simdops.Info(); simd != "" {
		info.SIMDEnabled = true
		info.SIMDType = simd
	}

	return info
}
