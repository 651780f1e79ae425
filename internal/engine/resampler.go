// Package engine implements the streaming arbitrary-rate polyphase
// resampler for complex baseband samples.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-iq-resampler/internal/filter"
	"github.com/tphakala/go-iq-resampler/internal/simdops"
)

// ErrInvalidRate indicates a resampling rate outside [MinRate, MaxRate].
var ErrInvalidRate = errors.New("invalid resampling rate")

// Resampler converts a complex sample stream from one rate to another by an
// arbitrary real ratio using a shared polyphase filter bank.
//
// Timing is kept in a fixed-point accumulator with 32 fractional bits:
//
//	at = skip*(1<<32) + τ*(1<<32)
//
// τ in [0, 1) is the position of the next output instant within the input
// period opened by the next sample. skip counts whole input periods to
// consume before that one and is non-zero only when rate < 1. A 64-bit
// error word below the accumulator carries the rest of the step.
//
// Per input sample:
//
//	push x
//	if at >= 1: at -= 1                       // no output this period
//	else: for at < 1 { emit y(τ); at += step } ; at -= 1
//
// The phase index is floor(τ*NumPhases) and the remaining fraction drives
// coefficient interpolation between adjacent phases.
//
// A Resampler is not safe for concurrent use. Independent instances may
// share one bank and run in parallel.
type Resampler struct {
	bank *filter.PolyphaseFilterBank
	rows []filter.PhaseCoeffs // NumPhases+1 rows, the last is the boundary row

	rate       float64
	clk        clock
	semiLength int

	hist *history

	numPhases uint64
	order     filter.InterpOrder
	closed    bool

	// Statistics
	samplesIn  int64
	samplesOut int64
}

// NewResampler creates a resampler for the given output/input rate over bank.
// The bank is not copied and must not be modified afterwards.
func NewResampler(rate float64, bank *filter.PolyphaseFilterBank) (*Resampler, error) {
	if bank == nil {
		return nil, fmt.Errorf("%w: nil filter bank", filter.ErrInvalidParams)
	}

	step, stepErr, err := stepForRate(rate)
	if err != nil {
		return nil, err
	}

	rows := make([]filter.PhaseCoeffs, bank.NumPhases+1)
	for phase := range rows {
		rows[phase] = bank.Phase(phase)
	}

	return &Resampler{
		bank:      bank,
		rows:      rows,
		rate:       rate,
		clk:        clock{step: step, stepErr: stepErr},
		semiLength: bank.SemiLength,
		hist:       newHistory(bank.TapsPerPhase),
		numPhases:  uint64(bank.NumPhases),
		order:      bank.InterpOrder,
	}, nil
}

// Execute consumes one input sample and returns the 0 to MaxOutputPerSample
// output samples it produces, in a newly allocated slice.
//
// Execute panics if called after Close.
func (r *Resampler) Execute(x complex128) []complex128 {
	return r.AppendExecute(nil, x)
}

// AppendExecute is like Execute but appends the outputs to dst and returns
// the extended slice. With cap(dst)-len(dst) >= MaxOutputPerSample it does
// not allocate.
func (r *Resampler) AppendExecute(dst []complex128, x complex128) []complex128 {
	if r.closed {
		panic("engine: Execute called on closed Resampler")
	}

	r.hist.push(x)
	r.samplesIn++

	if !r.clk.ready() {
		r.clk.consume()
		return dst
	}

	for r.clk.ready() {
		dst = append(dst, r.output())
		r.samplesOut++
		r.clk.advance()
	}
	r.clk.consume()

	return dst
}

// Process runs Execute over a block of input samples and returns all
// outputs in order.
func (r *Resampler) Process(input []complex128) []complex128 {
	return r.AppendProcess(make([]complex128, 0, r.OutputCapacity(len(input))), input)
}

// AppendProcess is like Process but appends to dst.
func (r *Resampler) AppendProcess(dst, input []complex128) []complex128 {
	for _, x := range input {
		dst = r.AppendExecute(dst, x)
	}
	return dst
}

// Flush pushes SemiLength zero samples so the outputs still held back by the
// filter delay are emitted, and returns them.
func (r *Resampler) Flush() []complex128 {
	out := make([]complex128, 0, r.OutputCapacity(r.semiLength))
	for range r.semiLength {
		out = r.AppendExecute(out, 0)
	}
	return out
}

// output evaluates the filter at the current fractional offset τ.
func (r *Resampler) output() complex128 {
	re, im := r.hist.window()

	// τ*NumPhases in Q32.32: integer part is the phase, the rest interpolates
	prod := (r.clk.at & phaseFracMask) * r.numPhases

	switch r.order {
	case filter.InterpNone:
		// Rounding may land on the boundary row
		return simdops.DotSplit(r.rows[(prod+phaseHalf)>>phaseFracBits].A, re, im)

	case filter.InterpCubic:
		pc := r.rows[prod>>phaseFracBits]
		x := float64(prod&phaseFracMask) / phaseFracScale
		return simdops.CubicDotSplit(pc.A, pc.B, pc.C, pc.D, re, im, x)

	default:
		pc := r.rows[prod>>phaseFracBits]
		x := float64(prod&phaseFracMask) / phaseFracScale
		return simdops.LinearDotSplit(pc.A, pc.B, re, im, x)
	}
}

// Reset clears the history and timing so the next call behaves like the
// first call on a fresh instance.
func (r *Resampler) Reset() {
	if r.closed {
		return
	}
	r.hist.reset()
	r.clk.reset()
	r.samplesIn = 0
	r.samplesOut = 0
}

// Close releases the history and the reference to the bank.
// Calling Close more than once is a no-op.
func (r *Resampler) Close() {
	r.closed = true
	r.bank = nil
	r.rows = nil
	r.hist = nil
}

// Closed reports whether Close has been called.
func (r *Resampler) Closed() bool {
	return r.closed
}

// Clone returns a resampler with the same rate and bank and fresh state.
func (r *Resampler) Clone() *Resampler {
	if r.closed {
		panic("engine: Clone called on closed Resampler")
	}
	return &Resampler{
		bank:      r.bank,
		rows:      r.rows,
		rate:       r.rate,
		clk:        clock{step: r.clk.step, stepErr: r.clk.stepErr},
		semiLength: r.semiLength,
		hist:       newHistory(r.bank.TapsPerPhase),
		numPhases:  r.numPhases,
		order:      r.order,
	}
}

// Bank returns the shared filter bank.
func (r *Resampler) Bank() *filter.PolyphaseFilterBank {
	return r.bank
}

// GetRatio returns the output/input rate.
func (r *Resampler) GetRatio() float64 {
	return r.rate
}

// Step returns the effective input periods between outputs as used by the
// fixed-point accumulator.
func (r *Resampler) Step() float64 {
	return r.clk.period()
}

// Timing returns τ in [0, 1), the fractional position of the next output
// instant.
func (r *Resampler) Timing() float64 {
	return float64(r.clk.at&phaseFracMask) / phaseFracScale
}

// PendingSkips returns the whole input periods to consume before the next
// output instant.
func (r *Resampler) PendingSkips() int {
	return int(r.clk.at >> phaseFracBits)
}

// Delay returns the group delay in input samples.
func (r *Resampler) Delay() int {
	return r.semiLength
}

// OutputTime returns the input-time position of output sample i counted
// from the first output after construction or Reset.
func (r *Resampler) OutputTime(i int) float64 {
	return float64(i)*r.Step() - float64(r.semiLength)
}

// MaxOutputPerSample returns the most outputs one Execute call can produce.
func (r *Resampler) MaxOutputPerSample() int {
	return int(math.Ceil(r.rate)) + extraOutputSlot
}

// OutputCapacity returns a capacity sufficient for the outputs of n inputs.
func (r *Resampler) OutputCapacity(n int) int {
	return int(math.Ceil(r.rate*float64(n))) + extraOutputSlot
}

// GetMemoryUsage returns the approximate memory held by the instance,
// excluding the shared bank.
func (r *Resampler) GetMemoryUsage() int64 {
	if r.hist == nil {
		return 0
	}
	return r.hist.memoryUsage()
}

// GetStatistics returns processing statistics.
func (r *Resampler) GetStatistics() map[string]int64 {
	return map[string]int64{
		"samplesIn":  r.samplesIn,
		"samplesOut": r.samplesOut,
	}
}
