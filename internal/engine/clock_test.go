package engine

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullStep returns the 96-bit step step*2^64 + stepErr.
func fullStep(step, stepErr uint64) *big.Int {
	s := new(big.Int).Lsh(new(big.Int).SetUint64(step), stepErrBits)
	return s.Or(s, new(big.Int).SetUint64(stepErr))
}

// outputsAfter returns the number of outputs a fresh clock emits over n
// inputs: the count of i >= 0 with i*S < n*2^96.
func outputsAfter(step, stepErr uint64, n int64) int64 {
	num := new(big.Int).Lsh(big.NewInt(n), stepTotalBits)
	q, rem := new(big.Int).QuoRem(num, fullStep(step, stepErr), new(big.Int))
	if rem.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Int64()
}

// rateBounds returns floor(rate*n) and ceil(rate*n) computed exactly.
func rateBounds(rate float64, n int64) (lo, hi int64) {
	x := new(big.Rat).Mul(new(big.Rat).SetFloat64(rate), new(big.Rat).SetInt64(n))
	q, rem := new(big.Int).QuoRem(x.Num(), x.Denom(), new(big.Int))
	lo = q.Int64()
	if rem.Sign() != 0 {
		return lo, lo + 1
	}
	return lo, lo
}

// runClock drives a clock over n input periods the way AppendExecute does
// and returns the number of outputs.
func runClock(c *clock, n int) int64 {
	var outputs int64
	for range n {
		if !c.ready() {
			c.consume()
			continue
		}
		for c.ready() {
			outputs++
			c.advance()
		}
		c.consume()
	}
	return outputs
}

func TestStepForRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		step    uint64
		exact   bool
		wantErr bool
	}{
		{"unity", 1.0, phaseOne, true, false},
		{"double", 2.0, phaseOne / 2, true, false},
		{"half", 0.5, 2 * phaseOne, true, false},
		{"min_rate", MinRate, 1 << 52, true, false},
		{"max_rate", MaxRate, 1 << 12, true, false},
		{"point_nine", 0.9, uint64(math.Floor(phaseFracScale / 0.9)), false, false},
		{"third", 1.0 / 3.0, uint64(math.Floor(phaseFracScale * 3)), false, false},
		{"pi", math.Pi, uint64(math.Floor(phaseFracScale / math.Pi)), false, false},
		{"zero", 0, 0, false, true},
		{"negative", -1, 0, false, true},
		{"nan", math.NaN(), 0, false, true},
		{"inf", math.Inf(1), 0, false, true},
		{"too_small", MinRate / 2, 0, false, true},
		{"too_large", MaxRate * 2, 0, false, true},
	}

	one := new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), stepTotalBits))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, stepErr, err := stepForRate(tt.rate)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.step, step)
			if tt.exact {
				assert.Zero(t, stepErr)
			}

			// S is the smallest integer with S*rate >= 2^96
			r := new(big.Rat).SetFloat64(tt.rate)
			s := fullStep(step, stepErr)
			assert.GreaterOrEqual(t, new(big.Rat).Mul(new(big.Rat).SetInt(s), r).Cmp(one), 0)
			below := new(big.Int).Sub(s, big.NewInt(1))
			assert.Negative(t, new(big.Rat).Mul(new(big.Rat).SetInt(below), r).Cmp(one))
		})
	}
}

func TestClock_LongStreamOutputCount(t *testing.T) {
	tests := []struct {
		rate float64
		n    int64
	}{
		{17.25, 100_000_000},
		{3, 1_000_000_000},
		{0.9, 20_000_000_000},
		{1.0 / 3.0, 30_000_000_000},
		{math.Pi, 1 << 40},
		{48000.0 / 44100.0, 44100 * 3600 * 24},
		{MinRate, 1 << 50},
		{MaxRate, 1 << 30},
	}

	for _, tt := range tests {
		step, stepErr, err := stepForRate(tt.rate)
		require.NoError(t, err)

		got := outputsAfter(step, stepErr, tt.n)
		lo, hi := rateBounds(tt.rate, tt.n)
		assert.GreaterOrEqual(t, got, lo, "rate=%g n=%d", tt.rate, tt.n)
		assert.LessOrEqual(t, got, hi, "rate=%g n=%d", tt.rate, tt.n)
	}
}

func TestClock_LoopMatchesClosedForm(t *testing.T) {
	for _, rate := range []float64{0.9, 3, 17.25, 1.0 / 3.0, math.Pi, 0.01} {
		step, stepErr, err := stepForRate(rate)
		require.NoError(t, err)

		c := clock{step: step, stepErr: stepErr}
		var total int64
		for _, n := range []int{1, 999, 100_000} {
			total += runClock(&c, n)
		}
		assert.Equal(t, outputsAfter(step, stepErr, 101_000), total, "rate=%g", rate)
	}
}

func TestClock_ErrorWordCarries(t *testing.T) {
	c := clock{step: 1, stepErr: math.MaxUint64}

	c.advance()
	assert.Equal(t, uint64(1), c.at)
	assert.Equal(t, uint64(math.MaxUint64), c.atErr)

	c.advance()
	assert.Equal(t, uint64(3), c.at)
	assert.Equal(t, uint64(math.MaxUint64-1), c.atErr)

	c.reset()
	assert.Zero(t, c.at)
	assert.Zero(t, c.atErr)
}

func TestClock_Period(t *testing.T) {
	for _, rate := range []float64{0.9, 1, 2.5, math.Pi} {
		step, stepErr, err := stepForRate(rate)
		require.NoError(t, err)
		c := clock{step: step, stepErr: stepErr}
		assert.InDelta(t, 1/rate, c.period(), 1e-15, "rate=%g", rate)
	}
}
