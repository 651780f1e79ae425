package engine

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// clock is the timing accumulator. at holds the position of the next output
// instant in Q32.32 input periods relative to the newest input; atErr
// extends it by 64 more fractional bits so the step 1/rate is carried with
// 96 fractional bits and rounding does not accumulate over long streams.
type clock struct {
	at    uint64
	atErr uint64

	step    uint64
	stepErr uint64
}

// ready reports whether the next output instant falls in the current
// input period.
func (c *clock) ready() bool {
	return c.at < phaseOne
}

// advance moves to the next output instant.
func (c *clock) advance() {
	var carry uint64
	c.atErr, carry = bits.Add64(c.atErr, c.stepErr, 0)
	c.at += c.step + carry
}

// consume moves past the current input period.
func (c *clock) consume() {
	c.at -= phaseOne
}

func (c *clock) reset() {
	c.at = 0
	c.atErr = 0
}

// period returns the step in input periods.
func (c *clock) period() float64 {
	return float64(c.step)/phaseFracScale + float64(c.stepErr)/math.Ldexp(1, stepTotalBits)
}

// stepForRate returns ceil(2^96 / rate) split into its Q32.32 part and the
// 64-bit error word. Rounding up keeps the output count over N inputs at or
// below ceil(rate*N); the 96-bit resolution keeps it at or above
// floor(rate*N) while rate*N stays below 2^43.
func stepForRate(rate float64) (step, stepErr uint64, err error) {
	if math.IsNaN(rate) || rate < MinRate || rate > MaxRate {
		return 0, 0, fmt.Errorf("%w: %g not in [%g, %g]", ErrInvalidRate, rate, MinRate, float64(MaxRate))
	}

	// rate = mant * 2^(exp-53) exactly, so 2^96/rate = 2^(96+53-exp) / mant
	frac, exp := math.Frexp(rate)
	mant := new(big.Int).SetUint64(uint64(math.Ldexp(frac, float64MantBits)))
	num := new(big.Int).Lsh(big.NewInt(1), uint(stepTotalBits+float64MantBits-exp))

	q, rem := new(big.Int).QuoRem(num, mant, new(big.Int))
	if rem.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}

	stepErr = new(big.Int).And(q, new(big.Int).SetUint64(math.MaxUint64)).Uint64()
	step = new(big.Int).Rsh(q, stepErrBits).Uint64()
	return step, stepErr, nil
}
