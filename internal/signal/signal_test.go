package signal

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-iq-resampler/internal/testutil"
)

func TestAt(t *testing.T) {
	tone := Tone{Frequency: 0.25, Amplitude: 2, Phase: 0}

	testutil.AssertComplexInDelta(t, 2, At(0, tone), testutil.DefaultTolerance)
	testutil.AssertComplexInDelta(t, 2i, At(1, tone), testutil.DefaultTolerance)
	testutil.AssertComplexInDelta(t, -2, At(2, tone), testutil.DefaultTolerance)

	shifted := Tone{Frequency: 0, Amplitude: 1, Phase: math.Pi / 2}
	testutil.AssertComplexInDelta(t, 1i, At(123.4, shifted), testutil.DefaultTolerance)
}

func TestSum(t *testing.T) {
	tones := []Tone{
		{Frequency: 0.04, Amplitude: 1.0},
		{Frequency: 0.07, Amplitude: 1.4},
	}

	x := Sum(128, tones...)
	require.Len(t, x, 128)
	testutil.AssertComplexFinite(t, x)

	testutil.AssertComplexInDelta(t, 2.4, x[0], testutil.DefaultTolerance)
	for i, v := range x {
		assert.LessOrEqual(t, cmplx.Abs(v), 2.4+1e-12, "sample %d", i)
		testutil.AssertComplexInDelta(t, At(float64(i), tones...), v, testutil.DefaultTolerance)
	}
}

func TestSum_Empty(t *testing.T) {
	assert.Empty(t, Sum(0, Tone{Amplitude: 1}))
	assert.Empty(t, Sum(-3, Tone{Amplitude: 1}))
	assert.Equal(t, []complex128{0, 0}, Sum(2))
}

func TestImpulse(t *testing.T) {
	x := Impulse(5, 2)
	assert.Equal(t, []complex128{0, 0, 1, 0, 0}, x)
	assert.Equal(t, []complex128{0, 0}, Impulse(2, 7))
}

func TestPower(t *testing.T) {
	x := Sum(1000, Tone{Frequency: 0.1, Amplitude: 3})
	assert.InDelta(t, 9.0, Power(x), 1e-9)
	assert.InDelta(t, 0.0, Power(nil), 0)
}
