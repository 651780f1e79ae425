package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-iq-resampler/internal/signal"
	"github.com/tphakala/go-iq-resampler/internal/testutil"
)

const testNFFT = 64

func TestWindow_StringAndParse(t *testing.T) {
	for _, w := range []Window{Hann, Hamming, Blackman, Rectangular} {
		parsed, err := ParseWindow(w.String())
		require.NoError(t, err)
		assert.Equal(t, w, parsed)
	}

	parsed, err := ParseWindow("HANN")
	require.NoError(t, err)
	assert.Equal(t, Hann, parsed)

	_, err = ParseWindow("kaiser")
	require.ErrorIs(t, err, ErrUnknownWindow)

	assert.Equal(t, "Window(42)", Window(42).String())
}

func TestNewEstimator_Errors(t *testing.T) {
	_, err := NewEstimator(0, Hann)
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = NewEstimator(-8, Hann)
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = NewEstimator(testNFFT, Window(99))
	require.ErrorIs(t, err, ErrUnknownWindow)

	_, err = Compute(nil, 0, Hann)
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestCompute_BinCenteredTone(t *testing.T) {
	tests := []struct {
		name string
		bin  int
	}{
		{"dc", 0},
		{"positive", 5},
		{"negative", -3},
		{"near_nyquist", 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq := float64(tt.bin) / testNFFT
			x := signal.Sum(testNFFT, signal.Tone{Frequency: freq, Amplitude: 1})

			X, err := Compute(x, testNFFT, Rectangular)
			require.NoError(t, err)
			require.Len(t, X, testNFFT)

			k := (tt.bin + testNFFT) % testNFFT
			assert.InDelta(t, testNFFT, cmplx.Abs(X[k]), 1e-9)
			for i, v := range X {
				if i != k {
					assert.InDelta(t, 0, cmplx.Abs(v), 1e-9, "bin %d", i)
				}
			}
			assert.InDelta(t, freq, PeakFrequency(X), 1e-12)
		})
	}
}

func TestCompute_WindowedPeak(t *testing.T) {
	x := signal.Sum(128, signal.Tone{Frequency: 0.07, Amplitude: 1.4}, signal.Tone{Frequency: 0.04, Amplitude: 1})

	for _, w := range []Window{Hann, Hamming, Blackman} {
		X, err := Compute(x, 512, w)
		require.NoError(t, err)
		assert.InDelta(t, 0.07, PeakFrequency(X), 1.0/512, "window %s", w)
	}
}

func TestCompute_ZeroPadsShortInput(t *testing.T) {
	x := []complex128{1, 1, 1, 1}

	X, err := Compute(x, testNFFT, Rectangular)
	require.NoError(t, err)
	require.Len(t, X, testNFFT)
	testutil.AssertComplexInDelta(t, 4, X[0], 1e-12)
}

func TestCompute_TruncatesLongInput(t *testing.T) {
	x := signal.Sum(200, signal.Tone{Frequency: 0.1, Amplitude: 1})

	full, err := Compute(x, testNFFT, Hann)
	require.NoError(t, err)
	head, err := Compute(x[:testNFFT], testNFFT, Hann)
	require.NoError(t, err)

	testutil.AssertComplexSliceInDelta(t, head, full, 1e-12)
}

func TestCompute_EmptyInput(t *testing.T) {
	X, err := Compute(nil, 8, Hann)
	require.NoError(t, err)
	require.Len(t, X, 8)
	for _, v := range X {
		assert.Zero(t, v)
	}
}

func TestEstimator_Reuse(t *testing.T) {
	e, err := NewEstimator(testNFFT, Hann)
	require.NoError(t, err)
	assert.Equal(t, testNFFT, e.Len())

	a := signal.Sum(40, signal.Tone{Frequency: 0.2, Amplitude: 1})
	b := signal.Sum(64, signal.Tone{Frequency: -0.1, Amplitude: 1})

	buf := make([]complex128, testNFFT)
	X, err := e.Compute(buf, a)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, PeakFrequency(X), 1.0/testNFFT)

	Y, err := e.Compute(buf, b)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, PeakFrequency(Y), 1.0/testNFFT)

	// Window for the shorter input is not reused for the longer one
	fresh, err := Compute(b, testNFFT, Hann)
	require.NoError(t, err)
	testutil.AssertComplexSliceInDelta(t, fresh, Y, 1e-12)
}

func TestShift(t *testing.T) {
	assert.Equal(t, []complex128{2, 3, 0, 1}, Shift([]complex128{0, 1, 2, 3}))
	assert.Equal(t, []complex128{3, 4, 0, 1, 2}, Shift([]complex128{0, 1, 2, 3, 4}))
	assert.Empty(t, Shift(nil))
}

func TestPowerDB(t *testing.T) {
	X := make([]complex128, testNFFT)
	X[0] = testNFFT
	X[1] = testNFFT / 10

	db := PowerDB(X)
	require.Len(t, db, testNFFT)
	assert.InDelta(t, 0.0, db[0], testutil.DBTolerance)
	assert.InDelta(t, -20.0, db[1], testutil.DBTolerance)
	assert.False(t, math.IsInf(db[2], -1))
	assert.Less(t, db[2], -200.0)
}

func TestFrequencies(t *testing.T) {
	assert.InDeltaSlice(t, []float64{-0.5, -0.25, 0, 0.25}, Frequencies(4, 1), 1e-12)
	assert.InDeltaSlice(t, []float64{-0.45, -0.225, 0, 0.225}, Frequencies(4, 0.9), 1e-12)
}

func TestBinFrequency(t *testing.T) {
	assert.InDelta(t, 0.0, BinFrequency(0, 8), 0)
	assert.InDelta(t, 0.375, BinFrequency(3, 8), 0)
	assert.InDelta(t, -0.5, BinFrequency(4, 8), 0)
	assert.InDelta(t, -0.125, BinFrequency(7, 8), 0)
}

func BenchmarkEstimatorCompute(b *testing.B) {
	e, err := NewEstimator(512, Hann)
	require.NoError(b, err)
	x := signal.Sum(512, signal.Tone{Frequency: 0.1, Amplitude: 1})
	dst := make([]complex128, 512)

	for b.Loop() {
		_, _ = e.Compute(dst, x)
	}
}
