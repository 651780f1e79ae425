package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-iq-resampler/internal/testutil"
)

const (
	testSemiLength13 = 13
	testNumPhases32  = 32
	testNumPhases64  = 64
	testBandwidth    = 0.5

	coeffTolerance = 1e-10
)

func testParams(order InterpOrder) PolyphaseParams {
	return PolyphaseParams{
		SemiLength:  testSemiLength13,
		NumPhases:   testNumPhases32,
		Bandwidth:   testBandwidth,
		Attenuation: testAttenuation60,
		InterpOrder: order,
	}
}

func mustBank(t testing.TB, params PolyphaseParams) *PolyphaseFilterBank {
	t.Helper()
	pfb, err := DesignPolyphaseFilterBank(params)
	require.NoError(t, err)
	return pfb
}

func TestPolyphaseParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*PolyphaseParams)
		wantErr bool
	}{
		{"valid", func(*PolyphaseParams) {}, false},
		{"single_phase", func(p *PolyphaseParams) { p.NumPhases = 1 }, false},
		{"max_phases", func(p *PolyphaseParams) { p.NumPhases = maxNumPhases }, false},
		{"zero_semi_length", func(p *PolyphaseParams) { p.SemiLength = 0 }, true},
		{"zero_phases", func(p *PolyphaseParams) { p.NumPhases = 0 }, true},
		{"too_many_phases", func(p *PolyphaseParams) { p.NumPhases = maxNumPhases + 1 }, true},
		{"zero_bandwidth", func(p *PolyphaseParams) { p.Bandwidth = 0 }, true},
		{"bandwidth_above_half", func(p *PolyphaseParams) { p.Bandwidth = 0.51 }, true},
		{"nan_bandwidth", func(p *PolyphaseParams) { p.Bandwidth = math.NaN() }, true},
		{"zero_attenuation", func(p *PolyphaseParams) { p.Attenuation = 0 }, true},
		{"invalid_order", func(p *PolyphaseParams) { p.InterpOrder = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams(InterpLinear)
			tt.modify(&params)

			err := params.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParams)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDesignPolyphaseFilterBank_Structure(t *testing.T) {
	pfb := mustBank(t, testParams(InterpLinear))

	assert.Equal(t, testNumPhases32, pfb.NumPhases)
	assert.Equal(t, testSemiLength13, pfb.SemiLength)
	assert.Equal(t, 2*testSemiLength13, pfb.TapsPerPhase)
	assert.Equal(t, 2*testSemiLength13*testNumPhases32+1, pfb.TotalTaps)
	assert.Len(t, pfb.Prototype, pfb.TotalTaps)
	assert.Positive(t, pfb.Beta)

	testutil.AssertSymmetric(t, pfb.Prototype, coeffTolerance)
	testutil.AssertCenterIsMax(t, pfb.Prototype)
	testutil.AssertNoNaNOrInf(t, pfb.Prototype)
	testutil.AssertDCGain(t, pfb.Prototype, float64(testNumPhases32), 1e-9)
}

func TestPolyphaseFilterBank_TapsSliceThePrototype(t *testing.T) {
	pfb := mustBank(t, testParams(InterpNone))

	for phase := range pfb.NumPhases {
		taps, err := pfb.Taps(phase)
		require.NoError(t, err)
		require.Len(t, taps, pfb.TapsPerPhase)

		// Newest tap is the first prototype coefficient at this offset
		for k, c := range taps {
			want := pfb.Prototype[(pfb.TapsPerPhase-1-k)*pfb.NumPhases+phase]
			assert.InDelta(t, want, c, 0, "phase %d tap %d", phase, k)
		}
	}
}

func TestPolyphaseFilterBank_TapsOutOfRange(t *testing.T) {
	pfb := mustBank(t, testParams(InterpNone))

	for _, phase := range []int{-1, testNumPhases32, testNumPhases32 + 5} {
		_, err := pfb.Taps(phase)
		require.ErrorIs(t, err, ErrInvalidParams, "phase %d", phase)
	}
}

func TestPolyphaseFilterBank_TapsReturnsCopy(t *testing.T) {
	pfb := mustBank(t, testParams(InterpNone))

	taps, err := pfb.Taps(3)
	require.NoError(t, err)
	original := taps[0]
	taps[0] = 1e6

	again, err := pfb.Taps(3)
	require.NoError(t, err)
	assert.InDelta(t, original, again[0], 0)
}

func TestPolyphaseFilterBank_BoundaryRow(t *testing.T) {
	pfb := mustBank(t, testParams(InterpLinear))

	boundary := pfb.Phase(pfb.NumPhases)
	first := pfb.Phase(0)

	assert.Nil(t, boundary.B, "boundary row carries no polynomial")
	require.Len(t, boundary.A, pfb.TapsPerPhase)

	// Phase 0 delayed by one input sample
	assert.InDelta(t, pfb.Prototype[pfb.TotalTaps-1], boundary.A[0], 0)
	for k := 1; k < pfb.TapsPerPhase; k++ {
		assert.InDelta(t, first.A[k-1], boundary.A[k], 0, "tap %d", k)
	}
}

func TestPolyphaseFilterBank_PhaseDCGain(t *testing.T) {
	for _, bw := range []float64{0.25, 0.4, 0.5} {
		params := testParams(InterpLinear)
		params.Bandwidth = bw
		pfb := mustBank(t, params)

		for phase := 0; phase <= pfb.NumPhases; phase++ {
			assert.InDelta(t, 1.0, pfb.PhaseDCGain(phase), 0.02,
				"bw=%.2f phase=%d", bw, phase)
		}
	}
}

func TestPolyphaseFilterBank_InterpolationEndpoints(t *testing.T) {
	for _, order := range []InterpOrder{InterpLinear, InterpCubic} {
		t.Run(order.String(), func(t *testing.T) {
			pfb := mustBank(t, testParams(order))

			for phase := range pfb.NumPhases {
				next := pfb.Phase(phase + 1).A
				for tap := range pfb.TapsPerPhase {
					assert.InDelta(t, pfb.Phase(phase).A[tap], pfb.Coefficient(tap, phase, 0), coeffTolerance)
					assert.InDelta(t, next[tap], pfb.Coefficient(tap, phase, 1), 1e-12)
				}
			}
		})
	}
}

// A bank with twice the phases samples the same continuous response at
// the midpoints between the coarser bank's phases.
func TestPolyphaseFilterBank_InterpolationAccuracy(t *testing.T) {
	fine := mustBank(t, PolyphaseParams{
		SemiLength:  testSemiLength13,
		NumPhases:   testNumPhases64,
		Bandwidth:   testBandwidth,
		Attenuation: testAttenuation60,
		InterpOrder: InterpNone,
	})

	maxErr := func(order InterpOrder) float64 {
		coarse := mustBank(t, testParams(order))
		var worst float64
		var taps []float64
		for j := range testNumPhases32 {
			mu := float64(2*j+1) / testNumPhases64
			taps = coarse.InterpolatedTaps(taps, mu)
			ref, err := fine.Taps(2*j + 1)
			require.NoError(t, err)
			for k := range taps {
				worst = math.Max(worst, math.Abs(taps[k]-ref[k]))
			}
		}
		return worst
	}

	linearErr := maxErr(InterpLinear)
	cubicErr := maxErr(InterpCubic)

	assert.Less(t, linearErr, 5e-3, "linear interpolation error")
	assert.Less(t, cubicErr, 1e-4, "cubic interpolation error")
	assert.Less(t, cubicErr, linearErr)
}

func TestPolyphaseFilterBank_Locate(t *testing.T) {
	linear := mustBank(t, testParams(InterpLinear))
	nearest := mustBank(t, testParams(InterpNone))

	tests := []struct {
		name      string
		pfb       *PolyphaseFilterBank
		mu        float64
		wantPhase int
		wantFrac  float64
	}{
		{"linear_zero", linear, 0, 0, 0},
		{"linear_half", linear, 0.5, 16, 0},
		{"linear_between", linear, 0.25 + 0.5/32, 8, 0.5},
		{"linear_wraps", linear, 1.25, 8, 0},
		{"linear_negative_wraps", linear, -0.75, 8, 0},
		{"nearest_rounds_down", nearest, 8.4 / 32, 8, 0},
		{"nearest_rounds_up", nearest, 8.6 / 32, 9, 0},
		{"nearest_boundary", nearest, 31.8 / 32, 32, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, frac := tt.pfb.Locate(tt.mu)
			assert.Equal(t, tt.wantPhase, phase)
			assert.InDelta(t, tt.wantFrac, frac, 1e-9)
		})
	}

	t.Run("linear_just_below_one", func(t *testing.T) {
		phase, frac := linear.Locate(math.Nextafter(1, 0))
		assert.Equal(t, testNumPhases32-1, phase)
		testutil.AssertInRange(t, frac, 0, 1)
	})
}

func TestPolyphaseFilterBank_InterpolatedTapsReusesBuffer(t *testing.T) {
	pfb := mustBank(t, testParams(InterpCubic))

	buf := make([]float64, 0, 64)
	taps := pfb.InterpolatedTaps(buf, 0.3)
	require.Len(t, taps, pfb.TapsPerPhase)
	assert.Same(t, &buf[:1][0], &taps[0])

	testutil.AssertDCGain(t, taps, 1.0, 0.02)
}

func TestNewPolyphaseFilterBank_PrototypeLength(t *testing.T) {
	_, err := NewPolyphaseFilterBank(make([]float64, 10), testParams(InterpLinear))
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestPolyphaseFilterBank_FrequencyResponse(t *testing.T) {
	params := testParams(InterpLinear)
	params.Bandwidth = 0.25
	pfb := mustBank(t, params)

	response := pfb.ComputeFrequencyResponse(testNumPoints512)
	require.Len(t, response.Magnitude, testNumPoints512)

	assert.InDelta(t, 1.0, response.Magnitude[0], 1e-9)
	for i, freq := range response.Frequencies {
		magDB := MagnitudeDB(response.Magnitude[i])
		switch {
		case freq <= 0.1:
			assert.LessOrEqual(t, math.Abs(magDB), passbandRippleDB, "passband at %f", freq)
		case freq >= 0.35:
			assert.LessOrEqual(t, magDB, -50.0, "stopband at %f", freq)
		}
	}
}

func TestPolyphaseFilterBank_MemoryUsage(t *testing.T) {
	none := mustBank(t, testParams(InterpNone)).GetMemoryUsage()
	linear := mustBank(t, testParams(InterpLinear)).GetMemoryUsage()
	cubic := mustBank(t, testParams(InterpCubic)).GetMemoryUsage()

	assert.Positive(t, none)
	assert.Greater(t, linear, none)
	assert.Greater(t, cubic, linear)
}

func TestInterpOrder_String(t *testing.T) {
	assert.Equal(t, "nearest", InterpNone.String())
	assert.Equal(t, "linear", InterpLinear.String())
	assert.Equal(t, "cubic", InterpCubic.String())
	assert.Equal(t, "InterpOrder(7)", InterpOrder(7).String())
}

func BenchmarkDesignPolyphaseFilterBank(b *testing.B) {
	params := testParams(InterpCubic)
	for b.Loop() {
		_, _ = DesignPolyphaseFilterBank(params)
	}
}

func BenchmarkPolyphaseInterpolatedTaps(b *testing.B) {
	pfb := mustBank(b, testParams(InterpCubic))
	taps := make([]float64, pfb.TapsPerPhase)
	for b.Loop() {
		taps = pfb.InterpolatedTaps(taps, 0.37)
	}
}
