// Package testutil provides assertion helpers shared by the resampler tests.
//
// Every helper reports through testify and returns whether the check
// passed, so callers can stop early with require-style guards.
package testutil

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	DBTolerance      = 0.01
)

// AssertSymmetric verifies s[i] == s[n-1-i] within tolerance.
func AssertSymmetric(t testing.TB, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if math.Abs(s[i]-s[j]) > tolerance {
			return assert.Fail(t, fmt.Sprintf("not symmetric: s[%d]=%g, s[%d]=%g", i, s[i], j, s[j]), msgAndArgs...)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that every element is finite.
func AssertNoNaNOrInf(t testing.TB, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, fmt.Sprintf("s[%d] = %v is not finite", i, v), msgAndArgs...)
		}
	}
	return true
}

// AssertComplexFinite verifies that no element has a NaN or Inf component.
func AssertComplexFinite(t testing.TB, s []complex128, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return assert.Fail(t, fmt.Sprintf("s[%d] = %v is not finite", i, v), msgAndArgs...)
		}
	}
	return true
}

// AssertDCGain verifies that the coefficients sum to want.
func AssertDCGain(t testing.TB, coeffs []float64, want, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	if math.Abs(sum-want) > tolerance {
		return assert.Fail(t, fmt.Sprintf("DC gain %g, want %g ± %g", sum, want, tolerance), msgAndArgs...)
	}
	return true
}

// AssertCenterIsMax verifies that no element exceeds the middle one.
func AssertCenterIsMax(t testing.TB, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice", msgAndArgs...)
	}
	mid := len(s) / 2
	for i, v := range s {
		if v > s[mid] {
			return assert.Fail(t, fmt.Sprintf("s[%d]=%g exceeds center s[%d]=%g", i, v, mid, s[mid]), msgAndArgs...)
		}
	}
	return true
}

// AssertRelativeError verifies |actual-expected|/|expected| <= tolerance,
// falling back to an absolute check when expected is zero.
func AssertRelativeError(t testing.TB, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	diff := math.Abs(actual - expected)
	if expected != 0 {
		diff /= math.Abs(expected)
	}
	if diff > tolerance {
		return assert.Fail(t, fmt.Sprintf("got %g, want %g (relative error %.3e > %.3e)", actual, expected, diff, tolerance), msgAndArgs...)
	}
	return true
}

// AssertInRange verifies minVal <= value <= maxVal.
func AssertInRange(t testing.TB, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, fmt.Sprintf("%g outside [%g, %g]", value, minVal, maxVal), msgAndArgs...)
	}
	return true
}

// AssertComplexInDelta verifies |expected - actual| <= delta.
func AssertComplexInDelta(t testing.TB, expected, actual complex128, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if diff := cmplx.Abs(expected - actual); diff > delta {
		return assert.Fail(t, fmt.Sprintf("|%v - %v| = %.3e exceeds %.3e", expected, actual, diff, delta), msgAndArgs...)
	}
	return true
}

// AssertComplexSliceInDelta verifies two complex slices have equal length
// and match element-wise within delta.
func AssertComplexSliceInDelta(t testing.TB, expected, actual []complex128, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if len(expected) != len(actual) {
		return assert.Fail(t, fmt.Sprintf("length %d, want %d", len(actual), len(expected)), msgAndArgs...)
	}
	for i := range expected {
		if diff := cmplx.Abs(expected[i] - actual[i]); diff > delta {
			return assert.Fail(t, fmt.Sprintf("index %d: |%v - %v| = %.3e exceeds %.3e", i, expected[i], actual[i], diff, delta), msgAndArgs...)
		}
	}
	return true
}

// MaxComplexError returns max |a[i] - b[i]| over the common prefix.
func MaxComplexError(a, b []complex128) float64 {
	var worst float64
	for i := range min(len(a), len(b)) {
		worst = math.Max(worst, cmplx.Abs(a[i]-b[i]))
	}
	return worst
}
