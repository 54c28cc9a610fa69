// Package testutil provides reusable helpers for the enhancer's tests:
// deterministic test signals and slice-level assertions.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Sine generates n samples of a unit-amplitude sine at freq Hz.
func Sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = math.Sin(w * float64(i))
	}

	return out
}

// Impulse generates n samples with a single unit impulse at index 0.
func Impulse(n int) []float64 {
	out := make([]float64, n)
	if n > 0 {
		out[0] = 1
	}

	return out
}

// RMS returns the root-mean-square level of s, 0 for an empty slice.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}

	var sum float64
	for _, v := range s {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(s)))
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}

	return true
}

// AssertAllInRange verifies that all elements are within [minVal, maxVal].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}

	return true
}

// AssertSlicesInDelta verifies element-wise equality within tolerance.
func AssertSlicesInDelta(t *testing.T, want, got []float64, tolerance float64) bool {
	t.Helper()
	if !assert.Len(t, got, len(want), "slice length mismatch") {
		return false
	}
	for i := range want {
		if !assert.InDelta(t, want[i], got[i], tolerance, "mismatch at index %d", i) {
			return false
		}
	}

	return true
}
