// Package simdops wraps the SIMD kernels used by the analysis and render hot
// paths. Keeping the imports behind one package makes it easy to audit which
// loops are vectorized and to fall back to scalar code in one place if needed.
package simdops

import (
	"github.com/tphakala/simd/f64"
)

// Dot returns the dot product of a and b.
// Both slices must have equal length.
func Dot(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.DotProductUnsafe(a, b)
}

// Energy returns the sum of squares of a.
func Energy(a []float64) float64 {
	return Dot(a, a)
}

// Sum returns the sum of all elements of a.
func Sum(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.Sum(a)
}

// Scale writes a[i]*s into dst. dst must be at least as long as a.
func Scale(dst, a []float64, s float64) {
	if len(a) == 0 {
		return
	}
	f64.Scale(dst, a, s)
}

// Interleave2 interleaves two equal-length channels into dst:
// dst[0]=l[0], dst[1]=r[0], dst[2]=l[1], ...
// dst must hold len(l)+len(r) elements.
func Interleave2(dst, l, r []float64) {
	if len(l) == 0 {
		return
	}
	f64.Interleave2(dst, l, r)
}
