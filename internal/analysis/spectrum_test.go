package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/testutil"
)

// TestSpectrum_PeakAtToneBin verifies a bin-aligned tone peaks in its bin.
func TestSpectrum_PeakAtToneBin(t *testing.T) {
	a := NewSpectrumAnalyzer(DefaultSpectrumSize)
	require.Equal(t, DefaultSpectrumSize, a.Size())

	const bin = 64
	freq := testSampleRate * bin / DefaultSpectrumSize
	sig := testutil.Sine(freq, testSampleRate, DefaultSpectrumSize)

	mags := a.Magnitudes(sig)
	require.Len(t, mags, DefaultSpectrumSize/2+1)

	peak := 0
	for i, v := range mags {
		if v > mags[peak] {
			peak = i
		}
	}
	assert.Equal(t, bin, peak)

	// Hann-windowed unit sine peaks near 0.5 of full scale.
	assert.InDelta(t, 0.5, mags[peak], 0.05)
	testutil.AssertNoNaNOrInf(t, mags)
}

// TestSpectrum_SizeRounding verifies rounding up to a power of two and the
// default fallback.
func TestSpectrum_SizeRounding(t *testing.T) {
	assert.Equal(t, 1024, NewSpectrumAnalyzer(1000).Size())
	assert.Equal(t, DefaultSpectrumSize, NewSpectrumAnalyzer(0).Size())
}

// TestSpectrum_ShortInputZeroPadded verifies short input is accepted.
func TestSpectrum_ShortInputZeroPadded(t *testing.T) {
	a := NewSpectrumAnalyzer(256)
	mags := a.Magnitudes(make([]float64, 100))

	require.Len(t, mags, 129)
	for _, v := range mags {
		assert.Zero(t, v)
	}
}
