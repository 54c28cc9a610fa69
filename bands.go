package morpho

import (
	"github.com/soporteaiwis-lab/morpho-stereo/internal/filter"
)

// BandID identifies one of the four fixed frequency bands.
type BandID = filter.BandID

// The four band identities, low to high.
const (
	BandLow     = filter.BandLow
	BandMidLow  = filter.BandMidLow
	BandMidHigh = filter.BandMidHigh
	BandHigh    = filter.BandHigh
)

// Crossover edge frequencies in Hz.
const (
	CrossoverLowHz  = filter.CrossoverLowHz
	CrossoverMidHz  = filter.CrossoverMidHz
	CrossoverHighHz = filter.CrossoverHighHz
)

// BandSpec describes one band of the stereo image. Identity, count and edge
// frequencies are fixed; only Pan and Gain mutate at runtime, exclusively
// through the engine's update entry points. Color is carried for the host's
// display layer and has no effect on processing.
type BandSpec struct {
	ID         BandID
	LowEdgeHz  float64 // 0 means the band extends to DC
	HighEdgeHz float64 // 0 means the band extends to Nyquist
	Pan        float64 // base pan in [-1, 1], negative = left
	Gain       float64
	Color      string
}

// DefaultBands returns the stock four-band image: bass locked to center for
// mono coherence, the mid bands mirrored left/right, highs centered.
func DefaultBands() []BandSpec {
	return []BandSpec{
		{ID: BandLow, HighEdgeHz: CrossoverLowHz, Pan: 0, Gain: 1, Color: "#d95f4a"},
		{ID: BandMidLow, LowEdgeHz: CrossoverLowHz, HighEdgeHz: CrossoverMidHz, Pan: -0.5, Gain: 1, Color: "#d9c34a"},
		{ID: BandMidHigh, LowEdgeHz: CrossoverMidHz, HighEdgeHz: CrossoverHighHz, Pan: 0.5, Gain: 1, Color: "#6ad94a"},
		{ID: BandHigh, LowEdgeHz: CrossoverHighHz, Pan: 0, Gain: 1, Color: "#4a90d9"},
	}
}

// EffectivePan scales a base pan by the global width and clamps the result
// to the valid pan range.
func EffectivePan(basePan, width float64) float64 {
	p := basePan * width
	if p > 1 {
		return 1
	}
	if p < -1 {
		return -1
	}

	return p
}
