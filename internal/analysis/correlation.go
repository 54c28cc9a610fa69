// Package analysis provides the phase-correlation monitor and the frequency
// telemetry snapshot the enhancer exposes to its host.
package analysis

import (
	"math"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/simdops"
)

const (
	// DefaultWindowSize is the analysis window over which the correlation is
	// computed, in samples of the most recent stereo output.
	DefaultWindowSize = 2048

	// Single-pole smoothing weights applied once per monitor tick. The 0.9
	// retain factor gives roughly a 10-tick time constant.
	smoothingRetain = 0.9
	smoothingInput  = 0.1
)

// CorrelationMonitor quantifies the phase relationship of the stereo output.
// It keeps a ring of the latest left/right samples and reports the normalized
// cross-correlation without mean subtraction: audio is treated as zero-mean.
//
// A correlation of 1 means mono-equivalent, 0 uncorrelated, -1 fully
// anti-correlated (mono-sum cancellation). Silence reports 1: an empty window
// is safe, not undefined.
type CorrelationMonitor struct {
	winL, winR []float64
	pos        int
	filled     int
	smoothed   float64
}

// NewCorrelationMonitor returns a monitor with the given window size.
// Non-positive sizes fall back to DefaultWindowSize.
func NewCorrelationMonitor(windowSize int) *CorrelationMonitor {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	return &CorrelationMonitor{
		winL:     make([]float64, windowSize),
		winR:     make([]float64, windowSize),
		smoothed: 1,
	}
}

// Push appends the latest stereo output samples to the analysis window.
// Both slices must have equal length.
func (m *CorrelationMonitor) Push(l, r []float64) {
	size := len(m.winL)
	for i := range l {
		m.winL[m.pos] = l[i]
		m.winR[m.pos] = r[i]
		m.pos++
		if m.pos >= size {
			m.pos = 0
		}
	}

	m.filled += len(l)
	if m.filled > size {
		m.filled = size
	}
}

// Instant computes the correlation over the current window contents.
// Sums are order-independent, so the ring needs no unrolling.
func (m *CorrelationMonitor) Instant() float64 {
	l := m.winL[:m.filled]
	r := m.winR[:m.filled]

	num := simdops.Dot(l, r)
	den := math.Sqrt(simdops.Energy(l)) * math.Sqrt(simdops.Energy(r))
	if den == 0 {
		return 1
	}

	return clampUnit(num / den)
}

// Tick folds the instantaneous correlation into the smoothed value once per
// monitor tick and returns the updated smoothed value.
func (m *CorrelationMonitor) Tick() float64 {
	m.smoothed = m.smoothed*smoothingRetain + m.Instant()*smoothingInput

	return m.smoothed
}

// Smoothed returns the smoothed correlation without advancing it.
func (m *CorrelationMonitor) Smoothed() float64 {
	return m.smoothed
}

// MonoCompatibility maps the smoothed correlation from [-1, 1] to a [0, 1]
// compatibility score.
func (m *CorrelationMonitor) MonoCompatibility() float64 {
	return (m.smoothed + 1) / 2
}

// Window copies the current window contents into dst slices for display.
// It returns the number of valid samples.
func (m *CorrelationMonitor) Window(dstL, dstR []float64) int {
	n := m.filled
	if len(dstL) < n {
		n = len(dstL)
	}
	if len(dstR) < n {
		n = len(dstR)
	}

	// Oldest-first unrolling of the ring.
	size := len(m.winL)
	start := (m.pos - m.filled + size) % size
	for i := 0; i < n; i++ {
		idx := (start + i) % size
		dstL[i] = m.winL[idx]
		dstR[i] = m.winR[idx]
	}

	return n
}

// Reset clears the window and restores the smoothed value to the safe state.
func (m *CorrelationMonitor) Reset() {
	for i := range m.winL {
		m.winL[i] = 0
		m.winR[i] = 0
	}
	m.pos = 0
	m.filled = 0
	m.smoothed = 1
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}

	return v
}
