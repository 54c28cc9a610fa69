package graph

import (
	"math"
	"sync/atomic"
)

// Smoother is a one-pole parameter ramp. The control loop publishes targets
// with SetTarget; the processing path consumes values sample by sample. The
// target is handed off through an atomic, so a concurrent processing pass
// never observes a torn write and setters never block.
type Smoother struct {
	target atomic.Uint64 // math.Float64bits of the target value

	value float64
	coeff float64
}

// NewSmoother returns a smoother at the given initial value with a ramp time
// constant in seconds. A non-positive time constant snaps instantly.
func NewSmoother(initial, timeConstant, sampleRate float64) *Smoother {
	s := &Smoother{value: initial}
	if timeConstant > 0 && sampleRate > 0 {
		s.coeff = math.Exp(-1 / (timeConstant * sampleRate))
	}
	s.target.Store(math.Float64bits(initial))

	return s
}

// SetTarget publishes a new target value for the ramp.
func (s *Smoother) SetTarget(v float64) {
	s.target.Store(math.Float64bits(v))
}

// Snap jumps directly to v with no ramp.
func (s *Smoother) Snap(v float64) {
	s.value = v
	s.target.Store(math.Float64bits(v))
}

// Target returns the published target.
func (s *Smoother) Target() float64 {
	return math.Float64frombits(s.target.Load())
}

// Value returns the current smoothed value without advancing the ramp.
func (s *Smoother) Value() float64 {
	return s.value
}

// Next advances the ramp one sample and returns the smoothed value.
func (s *Smoother) Next() float64 {
	t := s.Target()
	s.value = t + (s.value-t)*s.coeff

	return s.value
}

// Settled reports whether the ramp has effectively reached its target.
func (s *Smoother) Settled() bool {
	return math.Abs(s.value-s.Target()) < settledEpsilon
}

// settledEpsilon is the residual below which a ramp counts as finished.
const settledEpsilon = 1e-6
