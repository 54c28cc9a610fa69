package graph

import (
	"github.com/soporteaiwis-lab/morpho-stereo/internal/simdops"
)

// gainNode is a scalar multiply with a smoothed gain parameter.
type gainNode struct {
	gain *Smoother
}

func newGainNode(gain, sampleRate float64) *gainNode {
	return &gainNode{gain: NewSmoother(gain, gainSmoothingSec, sampleRate)}
}

// Process applies the gain in place. A settled ramp takes the vectorized path.
func (g *gainNode) Process(buf []float64) {
	if g.gain.Settled() {
		simdops.Scale(buf, buf, g.gain.Value())
		return
	}

	for i := range buf {
		buf[i] *= g.gain.Next()
	}
}

// panNode places a (possibly decorrelated) band signal in the stereo field
// with a linear pan law: the channel opposite the pan direction is attenuated,
// center leaves both channels at unity.
type panNode struct {
	pan *Smoother
}

func newPanNode(pan, sampleRate float64) *panNode {
	return &panNode{pan: NewSmoother(clampPan(pan), panSmoothingSec, sampleRate)}
}

// panGains converts a pan position in [-1, 1] to left/right channel gains.
func panGains(pan float64) (gl, gr float64) {
	gl, gr = 1, 1
	if pan > 0 {
		gl = 1 - pan
	} else if pan < 0 {
		gr = 1 + pan
	}

	return gl, gr
}

// Process scales the stereo pair in place according to the smoothed pan.
func (p *panNode) Process(l, r []float64) {
	if p.pan.Settled() {
		gl, gr := panGains(p.pan.Value())
		simdops.Scale(l, l, gl)
		simdops.Scale(r, r, gr)

		return
	}

	for i := range l {
		gl, gr := panGains(p.pan.Next())
		l[i] *= gl
		r[i] *= gr
	}
}

// delayNode is a circular delay line with a smoothed, fractionally
// interpolated read position. It implements the Haas micro-delay applied to
// the right copy of a band signal.
type delayNode struct {
	buffer   []float64
	writePos int
	delay    *Smoother // delay in samples
}

func newDelayNode(delaySec, sampleRate float64) *delayNode {
	samples := delaySec * sampleRate
	size := int(samples) + delayHeadroomSamples

	d := &delayNode{
		buffer: make([]float64, size),
		delay:  NewSmoother(0, delaySmoothingSec, sampleRate),
	}
	// Fresh graphs render their configured delay from the first sample, so
	// offline exports do not depend on ramp history.
	d.delay.Snap(samples)

	return d
}

// Process writes src through the delay line into dst. src and dst may alias.
func (d *delayNode) Process(dst, src []float64) {
	size := len(d.buffer)
	for i, x := range src {
		d.buffer[d.writePos] = x
		d.writePos++
		if d.writePos >= size {
			d.writePos = 0
		}

		dst[i] = d.readFractional(d.delay.Next())
	}
}

// readFractional reads the line at a non-integer delay behind the write head
// using linear interpolation between the two neighboring samples.
func (d *delayNode) readFractional(delay float64) float64 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	maxDelay := float64(size - 2)
	if delay > maxDelay {
		delay = maxDelay
	}

	whole := int(delay)
	frac := delay - float64(whole)

	// writePos already advanced past the newest sample.
	p0 := (d.writePos - 1 - whole + 2*size) % size
	p1 := (p0 - 1 + size) % size

	return d.buffer[p0]*(1-frac) + d.buffer[p1]*frac
}

// Reset clears the delay line.
func (d *delayNode) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func clampPan(pan float64) float64 {
	if pan > 1 {
		return 1
	}
	if pan < -1 {
		return -1
	}

	return pan
}
