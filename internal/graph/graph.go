// Package graph assembles and runs the enhancer's signal path: a mono source
// fans out into a pristine dry branch and four filtered, gain-staged, panned
// band channels that sum into the wet branch; a smoothed dry/wet crossfade
// feeds the master output. The same builder serves realtime monitoring and
// offline rendering; the caller owns the sink and pulls blocks of any size.
package graph

import (
	"errors"
	"fmt"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/filter"
)

// BandConfig carries the per-band parameters a graph is built with. Pan is
// the effective pan, already width-scaled and clamped by the engine.
type BandConfig struct {
	ID   filter.BandID
	Pan  float64
	Gain float64
}

// Config is the immutable description a graph is built from. Equal configs
// produce topologically identical graphs.
type Config struct {
	SampleRate  float64
	Bands       []BandConfig
	HaasEnabled bool
	Bypass      bool
}

// bandChannel is one wired band: crossover cascade, gain stage, optional Haas
// micro-delay on the right copy, then the stereo panner.
type bandChannel struct {
	id    filter.BandID
	chain *filter.Chain
	gain  *gainNode
	haas  *delayNode // nil when the band runs without decorrelation
	pan   *panNode
}

// Graph is one wired signal path instance. It is not safe for concurrent use;
// the owning loop (control tick or renderer) drives it single-threaded while
// parameter targets arrive through the atomic smoother handoff.
type Graph struct {
	sampleRate  float64
	bands       []*bandChannel
	dryMix      *Smoother
	wetMix      *Smoother
	haasEnabled bool

	mono, bandL, bandR []float64
	wetL, wetR         []float64
}

// Build wires a complete graph from the config. Construction is deterministic
// and has no side effects beyond the returned instance.
func Build(cfg Config) (*Graph, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %v", cfg.SampleRate)
	}
	if len(cfg.Bands) == 0 {
		return nil, fmt.Errorf("no bands configured")
	}

	g := &Graph{
		sampleRate:  cfg.SampleRate,
		bands:       make([]*bandChannel, 0, len(cfg.Bands)),
		haasEnabled: cfg.HaasEnabled,
	}

	for _, bc := range cfg.Bands {
		chain, err := filter.NewBandChain(bc.ID, cfg.SampleRate)
		if errors.Is(err, filter.ErrBandOutOfRange) {
			// Nothing of this band survives at the target rate; the band
			// below it already extends to Nyquist.
			continue
		}
		if err != nil {
			return nil, err
		}

		ch := &bandChannel{
			id:    bc.ID,
			chain: chain,
			gain:  newGainNode(bc.Gain, cfg.SampleRate),
			pan:   newPanNode(bc.Pan, cfg.SampleRate),
		}

		// The low band stays mono-coherent: bass phase shifts collapse
		// badly on mono sum, so it never receives the Haas delay.
		if cfg.HaasEnabled && bc.ID != filter.BandLow {
			ch.haas = newDelayNode(HaasDelaySec, cfg.SampleRate)
		}

		g.bands = append(g.bands, ch)
	}

	if len(g.bands) == 0 {
		return nil, fmt.Errorf("no band representable at %v Hz", cfg.SampleRate)
	}

	dry, wet := mixTargets(cfg.Bypass)
	g.dryMix = NewSmoother(dry, mixSmoothingSec, cfg.SampleRate)
	g.wetMix = NewSmoother(wet, mixSmoothingSec, cfg.SampleRate)

	return g, nil
}

// mixTargets maps the bypass flag to dry/wet gains. Outside the bounded
// crossfade window the blend is never fractional.
func mixTargets(bypass bool) (dry, wet float64) {
	if bypass {
		return 1, 0
	}

	return 0, 1
}

// SampleRate returns the rate the graph was built for.
func (g *Graph) SampleRate() float64 {
	return g.sampleRate
}

// HaasEnabled reports whether the graph was wired with Haas delay nodes.
// Toggling Haas is a topology change and requires a rebuild.
func (g *Graph) HaasEnabled() bool {
	return g.haasEnabled
}

// SetPan publishes a new effective pan target for a band. Unknown ids are
// ignored; the engine validates identities at its boundary.
func (g *Graph) SetPan(id filter.BandID, pan float64) {
	for _, b := range g.bands {
		if b.id == id {
			b.pan.pan.SetTarget(clampPan(pan))
			return
		}
	}
}

// SetGain publishes a new gain target for a band.
func (g *Graph) SetGain(id filter.BandID, gain float64) {
	for _, b := range g.bands {
		if b.id == id {
			b.gain.gain.SetTarget(gain)
			return
		}
	}
}

// SetBypass retargets the dry/wet crossfade.
func (g *Graph) SetBypass(bypass bool) {
	dry, wet := mixTargets(bypass)
	g.dryMix.SetTarget(dry)
	g.wetMix.SetTarget(wet)
}

// Process pulls one block of the mono source through the graph and writes the
// stereo result into outL/outR. All three slices must have equal length.
func (g *Graph) Process(src, outL, outR []float64) {
	n := len(src)
	g.ensureScratch(n)

	wetL := g.wetL[:n]
	wetR := g.wetR[:n]
	zero(wetL)
	zero(wetR)

	for _, b := range g.bands {
		mono := g.mono[:n]
		copy(mono, src)

		b.chain.ProcessBlock(mono)
		b.gain.Process(mono)

		l := g.bandL[:n]
		r := g.bandR[:n]
		copy(l, mono)
		if b.haas != nil {
			b.haas.Process(r, mono)
		} else {
			copy(r, mono)
		}

		b.pan.Process(l, r)

		accumulate(wetL, l)
		accumulate(wetR, r)
	}

	for i := range src {
		dry := g.dryMix.Next() * src[i]
		wet := g.wetMix.Next()
		outL[i] = dry + wetL[i]*wet
		outR[i] = dry + wetR[i]*wet
	}
}

// Reset clears all filter and delay state. Parameter ramps keep their values.
func (g *Graph) Reset() {
	for _, b := range g.bands {
		b.chain.Reset()
		if b.haas != nil {
			b.haas.Reset()
		}
	}
}

func (g *Graph) ensureScratch(n int) {
	if cap(g.mono) >= n {
		return
	}

	g.mono = make([]float64, n)
	g.bandL = make([]float64, n)
	g.bandR = make([]float64, n)
	g.wetL = make([]float64, n)
	g.wetR = make([]float64, n)
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

func accumulate(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}
