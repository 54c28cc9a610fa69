package morpho

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/analysis"
	"github.com/soporteaiwis-lab/morpho-stereo/internal/graph"
)

// Engine is the spatial enhancement engine. All state is owned by the control
// loop entry points below and guarded by one mutex; the processing paths only
// ever see immutable snapshots or atomic smoother targets, never a partially
// updated state.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	sampleRate int
	source     []float64 // mono source, replaced wholesale on Load

	bands    []BandSpec
	width    float64
	haas     bool
	bypass   bool
	monoSafe bool

	phase    PlaybackPhase
	position int // playback position in frames
	onEnded  func()

	// live is the current graph instance; fading is the previous instance
	// crossfading out after a topology change.
	live    *graph.Graph
	fading  *graph.Graph
	fadePos int
	fadeLen int

	monitor  *analysis.CorrelationMonitor
	spectrum *analysis.SpectrumAnalyzer

	safety    safetyController
	now       func() time.Time
	exporting bool

	tickL, tickR []float64
	oldL, oldR   []float64
}

// New creates an engine with the given configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = DefaultTickRate
	}

	return &Engine{
		cfg:      cfg,
		bands:    DefaultBands(),
		width:    DefaultWidth,
		monoSafe: cfg.MonoSafe,
		monitor:  analysis.NewCorrelationMonitor(cfg.WindowSize),
		spectrum: analysis.NewSpectrumAnalyzer(cfg.WindowSize),
		now:      time.Now,
	}, nil
}

// Load installs a decoded PCM source. Multichannel input is downmixed to
// mono; the enhancer synthesizes its stereo image from a mono source. Any
// active playback session is torn down.
func (e *Engine) Load(sampleRate int, channels [][]float64) error {
	if sampleRate <= 0 || len(channels) == 0 || len(channels[0]) == 0 {
		return fmt.Errorf("%w: empty or malformed source buffer", ErrNoBuffer)
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel length mismatch", ErrNoBuffer)
		}
	}

	mono := downmix(channels)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.phase = PhaseLoading
	e.teardownLocked()
	e.sampleRate = sampleRate
	e.source = mono
	e.phase = PhaseIdle

	return nil
}

// downmix averages all channels into one mono buffer.
func downmix(channels [][]float64) []float64 {
	if len(channels) == 1 {
		out := make([]float64, len(channels[0]))
		copy(out, channels[0])

		return out
	}

	frames := len(channels[0])
	out := make([]float64, frames)
	scale := 1 / float64(len(channels))
	for _, ch := range channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}

	return out
}

// Play starts (or restarts) the realtime monitoring session from the current
// position. A non-nil bands argument replaces the per-band pan/gain values
// first; onEnded, if non-nil, fires once when playback reaches the end of the
// source.
func (e *Engine) Play(bands []BandSpec, onEnded func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return ErrNoBuffer
	}

	for _, b := range bands {
		e.applyBandLocked(b.ID, clampPan(b.Pan), b.Gain, true)
	}

	g, err := graph.Build(e.snapshotLocked())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRenderContext, err)
	}

	e.live = g
	e.fading = nil
	e.phase = PhasePlaying
	e.onEnded = onEnded

	return nil
}

// Pause suspends playback at the current position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhasePlaying {
		e.phase = PhasePaused
	}
}

// Stop tears down the playback session and rewinds to the start. The engine
// stays loaded and reusable.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked()
}

func (e *Engine) teardownLocked() {
	e.live = nil
	e.fading = nil
	e.fadePos, e.fadeLen = 0, 0
	e.position = 0
	e.onEnded = nil
	e.monitor.Reset()
	if e.phase == PhasePlaying || e.phase == PhasePaused {
		e.phase = PhaseIdle
	}
}

// Seek moves the playback position, clamped to the source duration.
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return
	}

	pos := int(seconds * float64(e.sampleRate))
	if pos < 0 {
		pos = 0
	}
	if pos > len(e.source) {
		pos = len(e.source)
	}
	e.position = pos
}

// SetHaas toggles the Haas widening delay. During playback this is a
// topology change: the live graph is rebuilt and the old instance crossfades
// out instead of being hard-spliced.
func (e *Engine) SetHaas(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.setHaasLocked(enabled)
}

func (e *Engine) setHaasLocked(enabled bool) error {
	e.haas = enabled
	if e.live == nil || e.live.HaasEnabled() == enabled {
		return nil
	}

	g, err := graph.Build(e.snapshotLocked())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRenderContext, err)
	}

	e.fading = e.live
	e.live = g
	e.fadeLen = int(topologyFadeSec * float64(e.sampleRate))
	if e.fadeLen < 1 {
		e.fadeLen = 1
	}
	e.fadePos = 0

	return nil
}

// SetBypass toggles the dry/wet substitution. The blend crossfades over a
// bounded window and is never fractional at rest.
func (e *Engine) SetBypass(bypass bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bypass = bypass
	if e.live != nil {
		e.live.SetBypass(bypass)
	}
	if e.fading != nil {
		e.fading.SetBypass(bypass)
	}
}

// SetWidth scales all band pans identically. Values are clamped to
// [0, WidthMax]; no error is ever returned for out-of-range input.
func (e *Engine) SetWidth(width float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.setWidthLocked(width)
}

func (e *Engine) setWidthLocked(width float64) {
	e.width = clampWidth(width)
	e.retargetPansLocked()
}

func (e *Engine) retargetPansLocked() {
	if e.live == nil {
		return
	}
	for _, b := range e.bands {
		e.live.SetPan(b.ID, EffectivePan(b.Pan, e.width))
	}
}

// SetBandPan repositions one band. Out-of-range pans are clamped, never
// rejected; unknown band ids are ignored.
func (e *Engine) SetBandPan(id BandID, pan float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.applyBandLocked(id, clampPan(pan), 0, false)
}

// SetBandGain adjusts one band's gain stage. The engine imposes no gain
// range; unknown band ids are ignored.
func (e *Engine) SetBandGain(id BandID, gain float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.bands {
		if e.bands[i].ID == id {
			e.bands[i].Gain = gain
			if e.live != nil {
				e.live.SetGain(id, gain)
			}

			return
		}
	}
}

// applyBandLocked updates a band's pan (and gain when withGain is set) and
// publishes the new targets to the live graph.
func (e *Engine) applyBandLocked(id BandID, pan, gain float64, withGain bool) {
	for i := range e.bands {
		if e.bands[i].ID != id {
			continue
		}

		e.bands[i].Pan = pan
		if withGain {
			e.bands[i].Gain = gain
		}
		if e.live != nil {
			e.live.SetPan(id, EffectivePan(pan, e.width))
			if withGain {
				e.live.SetGain(id, gain)
			}
		}

		return
	}
}

// SetMonoSafe toggles the automatic correction policy.
func (e *Engine) SetMonoSafe(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.monoSafe = enabled
}

// snapshotLocked captures an immutable graph config from the current state.
func (e *Engine) snapshotLocked() graph.Config {
	cfg := graph.Config{
		SampleRate:  float64(e.sampleRate),
		HaasEnabled: e.haas,
		Bypass:      e.bypass,
	}
	for _, b := range e.bands {
		cfg.Bands = append(cfg.Bands, graph.BandConfig{
			ID:   b.ID,
			Pan:  EffectivePan(b.Pan, e.width),
			Gain: b.Gain,
		})
	}

	return cfg
}

// Tick advances the control loop once: it pulls the next audio chunk through
// the live graph, feeds the correlation monitor, advances the playback
// position, and runs the safety controller. Hosts call it at the configured
// tick rate; Run drives it from a timer.
func (e *Engine) Tick() {
	e.mu.Lock()

	if e.phase != PhasePlaying || e.live == nil {
		e.mu.Unlock()
		return
	}

	frames := e.sampleRate / e.cfg.TickRate
	if frames < 1 {
		frames = 1
	}
	if remaining := len(e.source) - e.position; frames > remaining {
		frames = remaining
	}

	var ended bool
	var endedFn func()
	if frames > 0 {
		src := e.source[e.position : e.position+frames]
		l, r := e.processChunkLocked(src)
		e.monitor.Push(l, r)
		e.position += frames
	}
	if e.position >= len(e.source) {
		ended = true
		endedFn = e.onEnded
		e.teardownLocked()
	}

	corr := e.monitor.Tick()
	e.safety.step(e, corr)

	e.mu.Unlock()

	if ended && endedFn != nil {
		endedFn()
	}
}

// processChunkLocked runs one chunk through the live graph, blending in the
// fading instance while a topology crossfade is active.
func (e *Engine) processChunkLocked(src []float64) (l, r []float64) {
	n := len(src)
	e.ensureTickBuffers(n)
	l = e.tickL[:n]
	r = e.tickR[:n]

	e.live.Process(src, l, r)

	if e.fading != nil {
		oldL := e.oldL[:n]
		oldR := e.oldR[:n]
		e.fading.Process(src, oldL, oldR)

		for i := 0; i < n; i++ {
			w := float64(e.fadePos+i) / float64(e.fadeLen)
			if w > 1 {
				w = 1
			}
			l[i] = l[i]*w + oldL[i]*(1-w)
			r[i] = r[i]*w + oldR[i]*(1-w)
		}

		e.fadePos += n
		if e.fadePos >= e.fadeLen {
			e.fading = nil
			e.fadePos, e.fadeLen = 0, 0
		}
	}

	return l, r
}

func (e *Engine) ensureTickBuffers(n int) {
	if cap(e.tickL) >= n {
		return
	}
	e.tickL = make([]float64, n)
	e.tickR = make([]float64, n)
	e.oldL = make([]float64, n)
	e.oldR = make([]float64, n)
}

// Run drives Tick from a timer until ctx is cancelled. It is a convenience
// for hosts without their own scheduling loop.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	interval := time.Second / time.Duration(e.cfg.TickRate)
	e.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// --- Telemetry surface ---

// CurrentTime returns the playback position in seconds.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sampleRate == 0 {
		return 0
	}

	return float64(e.position) / float64(e.sampleRate)
}

// Duration returns the source duration in seconds, 0 when nothing is loaded.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sampleRate == 0 {
		return 0
	}

	return float64(len(e.source)) / float64(e.sampleRate)
}

// PhaseCorrelation returns the smoothed correlation readout in [-1, 1].
func (e *Engine) PhaseCorrelation() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.monitor.Smoothed()
}

// InstantCorrelation returns the unsmoothed window correlation.
func (e *Engine) InstantCorrelation() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.monitor.Instant()
}

// MonoCompatibility returns the smoothed correlation mapped to [0, 1].
func (e *Engine) MonoCompatibility() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.monitor.MonoCompatibility()
}

// TimeDomainSamples copies the most recent stereo output window into the
// destination slices for display and returns the number of valid samples.
func (e *Engine) TimeDomainSamples(dstL, dstR []float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.monitor.Window(dstL, dstR)
}

// FrequencyMagnitudes returns the magnitude spectrum of the mid (L+R)
// component of the recent output window.
func (e *Engine) FrequencyMagnitudes() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	size := e.spectrum.Size()
	l := make([]float64, size)
	r := make([]float64, size)
	n := e.monitor.Window(l, r)

	mid := make([]float64, n)
	for i := 0; i < n; i++ {
		mid[i] = (l[i] + r[i]) / 2
	}

	return e.spectrum.Magnitudes(mid)
}

// Correcting reports whether the safety controller recently fired; the flag
// holds for a fixed wall-clock second regardless of tick rate.
func (e *Engine) Correcting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.now().Before(e.safety.correctingUntil)
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() PlaybackPhase {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.phase
}

// Width returns the current global width.
func (e *Engine) Width() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.width
}

// HaasEnabled reports whether the Haas widener is on.
func (e *Engine) HaasEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.haas
}

// Bypassed reports whether the dry path is substituted for the processed one.
func (e *Engine) Bypassed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.bypass
}

// Bands returns a copy of the current band specs.
func (e *Engine) Bands() []BandSpec {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]BandSpec, len(e.bands))
	copy(out, e.bands)

	return out
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

func clampWidth(width float64) float64 {
	if width < 0 {
		return 0
	}
	if width > WidthMax {
		return WidthMax
	}

	return width
}
