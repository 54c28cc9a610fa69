package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/filter"
	"github.com/soporteaiwis-lab/morpho-stereo/internal/testutil"
)

const testSampleRate = 44100.0

// testConfig returns a full four-band config with the given shared pan/gain.
func testConfig(pan, gain float64, haas, bypass bool) Config {
	cfg := Config{
		SampleRate:  testSampleRate,
		HaasEnabled: haas,
		Bypass:      bypass,
	}
	for _, id := range filter.BandIDs() {
		cfg.Bands = append(cfg.Bands, BandConfig{ID: id, Pan: pan, Gain: gain})
	}

	return cfg
}

func processAll(t *testing.T, g *Graph, src []float64) (l, r []float64) {
	t.Helper()
	l = make([]float64, len(src))
	r = make([]float64, len(src))
	g.Process(src, l, r)

	return l, r
}

// TestBuild_Validation verifies config rejection.
func TestBuild_Validation(t *testing.T) {
	_, err := Build(Config{SampleRate: 0, Bands: testConfig(0, 1, false, false).Bands})
	require.Error(t, err)

	_, err = Build(Config{SampleRate: testSampleRate})
	require.Error(t, err)

	_, err = Build(Config{
		SampleRate: testSampleRate,
		Bands:      []BandConfig{{ID: filter.BandID("nope"), Gain: 1}},
	})
	require.Error(t, err)
}

// TestBuild_Deterministic verifies two graphs from one config produce
// identical output for identical input.
func TestBuild_Deterministic(t *testing.T) {
	cfg := testConfig(0.4, 1.1, true, false)
	src := testutil.Sine(440, testSampleRate, 4096)

	g1, err := Build(cfg)
	require.NoError(t, err)
	g2, err := Build(cfg)
	require.NoError(t, err)

	l1, r1 := processAll(t, g1, src)
	l2, r2 := processAll(t, g2, src)

	testutil.AssertSlicesInDelta(t, l1, l2, 0)
	testutil.AssertSlicesInDelta(t, r1, r2, 0)
}

// TestProcess_BypassIsTransparent verifies a bypassed graph passes the dry
// source through untouched regardless of band configuration.
func TestProcess_BypassIsTransparent(t *testing.T) {
	tests := []struct {
		name string
		pan  float64
		gain float64
		haas bool
	}{
		{"neutral_bands", 0, 1, false},
		{"hard_panned_bands", -1, 2.5, false},
		{"haas_enabled", 0.7, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(testConfig(tt.pan, tt.gain, tt.haas, true))
			require.NoError(t, err)

			src := testutil.Sine(440, testSampleRate, 2048)
			l, r := processAll(t, g, src)

			testutil.AssertSlicesInDelta(t, src, l, 1e-12)
			testutil.AssertSlicesInDelta(t, src, r, 1e-12)
		})
	}
}

// TestProcess_HardLeftSilencesRight verifies the linear pan law edge: with every
// band panned fully left, the right channel carries no wet signal.
func TestProcess_HardLeftSilencesRight(t *testing.T) {
	g, err := Build(testConfig(-1, 1, false, false))
	require.NoError(t, err)

	src := testutil.Sine(1000, testSampleRate, 2048)
	l, r := processAll(t, g, src)

	assert.InDelta(t, 0, testutil.RMS(r), 1e-12)
	assert.Greater(t, testutil.RMS(l), 0.1)
}

// TestProcess_CenterWetMatchesMonoSum verifies the width=0 case: all pans at
// center, unity gain, no Haas: both channels carry the identical band sum.
func TestProcess_CenterWetMatchesMonoSum(t *testing.T) {
	g, err := Build(testConfig(0, 1, false, false))
	require.NoError(t, err)

	src := testutil.Sine(440, testSampleRate, 2048)
	l, r := processAll(t, g, src)

	testutil.AssertSlicesInDelta(t, l, r, 1e-12)
	testutil.AssertNoNaNOrInf(t, l)
}

// TestProcess_HaasDecorrelatesChannels verifies the delay branch actually
// shifts the right channel of non-low bands.
func TestProcess_HaasDecorrelatesChannels(t *testing.T) {
	g, err := Build(testConfig(0, 1, true, false))
	require.NoError(t, err)

	src := testutil.Sine(4000, testSampleRate, 8192)
	l, r := processAll(t, g, src)

	// With the right copies of three bands delayed 15 ms the channels can no
	// longer be sample-identical.
	var maxDiff float64
	for i := range l {
		if d := math.Abs(l[i] - r[i]); d > maxDiff {
			maxDiff = d
		}
	}
	assert.Greater(t, maxDiff, 0.01)
}

// TestSetBypass_CrossfadesToDry verifies toggling bypass on a live graph
// converges to the pure dry signal within the bounded crossfade window.
func TestSetBypass_CrossfadesToDry(t *testing.T) {
	g, err := Build(testConfig(0.8, 1, false, false))
	require.NoError(t, err)

	src := testutil.Sine(440, testSampleRate, 2048)
	out := make([]float64, len(src))
	g.Process(src, out, out)

	g.SetBypass(true)

	// Run well past 5 crossfade time constants, then verify transparency.
	settle := testutil.Sine(440, testSampleRate, 44100/2)
	l := make([]float64, len(settle))
	r := make([]float64, len(settle))
	g.Process(settle, l, r)

	tail := len(settle) - 1024
	testutil.AssertSlicesInDelta(t, settle[tail:], l[tail:], 1e-4)
	testutil.AssertSlicesInDelta(t, settle[tail:], r[tail:], 1e-4)
}

// TestSetPan_RampsWithoutDiscontinuity verifies a live pan change produces no
// sample-to-sample jump larger than the signal's own slew.
func TestSetPan_RampsWithoutDiscontinuity(t *testing.T) {
	g, err := Build(testConfig(0, 1, false, false))
	require.NoError(t, err)

	src := testutil.Sine(200, testSampleRate, 1024)
	out := make([]float64, len(src))
	g.Process(src, out, out)

	for _, id := range filter.BandIDs() {
		g.SetPan(id, 1)
	}

	l := make([]float64, len(src))
	r := make([]float64, len(src))
	g.Process(src, l, r)

	maxStep := 0.0
	for i := 1; i < len(r); i++ {
		if d := math.Abs(r[i] - r[i-1]); d > maxStep {
			maxStep = d
		}
	}
	// A 200 Hz unit sine slews about 0.028/sample; allow modest headroom.
	assert.Less(t, maxStep, 0.1)
}

// TestPanGains covers the linear pan law table.
func TestPanGains(t *testing.T) {
	tests := []struct {
		name   string
		pan    float64
		gl, gr float64
	}{
		{"center", 0, 1, 1},
		{"hard_left", -1, 1, 0},
		{"hard_right", 1, 0, 1},
		{"half_left", -0.5, 1, 0.5},
		{"half_right", 0.5, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, gr := panGains(tt.pan)
			assert.InDelta(t, tt.gl, gl, 1e-12)
			assert.InDelta(t, tt.gr, gr, 1e-12)
		})
	}
}

// TestDelayNode_ImpulsePosition verifies the Haas line delays by the
// configured sample count.
func TestDelayNode_ImpulsePosition(t *testing.T) {
	d := newDelayNode(HaasDelaySec, testSampleRate)

	n := 1024
	src := testutil.Impulse(n)
	dst := make([]float64, n)
	d.Process(dst, src)

	peakIdx := 0
	for i, v := range dst {
		if math.Abs(v) > math.Abs(dst[peakIdx]) {
			peakIdx = i
		}
	}

	wantDelay := HaasDelaySec * testSampleRate // 661.5 samples
	assert.InDelta(t, wantDelay, float64(peakIdx), 1.5)
}

// TestSmoother_ConvergesToTarget verifies ramp behavior and the atomic
// target handoff.
func TestSmoother_ConvergesToTarget(t *testing.T) {
	s := NewSmoother(0, 0.05, testSampleRate)
	assert.True(t, s.Settled())

	s.SetTarget(1)
	assert.False(t, s.Settled())
	assert.Equal(t, 1.0, s.Target())

	// One time constant reaches ~63%, five reach >99%.
	var v float64
	for i := 0; i < int(0.05*testSampleRate); i++ {
		v = s.Next()
	}
	assert.InDelta(t, 0.63, v, 0.02)

	for i := 0; i < int(0.25*testSampleRate); i++ {
		v = s.Next()
	}
	assert.Greater(t, v, 0.99)

	s.Snap(0.5)
	assert.Equal(t, 0.5, s.Value())
	assert.True(t, s.Settled())
}

// TestBuild_LowRateSkipsUnrepresentableBands verifies that sources whose
// Nyquist sits below the top crossover edge keep a full-spectrum band union:
// the top surviving band extends to Nyquist and bands with no representable
// content are left out instead of muting the signal.
func TestBuild_LowRateSkipsUnrepresentableBands(t *testing.T) {
	const rate = 8000.0

	cfg := testConfig(0, 1, false, false)
	cfg.SampleRate = rate

	g, err := Build(cfg)
	require.NoError(t, err)
	require.Len(t, g.bands, 3)

	// A 3 kHz tone lives in the mid-high band, whose 8 kHz upper edge is
	// above Nyquist at this rate; the band must pass it, not mute it.
	src := testutil.Sine(3000, rate, 16384)
	l, _ := processAll(t, g, src)

	const transientSkip = 4096
	ratio := testutil.RMS(l[transientSkip:]) / testutil.RMS(src[transientSkip:])
	assert.Greater(t, ratio, 0.5)
}
