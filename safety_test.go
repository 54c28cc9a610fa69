package morpho

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/testutil"
)

// stepSafety drives the controller directly with a synthetic correlation
// reading, the same call path Tick uses.
func stepSafety(e *Engine, corr float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.safety.step(e, corr)
}

func TestSafety_CorrectionDisablesHaasAndNarrows(t *testing.T) {
	e := newLoadedEngine(t)
	require.NoError(t, e.SetHaas(true))
	e.SetWidth(WidthMax)

	stepSafety(e, -0.3)

	assert.False(t, e.HaasEnabled())
	assert.InDelta(t, WidthMax*safetyWidthFactor, e.Width(), 1e-12)
}

func TestSafety_OneCorrectionPerCooldown(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(WidthMax)

	stepSafety(e, -0.9)
	narrowed := e.Width()

	// The cooldown must absorb every reading until it drains.
	for i := 0; i < safetyCooldownTicks-1; i++ {
		stepSafety(e, -0.9)
		assert.Equal(t, narrowed, e.Width())
	}

	// This tick drains the cooldown; the next negative reading corrects.
	stepSafety(e, -0.9)
	stepSafety(e, -0.9)
	assert.InDelta(t, narrowed*safetyWidthFactor, e.Width(), 1e-12)
}

func TestSafety_WidthFloor(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(safetyWidthFloor * 1.01)

	stepSafety(e, -1)
	assert.Equal(t, safetyWidthFloor, e.Width())

	// Once at the floor the width never narrows further.
	for i := 0; i <= safetyCooldownTicks; i++ {
		stepSafety(e, -1)
	}
	stepSafety(e, -1)
	assert.Equal(t, safetyWidthFloor, e.Width())
}

func TestSafety_NoActionWhenDisabled(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(WidthMax)
	e.SetMonoSafe(false)

	stepSafety(e, -1)

	assert.Equal(t, WidthMax, e.Width())
	assert.False(t, e.Correcting())
}

func TestSafety_NoActionDuringBypass(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(WidthMax)
	e.SetBypass(true)

	stepSafety(e, -1)

	assert.Equal(t, WidthMax, e.Width())
}

func TestSafety_NoActionOnNonNegativeCorrelation(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(WidthMax)

	stepSafety(e, 0)
	stepSafety(e, 0.7)

	assert.Equal(t, WidthMax, e.Width())
	assert.False(t, e.Correcting())
}

func TestSafety_NoAutomaticRecovery(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(WidthMax)

	stepSafety(e, -1)
	narrowed := e.Width()

	// Healthy readings never widen the image back; recovery is the
	// caller's decision.
	for i := 0; i < 200; i++ {
		stepSafety(e, 1)
	}
	assert.Equal(t, narrowed, e.Width())
}

func TestSafety_CorrectingFlagHoldsForWallClockSecond(t *testing.T) {
	e := newLoadedEngine(t)
	e.SetWidth(WidthMax)

	clock := time.Unix(1000, 0)
	e.now = func() time.Time { return clock }

	stepSafety(e, -1)
	assert.True(t, e.Correcting())

	clock = clock.Add(999 * time.Millisecond)
	assert.True(t, e.Correcting())

	clock = clock.Add(2 * time.Millisecond)
	assert.False(t, e.Correcting())
}

func TestSafety_EndToEndTickNeverTriggersOnCoherentAudio(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)

	src := testutil.Sine(440, testSampleRate, 2*testSampleRate)
	require.NoError(t, e.Load(testSampleRate, [][]float64{src}))
	require.NoError(t, e.Play(nil, nil))
	e.SetWidth(WidthMax)

	for i := 0; i < 2*DefaultTickRate; i++ {
		e.Tick()
	}

	assert.Equal(t, WidthMax, e.Width())
	assert.False(t, e.Correcting())
}
