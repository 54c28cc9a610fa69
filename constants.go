package morpho

import "time"

// Control loop constants.
const (
	// DefaultTickRate is the nominal monitor/safety tick rate, matching a
	// frame-rate-driven host loop.
	DefaultTickRate = 60

	// maxTickRate bounds configuration input.
	maxTickRate = 1000
)

// Width constants.
const (
	// WidthMax is the upper clamp of the global width control.
	WidthMax = 1.5

	// DefaultWidth is the neutral width applied at construction.
	DefaultWidth = 1.0
)

// Safety controller constants.
const (
	// safetyCooldownTicks is the hysteresis window after a correction during
	// which no further correction fires.
	safetyCooldownTicks = 60

	// safetyWidthFactor is the multiplicative width reduction per correction.
	safetyWidthFactor = 0.95

	// safetyWidthFloor is the width below which corrections stop shrinking
	// the image.
	safetyWidthFloor = 0.5

	// correctingHold is how long the UI-visible correcting flag stays raised
	// after a correction, independent of tick rate.
	correctingHold = time.Second
)

// Offline render constants.
const (
	// renderBlockFrames is the block size of the offline render loop;
	// cancellation is checked between blocks.
	renderBlockFrames = 4096
)

// topologyFadeSec is the crossfade length used when a topology change (Haas
// on/off) swaps the live graph for a freshly built one.
const topologyFadeSec = 0.05
