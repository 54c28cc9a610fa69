package graph

// Parameter smoothing time constants, in seconds. Pan and gain ramps are kept
// short enough to feel immediate but long enough to avoid zipper noise; the
// Haas ramp is slower because delay-time changes are far more audible.
const (
	panSmoothingSec   = 0.08
	gainSmoothingSec  = 0.08
	delaySmoothingSec = 0.1
	mixSmoothingSec   = 0.05
)

// HaasDelaySec is the fixed inter-channel micro-delay applied to the right
// copy of a band signal when the Haas widener is active. 15 ms sits below the
// echo-perception threshold while decorrelating the channels.
const HaasDelaySec = 0.015

// delayHeadroomSamples pads the delay line so the fractional read always has
// an interpolation neighbor.
const delayHeadroomSamples = 4
