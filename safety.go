package morpho

import "time"

// safetyController watches the smoothed phase correlation and narrows the
// stereo image when the output risks cancelling under a mono fold-down. At
// most one correction fires per cooldown window so repeated negative
// readings step the width down gradually instead of collapsing it at once.
type safetyController struct {
	cooldown        int
	correctingUntil time.Time
}

// step runs once per control tick with the engine mutex held.
func (s *safetyController) step(e *Engine, smoothed float64) {
	if s.cooldown > 0 {
		s.cooldown--
		return
	}
	if !e.monoSafe || e.bypass || smoothed >= 0 {
		return
	}

	// Correction: drop the Haas widener first, then narrow the image.
	if e.haas {
		// The rebuild reuses the last good graph config; it cannot fail
		// after a successful Play, but a failure here must not take the
		// session down, so the old graph keeps running.
		_ = e.setHaasLocked(false)
	}
	if e.width > safetyWidthFloor {
		w := e.width * safetyWidthFactor
		if w < safetyWidthFloor {
			w = safetyWidthFloor
		}
		e.setWidthLocked(w)
	}

	s.cooldown = safetyCooldownTicks
	s.correctingUntil = e.now().Add(correctingHold)
}
