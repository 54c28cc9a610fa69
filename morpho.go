// Package morpho implements a mono-to-stereo spatial enhancement engine. It
// splits a mono source into four frequency bands, pans each band
// independently, optionally widens the image with a Haas micro-delay, and
// continuously guards the result against phase-cancellation artifacts. The
// processed signal can be rendered offline to a WAV byte stream at 16, 24, or
// 32-bit resolution.
//
// The engine consumes decoded PCM only; compressed-format parsing, display
// rendering, and transport UI belong to the host application.
package morpho

import (
	"errors"
	"fmt"
)

// Common errors returned by the engine.
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNoBuffer indicates an operation that needs a loaded source buffer.
	ErrNoBuffer = errors.New("no buffer loaded")

	// ErrDecode indicates a source stream could not be decoded.
	ErrDecode = errors.New("source decode failure")

	// ErrRenderContext indicates the offline render path could not be set up.
	ErrRenderContext = errors.New("render context failure")

	// ErrRenderActive indicates an offline render is already in flight.
	ErrRenderActive = errors.New("render already in progress")
)

// PlaybackPhase enumerates the engine lifecycle states.
type PlaybackPhase int

const (
	// PhaseIdle means no playback session is active.
	PhaseIdle PlaybackPhase = iota

	// PhaseLoading means a source buffer is being installed.
	PhaseLoading

	// PhasePlaying means the realtime monitoring path is running.
	PhasePlaying

	// PhasePaused means playback is suspended at the current position.
	PhasePaused

	// PhaseExporting means an offline render is running with no playback.
	PhaseExporting
)

// String returns the phase name.
func (p PlaybackPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseExporting:
		return "exporting"
	default:
		return "unknown"
	}
}

// Config holds engine configuration.
type Config struct {
	// TickRate is the monitor/safety control loop rate in ticks per second.
	// Zero selects DefaultTickRate.
	TickRate int

	// WindowSize is the correlation analysis window in samples.
	// Zero selects the default 2048-sample window.
	WindowSize int

	// MonoSafe enables the automatic width/Haas reduction when the smoothed
	// correlation turns negative.
	MonoSafe bool
}

// DefaultConfig returns the stock engine configuration with mono-safe mode
// enabled.
func DefaultConfig() Config {
	return Config{
		TickRate: DefaultTickRate,
		MonoSafe: true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TickRate < 0 {
		return fmt.Errorf("%w: tick rate must not be negative", ErrInvalidConfig)
	}
	if c.TickRate > maxTickRate {
		return fmt.Errorf("%w: tick rate above %d", ErrInvalidConfig, maxTickRate)
	}
	if c.WindowSize < 0 {
		return fmt.Errorf("%w: window size must not be negative", ErrInvalidConfig)
	}

	return nil
}
