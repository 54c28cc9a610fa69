package morpho

import (
	"fmt"
	"io"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/wave"
)

// LoadWAV decodes a WAV stream and installs it as the engine's source.
// Decode failures wrap ErrDecode.
func (e *Engine) LoadWAV(rs io.ReadSeeker) error {
	dec, err := wave.Decode(rs)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDecode, err)
	}

	return e.Load(dec.SampleRate, dec.Channels)
}

// LoadWAVFile decodes a WAV file and installs it as the engine's source.
// Decode failures wrap ErrDecode.
func (e *Engine) LoadWAVFile(path string) error {
	dec, err := wave.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("%w: loading %s: %s", ErrDecode, path, err)
	}

	return e.Load(dec.SampleRate, dec.Channels)
}
