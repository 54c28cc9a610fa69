package wave

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Decoded holds a decoded WAV source as normalized per-channel floats.
type Decoded struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames returns the per-channel sample count.
func (d *Decoded) Frames() int {
	if len(d.Channels) == 0 {
		return 0
	}

	return len(d.Channels[0])
}

// Decode reads a complete WAV stream and normalizes it to [-1, 1] floats.
func Decode(rs io.ReadSeeker) (*Decoded, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("decode: not a valid WAV stream")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("decode: missing format information")
	}

	return &Decoded{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   int(dec.BitDepth),
		Channels:   deinterleave(buf, int(dec.BitDepth)),
	}, nil
}

// deinterleave splits an interleaved PCM buffer into normalized per-channel
// float slices.
func deinterleave(buf *audio.IntBuffer, bitDepth int) [][]float64 {
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	maxVal := pcmFullScale(bitDepth)

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		base := i * channels
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = float64(buf.Data[base+ch]) / maxVal
		}
	}

	return out
}

// DecodeFile opens and decodes a WAV file.
func DecodeFile(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// pcmFullScale returns the normalization divisor for a PCM bit depth.
func pcmFullScale(bitDepth int) float64 {
	switch bitDepth {
	case 24:
		return scale24Pos
	case 32:
		return 2147483647.0
	default:
		return scale16Pos
	}
}
