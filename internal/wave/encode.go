// Package wave serializes rendered stereo audio to RIFF/WAVE byte streams and
// decodes WAV sources through the go-audio decoder.
package wave

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/simdops"
)

// BitDepth selects the encoded sample format.
type BitDepth int

const (
	// Depth16 encodes signed 16-bit PCM.
	Depth16 BitDepth = 16

	// Depth24 encodes signed 24-bit PCM packed as 3 little-endian bytes.
	Depth24 BitDepth = 24

	// Depth32Float encodes 32-bit IEEE float.
	Depth32Float BitDepth = 32
)

// WAV container constants.
const (
	headerSize    = 44
	riffChunkBase = 36 // RIFF chunk size = riffChunkBase + dataSize
	fmtChunkSize  = 16

	formatPCM       = 1
	formatIEEEFloat = 3

	numChannels = 2
	bitsPerByte = 8
)

// Asymmetric PCM scale factors: positive full scale is one code short of the
// negative one in two's complement.
const (
	scale16Pos = 32767.0
	scale16Neg = 32768.0
	scale24Pos = 8388607.0 // 0x7FFFFF
	scale24Neg = 8388608.0 // 0x800000
)

// Encode serializes a stereo pair into a complete WAV byte stream at the
// requested bit depth. Left and right must have equal length. Samples are
// clipped to [-1, 1] before quantization.
func Encode(l, r []float64, sampleRate int, depth BitDepth) ([]byte, error) {
	if len(l) != len(r) {
		return nil, fmt.Errorf("channel length mismatch: %d vs %d", len(l), len(r))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	bytesPerSample, formatTag, err := depthParams(depth)
	if err != nil {
		return nil, err
	}

	frames := len(l)
	blockAlign := numChannels * bytesPerSample
	dataSize := frames * blockAlign

	out := make([]byte, headerSize+dataSize)
	writeHeader(out, sampleRate, dataSize, bytesPerSample, formatTag)

	interleaved := make([]float64, frames*numChannels)
	simdops.Interleave2(interleaved, l, r)

	body := out[headerSize:]
	switch depth {
	case Depth16:
		encode16(body, interleaved)
	case Depth24:
		encode24(body, interleaved)
	case Depth32Float:
		encode32Float(body, interleaved)
	}

	return out, nil
}

// depthParams maps a bit depth to its sample width and fmt-chunk format tag.
func depthParams(depth BitDepth) (bytesPerSample int, formatTag uint16, err error) {
	switch depth {
	case Depth16:
		return 2, formatPCM, nil
	case Depth24:
		return 3, formatPCM, nil
	case Depth32Float:
		return 4, formatIEEEFloat, nil
	default:
		return 0, 0, fmt.Errorf("unsupported bit depth %d", depth)
	}
}

func writeHeader(out []byte, sampleRate, dataSize, bytesPerSample int, formatTag uint16) {
	blockAlign := numChannels * bytesPerSample
	byteRate := sampleRate * blockAlign
	bits := bytesPerSample * bitsPerByte

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(riffChunkBase+dataSize))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(out[20:22], formatTag)
	binary.LittleEndian.PutUint16(out[22:24], numChannels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], uint16(bits))

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))
}

func encode16(dst []byte, samples []float64) {
	for i, s := range samples {
		s = clip(s)
		var v int16
		if s >= 0 {
			v = int16(s * scale16Pos)
		} else {
			v = int16(s * scale16Neg)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
	}
}

func encode24(dst []byte, samples []float64) {
	for i, s := range samples {
		s = clip(s)
		var v int32
		if s >= 0 {
			v = int32(s * scale24Pos)
		} else {
			v = int32(s * scale24Neg)
		}
		dst[i*3] = byte(v)
		dst[i*3+1] = byte(v >> 8)
		dst[i*3+2] = byte(v >> 16)
	}
}

func encode32Float(dst []byte, samples []float64) {
	for i, s := range samples {
		bits := math.Float32bits(float32(clip(s)))
		binary.LittleEndian.PutUint32(dst[i*4:], bits)
	}
}

func clip(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}

	return s
}
