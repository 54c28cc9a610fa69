package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DefaultSpectrumSize is the FFT length for the magnitude telemetry snapshot.
const DefaultSpectrumSize = 2048

// SpectrumAnalyzer computes magnitude spectra of recent output windows for
// the host's display layer. It Hann-windows the input to tame leakage.
type SpectrumAnalyzer struct {
	fft     *fourier.FFT
	window  []float64
	scratch []float64
	coeffs  []complex128
}

// NewSpectrumAnalyzer returns an analyzer for the given FFT size, rounded up
// to the next power of two. Non-positive sizes use DefaultSpectrumSize.
func NewSpectrumAnalyzer(size int) *SpectrumAnalyzer {
	if size <= 0 {
		size = DefaultSpectrumSize
	}
	n := 1
	for n < size {
		n *= 2
	}

	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	return &SpectrumAnalyzer{
		fft:     fourier.NewFFT(n),
		window:  window,
		scratch: make([]float64, n),
		coeffs:  make([]complex128, n/2+1),
	}
}

// Size returns the FFT length.
func (a *SpectrumAnalyzer) Size() int {
	return len(a.window)
}

// Magnitudes returns the normalized magnitude spectrum of samples. Input
// shorter than the FFT size is zero-padded; longer input uses the tail.
// The result has Size()/2+1 bins from DC to Nyquist.
func (a *SpectrumAnalyzer) Magnitudes(samples []float64) []float64 {
	n := len(a.window)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}

	for i := range a.scratch {
		a.scratch[i] = 0
	}
	for i, v := range samples {
		a.scratch[i] = v * a.window[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.scratch)

	out := make([]float64, len(a.coeffs))
	scale := 2 / float64(n)
	for i, c := range a.coeffs {
		out[i] = cmplxAbs(c) * scale
	}

	return out
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
