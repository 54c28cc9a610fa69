package morpho

import "context"

// RenderOptions configures a one-shot offline enhancement.
type RenderOptions struct {
	// Bands overrides the default band layout when non-nil.
	Bands []BandSpec

	// Width is the global stereo width, clamped to [0, WidthMax].
	Width float64

	// Haas enables the micro-delay widener on the non-low bands.
	Haas bool

	// Depth selects the output sample format.
	Depth BitDepth
}

// DefaultRenderOptions returns the standard offline render settings: default
// band layout, unity width, Haas widening on, 16-bit output.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width: DefaultWidth,
		Haas:  true,
		Depth: Depth16,
	}
}

// EnhanceBuffer runs the whole pipeline over one decoded source in a single
// call: load, configure, render, encode. It is the simplest way to use the
// package when no interactive monitoring is needed.
func EnhanceBuffer(ctx context.Context, sampleRate int, channels [][]float64, opts RenderOptions) ([]byte, error) {
	e, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := e.Load(sampleRate, channels); err != nil {
		return nil, err
	}

	applyRenderOptions(e, opts)

	return e.Export(ctx, opts.Depth)
}

// EnhanceFile reads a WAV file, enhances it, and writes the stereo result.
func EnhanceFile(ctx context.Context, inPath, outPath string, opts RenderOptions) error {
	e, err := New(DefaultConfig())
	if err != nil {
		return err
	}
	if err := e.LoadWAVFile(inPath); err != nil {
		return err
	}

	applyRenderOptions(e, opts)

	return e.ExportFile(ctx, outPath, opts.Depth)
}

func applyRenderOptions(e *Engine, opts RenderOptions) {
	for _, b := range opts.Bands {
		e.SetBandPan(b.ID, b.Pan)
		e.SetBandGain(b.ID, b.Gain)
	}
	e.SetWidth(opts.Width)
	// The toggle cannot fail here; the error path only applies to
	// mid-playback graph rebuilds.
	_ = e.SetHaas(opts.Haas)
}
