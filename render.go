package morpho

import (
	"context"
	"fmt"
	"os"

	"github.com/soporteaiwis-lab/morpho-stereo/internal/graph"
	"github.com/soporteaiwis-lab/morpho-stereo/internal/wave"
)

// BitDepth selects the sample format of an exported WAV file.
type BitDepth = wave.BitDepth

// Supported export formats.
const (
	Depth16      = wave.Depth16
	Depth24      = wave.Depth24
	Depth32Float = wave.Depth32Float
)

// Export renders the whole loaded source offline through a fresh processing
// graph built from the current settings and returns an encoded stereo WAV
// file. The realtime session is untouched; its graph, filter state, and
// playback position stay exactly as they were. Only one export may run at a
// time. The context is checked between blocks so long renders stay
// cancellable.
func (e *Engine) Export(ctx context.Context, depth BitDepth) ([]byte, error) {
	e.mu.Lock()
	if e.source == nil {
		e.mu.Unlock()
		return nil, ErrNoBuffer
	}
	if e.exporting {
		e.mu.Unlock()
		return nil, ErrRenderActive
	}
	e.exporting = true

	src := e.source
	sampleRate := e.sampleRate
	cfg := e.snapshotLocked()
	if e.phase == PhaseIdle {
		e.phase = PhaseExporting
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.exporting = false
		if e.phase == PhaseExporting {
			e.phase = PhaseIdle
		}
		e.mu.Unlock()
	}()

	data, err := renderOffline(ctx, cfg, src, sampleRate, depth)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// ExportFile renders like Export and writes the result to path.
func (e *Engine) ExportFile(ctx context.Context, path string, depth BitDepth) error {
	data, err := e.Export(ctx, depth)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// renderOffline processes src through a dedicated graph instance in fixed
// blocks. A dedicated instance guarantees the render starts from zeroed
// filter and delay state, so the same source and settings always produce
// identical bytes.
func renderOffline(ctx context.Context, cfg graph.Config, src []float64, sampleRate int, depth BitDepth) ([]byte, error) {
	g, err := graph.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRenderContext, err)
	}

	outL := make([]float64, len(src))
	outR := make([]float64, len(src))

	for start := 0; start < len(src); start += renderBlockFrames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + renderBlockFrames
		if end > len(src) {
			end = len(src)
		}
		g.Process(src[start:end], outL[start:end], outR[start:end])
	}

	data, err := wave.Encode(outL, outR, sampleRate, depth)
	if err != nil {
		return nil, fmt.Errorf("encoding render: %w", err)
	}

	return data, nil
}
