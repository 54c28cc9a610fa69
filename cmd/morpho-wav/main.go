// Command morpho-wav renders a mono WAV file into an enhanced stereo WAV.
//
// Usage:
//
//	morpho-wav input.wav output.wav
//	morpho-wav -width 1.3 -haas=false input.wav output.wav
//	morpho-wav -depth 24 -pan mid-low=-0.7 -pan mid-high=0.7 in.wav out.wav
//
// Multichannel input is downmixed to mono before enhancement; the stereo
// image in the output is synthesized entirely by the band engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	morpho "github.com/soporteaiwis-lab/morpho-stereo"
)

const (
	minRequiredArgs = 2

	defaultWidth    = 1.0
	defaultDepthBit = 16
)

// knownBands holds the valid -pan band identities.
var knownBands = func() map[morpho.BandID]bool {
	m := make(map[morpho.BandID]bool)
	for _, b := range morpho.DefaultBands() {
		m[b.ID] = true
	}

	return m
}()

// panFlags collects repeated -pan band=value assignments.
type panFlags map[morpho.BandID]float64

func (p panFlags) String() string {
	parts := make([]string, 0, len(p))
	for id, v := range p {
		parts = append(parts, fmt.Sprintf("%s=%g", id, v))
	}

	return strings.Join(parts, ",")
}

func (p panFlags) Set(s string) error {
	id, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected band=pan, got %q", s)
	}
	if !knownBands[morpho.BandID(id)] {
		return fmt.Errorf("unknown band %q (want low, mid-low, mid-high, high)", id)
	}

	pan, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("invalid pan %q: %w", val, err)
	}
	p[morpho.BandID(id)] = pan

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	width := flag.Float64("width", defaultWidth, "Global stereo width, 0 (mono) to 1.5 (widest)")
	haas := flag.Bool("haas", true, "Enable Haas micro-delay widening")
	depthBits := flag.Int("depth", defaultDepthBit, "Output depth: 16, 24, or 32 (float)")
	verbose := flag.Bool("v", false, "Verbose output")
	pans := panFlags{}
	flag.Var(pans, "pan", "Per-band pan override, repeatable: band=value (bands: low, mid-low, mid-high, high)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	inputPath := args[0]
	outputPath := args[1]

	depth, err := parseDepth(*depthBits)
	if err != nil {
		return err
	}

	opts := morpho.DefaultRenderOptions()
	opts.Width = *width
	opts.Haas = *haas
	opts.Depth = depth
	for _, b := range morpho.DefaultBands() {
		if pan, ok := pans[b.ID]; ok {
			b.Pan = pan
		}
		opts.Bands = append(opts.Bands, b)
	}

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Width: %.2f, Haas: %v, Depth: %d-bit", opts.Width, opts.Haas, *depthBits)
		for _, b := range opts.Bands {
			log.Printf("Band %-9s %6.0f-%5.0f Hz  pan %+.2f", b.ID, b.LowEdgeHz, b.HighEdgeHz, b.Pan)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := morpho.EnhanceFile(ctx, inputPath, outputPath, opts); err != nil {
		return err
	}

	fmt.Printf("Enhanced %s -> %s (%.2fs)\n",
		filepath.Base(inputPath), filepath.Base(outputPath), time.Since(start).Seconds())

	return nil
}

func parseDepth(bits int) (morpho.BitDepth, error) {
	switch bits {
	case 16:
		return morpho.Depth16, nil
	case 24:
		return morpho.Depth24, nil
	case 32:
		return morpho.Depth32Float, nil
	default:
		return 0, fmt.Errorf("unsupported depth %d (want 16, 24, or 32)", bits)
	}
}
