package filter

import (
	"errors"
	"fmt"
)

// ErrBandOutOfRange reports a band whose passband lies entirely at or above
// the Nyquist frequency of the target sample rate and therefore carries no
// representable content.
var ErrBandOutOfRange = errors.New("band passband above nyquist")

// BandID identifies one of the four fixed frequency bands.
type BandID string

// The four band identities. Count and naming are fixed for the lifetime of
// the engine; only per-band pan and gain are runtime-mutable.
const (
	BandLow     BandID = "low"
	BandMidLow  BandID = "mid-low"
	BandMidHigh BandID = "mid-high"
	BandHigh    BandID = "high"
)

// Crossover edge frequencies in Hz. Fixed constants, never recomputed.
const (
	CrossoverLowHz  = 250.0
	CrossoverMidHz  = 2000.0
	CrossoverHighHz = 8000.0
)

// edgeSections is the number of cascaded second-order sections per crossover
// edge (two Q=0.707 sections give a 4th-order Butterworth slope).
const edgeSections = 2

// StageKind tags a filter stage descriptor.
type StageKind int

const (
	// StageLowpass passes frequencies below the cutoff.
	StageLowpass StageKind = iota

	// StageHighpass passes frequencies above the cutoff.
	StageHighpass
)

// String returns the stage kind name.
func (k StageKind) String() string {
	switch k {
	case StageLowpass:
		return "lowpass"
	case StageHighpass:
		return "highpass"
	default:
		return "unknown"
	}
}

// StageSpec describes one second-order stage of a band filter. Stages connect
// strictly in series in the order returned by BandStages.
type StageSpec struct {
	Kind     StageKind
	CutoffHz float64
	Q        float64
}

// bandStageTable maps each band identity to its fixed stage descriptor list.
// Edge bands carry one crossover edge (2 sections), interior bands carry two
// (highpass pair first, then lowpass pair). Decided once at package init.
var bandStageTable = map[BandID][]StageSpec{
	BandLow: {
		{Kind: StageLowpass, CutoffHz: CrossoverLowHz, Q: ButterworthQ},
		{Kind: StageLowpass, CutoffHz: CrossoverLowHz, Q: ButterworthQ},
	},
	BandMidLow: {
		{Kind: StageHighpass, CutoffHz: CrossoverLowHz, Q: ButterworthQ},
		{Kind: StageHighpass, CutoffHz: CrossoverLowHz, Q: ButterworthQ},
		{Kind: StageLowpass, CutoffHz: CrossoverMidHz, Q: ButterworthQ},
		{Kind: StageLowpass, CutoffHz: CrossoverMidHz, Q: ButterworthQ},
	},
	BandMidHigh: {
		{Kind: StageHighpass, CutoffHz: CrossoverMidHz, Q: ButterworthQ},
		{Kind: StageHighpass, CutoffHz: CrossoverMidHz, Q: ButterworthQ},
		{Kind: StageLowpass, CutoffHz: CrossoverHighHz, Q: ButterworthQ},
		{Kind: StageLowpass, CutoffHz: CrossoverHighHz, Q: ButterworthQ},
	},
	BandHigh: {
		{Kind: StageHighpass, CutoffHz: CrossoverHighHz, Q: ButterworthQ},
		{Kind: StageHighpass, CutoffHz: CrossoverHighHz, Q: ButterworthQ},
	},
}

// BandIDs returns the band identities in spectrum order, low to high.
func BandIDs() []BandID {
	return []BandID{BandLow, BandMidLow, BandMidHigh, BandHigh}
}

// BandStages returns the ordered stage descriptor list for a band.
// The returned slice is a copy; callers may not mutate the table.
func BandStages(id BandID) ([]StageSpec, error) {
	stages, ok := bandStageTable[id]
	if !ok {
		return nil, fmt.Errorf("unknown band id %q", id)
	}

	out := make([]StageSpec, len(stages))
	copy(out, stages)

	return out, nil
}

// NewBandChain builds the biquad cascade for a band at the given sample rate.
// Crossover edges are resolved against Nyquist so low-rate sources keep a
// full-spectrum band union: a lowpass edge at or above Nyquist is dropped and
// the band extends to Nyquist instead; a highpass edge at or above Nyquist
// means the whole band is unrepresentable and ErrBandOutOfRange is returned.
func NewBandChain(id BandID, sampleRate float64) (*Chain, error) {
	stages, err := BandStages(id)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %v", sampleRate)
	}

	nyquist := sampleRate / 2
	coeffs := make([]Coefficients, 0, len(stages))
	for _, st := range stages {
		if st.CutoffHz >= nyquist {
			if st.Kind == StageHighpass {
				return nil, fmt.Errorf("%w: %s edge %g Hz at rate %g Hz",
					ErrBandOutOfRange, id, st.CutoffHz, sampleRate)
			}
			continue
		}

		switch st.Kind {
		case StageLowpass:
			coeffs = append(coeffs, Lowpass(st.CutoffHz, st.Q, sampleRate))
		case StageHighpass:
			coeffs = append(coeffs, Highpass(st.CutoffHz, st.Q, sampleRate))
		}
	}

	return NewChain(coeffs), nil
}
