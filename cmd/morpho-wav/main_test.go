package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	morpho "github.com/soporteaiwis-lab/morpho-stereo"
)

func TestPanFlags_Set(t *testing.T) {
	p := panFlags{}

	require.NoError(t, p.Set("mid-low=-0.7"))
	require.NoError(t, p.Set("high=0.3"))
	assert.Equal(t, -0.7, p[morpho.BandMidLow])
	assert.Equal(t, 0.3, p[morpho.BandHigh])
}

func TestPanFlags_SetRejectsBadInput(t *testing.T) {
	p := panFlags{}

	// A typo'd band name must fail loudly, not silently do nothing.
	require.Error(t, p.Set("midlow=-0.7"))
	require.Error(t, p.Set("mid-low"))
	require.Error(t, p.Set("mid-low=wide"))
	assert.Empty(t, p)
}

func TestParseDepth(t *testing.T) {
	d, err := parseDepth(24)
	require.NoError(t, err)
	assert.Equal(t, morpho.Depth24, d)

	_, err = parseDepth(8)
	require.Error(t, err)
}
