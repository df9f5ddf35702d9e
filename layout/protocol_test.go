package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor(`{
		"version": "1.0",
		"layout": {
			"type": "spiral",
			"params": {"rotations": 5, "max_radius_factor": 0.25}
		}
	}`)
	require.NoError(t, err)
	assert.Equal(t, "1.0", d.Version)
	assert.Equal(t, "spiral", d.Layout.Type)
	require.NotNil(t, d.Layout.Params.Rotations)
	assert.Equal(t, float32(5), *d.Layout.Params.Rotations)
	assert.Nil(t, d.Layout.Params.RadiusFactor)
	assert.Nil(t, d.Layout.Coordinates)
}

func TestParseDescriptorCoordinates(t *testing.T) {
	d, err := ParseDescriptor(`{
		"version": "1.0",
		"layout": {"type": "custom", "coordinates": [[0.1, 0.2], [0.3, 0.4]]}
	}`)
	require.NoError(t, err)
	require.Len(t, d.Layout.Coordinates, 2)
	assert.Equal(t, [2]float32{0.1, 0.2}, d.Layout.Coordinates[0])
}

func TestParseDescriptorMalformed(t *testing.T) {
	_, err := ParseDescriptor(`{"version":`)
	assert.Error(t, err)
}

func TestParamDefaults(t *testing.T) {
	var p Params
	assert.Equal(t, float32(0.35), p.radiusFactor())
	assert.Equal(t, float32(60), p.gridPadding())
	assert.Equal(t, float32(20), p.randomPadding())
	assert.Equal(t, float32(0.4), p.maxRadiusFactor())
	assert.Equal(t, float32(3), p.rotations())
	assert.Equal(t, float32(0.02), p.helixFrequency())
	assert.Equal(t, float32(0.01), p.waveFrequency())
	assert.Equal(t, float32(160), p.helixAmplitude(800))
	assert.Equal(t, float32(120), p.waveAmplitude(600))
}

func TestParamOverrides(t *testing.T) {
	pad := float32(10)
	p := Params{Padding: &pad}
	assert.Equal(t, float32(10), p.gridPadding())
	assert.Equal(t, float32(10), p.randomPadding())
}

func TestNormalizeKind(t *testing.T) {
	for _, alias := range []string{"dna", "DNA_Helix", "helix", "HELIX"} {
		assert.Equal(t, KindHelix, normalizeKind(alias))
	}
	assert.Equal(t, "circle", normalizeKind("Circle"))
	assert.Equal(t, "nonsense", normalizeKind("NonSense"))
}
