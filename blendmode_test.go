package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlendModeName(t *testing.T) {
	assert.Equal(t, "multiply", BlendMultiply.Name())
	assert.Equal(t, "passthru", BlendPassThrough.Name())
}

func TestBlendModeNameFallsBackToRawCode(t *testing.T) {
	unknown := BlendMode("xxxx")
	assert.Equal(t, "xxxx", unknown.Name())
}

func TestParseBlendModeName(t *testing.T) {
	mode, ok := ParseBlendModeName("color_burn")
	assert.True(t, ok)
	assert.Equal(t, BlendColorBurn, mode)

	_, ok = ParseBlendModeName("not_a_mode")
	assert.False(t, ok)
}

func TestAllBlendModesRoundTripThroughNameTables(t *testing.T) {
	for code, name := range blendModeNames {
		mode, ok := ParseBlendModeName(name)
		assert.True(t, ok, "name %q should resolve to a code", name)
		assert.Equal(t, code, mode)
		assert.Equal(t, name, code.Name())
	}
}

func TestSectionDividerCarriesGroupBlendMode(t *testing.T) {
	tree := []LayerNode{
		&Group{
			Name:      "Multiply Group",
			Visible:   true,
			Opacity:   255,
			BlendMode: BlendMultiply,
			ID:        1,
			Layers:    []LayerNode{flatPixelImage("Leaf", 2, 0, 0, 2, 2)},
		},
	}

	info, _, err := NestedLayersToPSD(tree)
	assert.NoError(t, err)

	rebuilt := PSDToNestedLayers(info)
	group, ok := rebuilt[0].(*Group)
	assert.True(t, ok)
	assert.Equal(t, BlendMultiply, group.BlendMode)
	assert.Equal(t, "multiply", group.BlendMode.Name())
}
