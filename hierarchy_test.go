package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPixelImage(name string, id int32, top, left, bottom, right int32) *Image {
	w, h := int(right-left), int(bottom-top)
	return &Image{
		Name:      name,
		Visible:   true,
		Opacity:   255,
		BlendMode: BlendNormal,
		Top:       top, Left: left, Bottom: bottom, Right: right,
		ID: id,
		Channels: map[ChannelID]*ChannelImageData{
			0: NewChannelImageData(CompressionRaw, make([]byte, w*h)),
		},
	}
}

// buildNestedTree mirrors a simple two-group document: a top-level
// "Background" layer plus a "Version A" group containing "Matte" and a
// nested "Detail" group containing one layer.
func buildNestedTree() []LayerNode {
	detail := &Group{
		Name:    "Detail",
		Visible: true,
		Opacity: 255,
		ID:      3,
		Layers:  []LayerNode{flatPixelImage("Logo_Glyph", 4, 0, 0, 10, 10)},
	}
	versionA := &Group{
		Name:    "Version A",
		Visible: true,
		Opacity: 255,
		ID:      2,
		Layers:  []LayerNode{flatPixelImage("Matte", 5, 0, 0, 4, 4), detail},
	}
	background := flatPixelImage("Background", 1, 0, 0, 20, 20)
	return []LayerNode{background, versionA}
}

func TestPSDToNestedLayersRoundTrip(t *testing.T) {
	tree := buildNestedTree()
	info, groupIDs, err := NestedLayersToPSD(tree)
	require.NoError(t, err)
	assert.Equal(t, len(info.Layers), len(groupIDs))

	rebuilt := PSDToNestedLayers(info)
	require.Len(t, rebuilt, 2)

	bg, ok := rebuilt[0].(*Image)
	require.True(t, ok)
	assert.Equal(t, "Background", bg.Name)

	group, ok := rebuilt[1].(*Group)
	require.True(t, ok)
	assert.Equal(t, "Version A", group.Name)
	require.Len(t, group.Layers, 2)

	matte, ok := group.Layers[0].(*Image)
	require.True(t, ok)
	assert.Equal(t, "Matte", matte.Name)

	nested, ok := group.Layers[1].(*Group)
	require.True(t, ok)
	assert.Equal(t, "Detail", nested.Name)
	require.Len(t, nested.Layers, 1)
	assert.Equal(t, "Logo_Glyph", nested.Layers[0].NodeName())
}

func TestSubtreeLayersAndGroups(t *testing.T) {
	tree := buildNestedTree()

	layers := SubtreeLayers(tree)
	names := make([]string, len(layers))
	for i, im := range layers {
		names[i] = im.Name
	}
	assert.ElementsMatch(t, []string{"Background", "Matte", "Logo_Glyph"}, names)

	groups := SubtreeGroups(tree)
	require.Len(t, groups, 2)
}

func TestChildrenAtPath(t *testing.T) {
	tree := buildNestedTree()

	nodes := ChildrenAtPath(tree, "Version A/Matte")
	require.Len(t, nodes, 1)
	assert.Equal(t, "Matte", nodes[0].NodeName())

	nodes = ChildrenAtPath(tree, "/Version A/Matte")
	require.Len(t, nodes, 1)

	assert.Empty(t, ChildrenAtPath(tree, "NOPE"))
}

func TestToHash(t *testing.T) {
	tree := buildNestedTree()
	hash := ToHash(tree)
	require.Len(t, hash, 2)
	assert.Equal(t, "layer", hash[0]["type"])
	assert.Equal(t, "group", hash[1]["type"])
}

func TestNormalizeTreePositions(t *testing.T) {
	tree := []LayerNode{
		flatPixelImage("A", 1, 10, 10, 20, 30),
		flatPixelImage("B", 2, 5, 40, 15, 50),
	}
	width, height := NormalizeTreePositions(tree)
	assert.Equal(t, int32(40), width)
	assert.Equal(t, int32(15), height)

	a := tree[0].(*Image)
	assert.Equal(t, int32(0), a.Left)
	assert.Equal(t, int32(5), a.Top)
}

func TestNestedLayersToPSDRejectsEmptyTree(t *testing.T) {
	_, _, err := NestedLayersToPSD(nil)
	assert.Error(t, err)
}

func TestBuildPSDEndToEnd(t *testing.T) {
	tree := buildNestedTree()
	p, err := BuildPSD(tree, ColorModeRGBColor, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(1), p.Header.Channels)
	assert.Equal(t, uint16(8), p.Header.Depth)
	assert.True(t, p.Header.Width() > 0)
	assert.True(t, p.Header.Height() > 0)

	composite := make([]byte, int(p.Header.Width())*int(p.Header.Height()))
	p.Image.Compression = CompressionRaw
	p.Image.Channels = []*ChannelImageData{NewChannelImageData(CompressionRaw, composite)}

	reopened := buildAndReparse(t, p)
	rebuilt := reopened.Tree()
	require.Len(t, rebuilt, 2)
	assert.Equal(t, "Background", rebuilt[0].NodeName())
	group, ok := rebuilt[1].(*Group)
	require.True(t, ok)
	assert.Equal(t, "Version A", group.Name)
}
