package psd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaggedBlocksRoundTrip(t *testing.T) {
	blocks := []TaggedBlock{
		&UnicodeLayerName{Name: "Background"},
		&LayerID{ID: 7},
		&LayerColor{Color: [4]uint16{1, 2, 3, 4}},
		&FillOpacity{Opacity: 200},
		&SectionDividerSetting{Type: SectionDividerOpenFolder, BlendMode: "norm"},
	}

	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, writeTaggedBlocks(wf, blocks, false, 4))

	rf := NewBufferFile(buf.Bytes())
	decoded, err := readTaggedBlocks(rf, int64(buf.Len()), false, 4)
	require.NoError(t, err)
	require.Len(t, decoded, len(blocks))

	name, ok := decoded[0].(*UnicodeLayerName)
	require.True(t, ok)
	assert.Equal(t, "Background", name.Name)

	id, ok := decoded[1].(*LayerID)
	require.True(t, ok)
	assert.Equal(t, int32(7), id.ID)

	color, ok := decoded[2].(*LayerColor)
	require.True(t, ok)
	assert.Equal(t, [4]uint16{1, 2, 3, 4}, color.Color)

	fill, ok := decoded[3].(*FillOpacity)
	require.True(t, ok)
	assert.Equal(t, uint8(200), fill.Opacity)

	section, ok := decoded[4].(*SectionDividerSetting)
	require.True(t, ok)
	assert.Equal(t, SectionDividerOpenFolder, section.Type)
	assert.Equal(t, "norm", section.BlendMode)
}

func TestUnknownTaggedBlockFallsBackToGeneric(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, writeTaggedBlocks(wf, []TaggedBlock{&GenericTaggedBlock{KeyCode: "zzzz", Data: []byte{1, 2, 3}}}, false, 4))

	rf := NewBufferFile(buf.Bytes())
	decoded, err := readTaggedBlocks(rf, int64(buf.Len()), false, 4)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	block, ok := decoded[0].(*GenericTaggedBlock)
	require.True(t, ok)
	assert.Equal(t, "zzzz", block.KeyCode)
	assert.Equal(t, []byte{1, 2, 3}, block.Data)
}

func TestLargeLayerInfoCodesUse8B64InPSB(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, writeTaggedBlocks(wf, []TaggedBlock{&GenericTaggedBlock{KeyCode: "Lr16", Data: []byte{9}}}, true, 4))
	assert.Equal(t, "8B64", string(buf.Bytes()[:4]))

	rf := NewBufferFile(buf.Bytes())
	decoded, err := readTaggedBlocks(rf, int64(buf.Len()), true, 4)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, []byte{9}, decoded[0].(*GenericTaggedBlock).Data)
}

func TestSectionDividerLsdkKey(t *testing.T) {
	sd := &SectionDividerSetting{nested: true, Type: SectionDividerBoundingLayer}
	assert.Equal(t, "lsdk", sd.Key())
}

func TestVectorMaskRoundTrip(t *testing.T) {
	vm := &VectorMask{Version: 3, Invert: true, Path: FromRect(0, 0, 10, 10, 10, 10)}
	payload, err := vm.encode()
	require.NoError(t, err)

	var decoded VectorMask
	require.NoError(t, decoded.decode(payload))
	assert.Equal(t, uint32(3), decoded.Version)
	assert.True(t, decoded.Invert)
	require.NotNil(t, decoded.Path)
	assert.Equal(t, len(vm.Path.Records), len(decoded.Path.Records))
}
