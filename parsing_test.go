package psd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAndReparse(t *testing.T, p *PSD) *PSD {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.psd")
	require.NoError(t, p.WriteFile(path))

	reopened, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	require.NoError(t, reopened.Parse())
	return reopened
}

func TestHeaderRoundTrip(t *testing.T) {
	reopened := buildAndReparse(t, buildFlatDocument(t))

	assert.Equal(t, uint16(1), reopened.Header.Version)
	assert.Equal(t, uint16(1), reopened.Header.Channels)
	assert.Equal(t, uint32(2), reopened.Header.Width())
	assert.Equal(t, uint32(2), reopened.Header.Height())
	assert.Equal(t, uint16(3), reopened.Header.Mode)
	assert.Equal(t, "RGBColor", reopened.Header.ModeName())
	assert.False(t, reopened.Header.IsBig())
}

func TestResourcesRoundTrip(t *testing.T) {
	reopened := buildAndReparse(t, buildFlatDocument(t))

	assert.NotNil(t, reopened.Resources.Resources)
	res := reopened.Resources.Get(uint16(ResIDLayersGroupInfo))
	require.NotNil(t, res)
	assert.Equal(t, "8BIM", res.Type)

	group, ok := res.Block.(*LayersGroupInfo)
	require.True(t, ok)
	assert.Equal(t, []uint16{0}, group.GroupIDs)
}

func TestLayersRoundTrip(t *testing.T) {
	reopened := buildAndReparse(t, buildFlatDocument(t))

	layers := reopened.Layers()
	require.Len(t, layers, 1)

	layer := layers[0]
	assert.Equal(t, "Layer 1", layer.DisplayName())
	assert.False(t, layer.IsFolderRecord())
	assert.True(t, layer.Visible())
	assert.Equal(t, int32(2), layer.Width())
	assert.Equal(t, int32(2), layer.Height())
	assert.Equal(t, BlendNormal, layer.BlendMode)
	assert.Equal(t, uint8(255), layer.Opacity)

	data, err := layer.Channels[0].Image()
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 40}, data)
}
