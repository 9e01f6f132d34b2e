package psd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFlatDocument constructs a minimal single-layer, single-channel
// RGB document whose round trip through WriteFile/New/Parse this file's
// tests exercise. The single color channel is a 2x2 raw plane; the
// synthetic alpha channel is a constant (virtually encoded) plane, per
// imageToLayerRecord's always-opaque default.
func buildFlatDocument(t *testing.T) *PSD {
	t.Helper()
	img := &Image{
		Name:      "Layer 1",
		Visible:   true,
		Opacity:   255,
		BlendMode: BlendNormal,
		Top:       0, Left: 0, Bottom: 2, Right: 2,
		ID: 1,
		Channels: map[ChannelID]*ChannelImageData{
			0: NewChannelImageData(CompressionRaw, []byte{10, 20, 30, 40}),
		},
	}
	p, err := BuildPSD([]LayerNode{img}, ColorModeRGBColor, 1, nil)
	require.NoError(t, err)
	p.Image.Compression = CompressionRaw
	p.Image.Channels = []*ChannelImageData{
		NewChannelImageData(CompressionRaw, []byte{10, 20, 30, 40}),
	}
	return p
}

func TestNewBadFilename(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist.psd"))
	assert.Error(t, err)
}

func TestWriteFileThenNewAndParse(t *testing.T) {
	p := buildFlatDocument(t)
	path := filepath.Join(t.TempDir(), "doc.psd")
	require.NoError(t, p.WriteFile(path))

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.False(t, reopened.Parsed())

	require.NoError(t, reopened.Parse())
	assert.True(t, reopened.Parsed())
	assert.Equal(t, uint16(1), reopened.Header.Version)
	assert.Equal(t, uint32(2), reopened.Header.Rows)
	assert.Equal(t, uint32(2), reopened.Header.Cols)
}

func TestOpen(t *testing.T) {
	p := buildFlatDocument(t)
	path := filepath.Join(t.TempDir(), "doc.psd")
	require.NoError(t, p.WriteFile(path))

	var parsed bool
	err := Open(path, func(opened *PSD) error {
		parsed = opened.Parsed()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, parsed)
}

func TestOpenPropagatesCallbackError(t *testing.T) {
	p := buildFlatDocument(t)
	path := filepath.Join(t.TempDir(), "doc.psd")
	require.NoError(t, p.WriteFile(path))

	boom := assert.AnError
	err := Open(path, func(*PSD) error { return boom })
	assert.ErrorIs(t, err, boom)
}
