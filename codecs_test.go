package psd

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawDepth1BitPackRoundTrip(t *testing.T) {
	width, height := 10, 2
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte(i % 2)
	}

	packed, err := compressRaw(pixels, width, height, 1)
	require.NoError(t, err)
	assert.Equal(t, rowCountByteWidthForTest(width), len(packed)/height)

	unpacked, err := decompressRaw(packed, width, height, 1)
	require.NoError(t, err)
	assert.Equal(t, pixels, unpacked)
}

func rowCountByteWidthForTest(width int) int { return (width + 7) / 8 }

func TestRawDepth8PassesThrough(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	packed, err := compressRaw(data, 3, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, data, packed)
}

func TestPackBitsRowRoundTrip(t *testing.T) {
	row := []byte{1, 1, 1, 1, 2, 3, 4, 5, 5, 5, 5, 5, 5, 5, 6}
	compressed := compressPackBitsRow(row)
	decoded, err := decompressPackBitsRow(compressed, len(row))
	require.NoError(t, err)
	assert.Equal(t, row, decoded)
}

func TestRLEChannelRoundTrip(t *testing.T) {
	width, height := 4, 3
	data := []byte{
		1, 1, 1, 1,
		2, 3, 4, 5,
		9, 9, 9, 9,
	}
	rows, err := compressRLE(data, height, width, 8)
	require.NoError(t, err)
	encoded := encodeRLERowTable(rows, false)

	counts, rowData, err := readRLERowTable(encoded, height, false)
	require.NoError(t, err)
	decoded, err := decompressRLE(rowData, counts, width)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestRLERejectsDepth1OnWrite(t *testing.T) {
	_, err := compressRLE([]byte{1, 2}, 1, 2, 1)
	assert.Error(t, err)
}

func TestZIPChannelRoundTrip(t *testing.T) {
	data := []byte{10, 20, 30, 40, 50, 60}
	compressed, err := compressZIP(data)
	require.NoError(t, err)
	decoded, err := decompressZIP(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestZIPPredictionRoundTrip8Bit(t *testing.T) {
	width, height := 5, 3
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(i * 7)
	}
	compressed, err := compressZIPPrediction(append([]byte(nil), data...), width, height, 8)
	require.NoError(t, err)
	decoded, err := decompressZIPPrediction(compressed, width, height, 8)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestZIPPredictionRoundTrip16Bit(t *testing.T) {
	width, height := 4, 2
	data := make([]byte, width*height*2)
	for i := range data {
		data[i] = byte(i * 13)
	}
	compressed, err := compressZIPPrediction(append([]byte(nil), data...), width, height, 16)
	require.NoError(t, err)
	decoded, err := decompressZIPPrediction(compressed, width, height, 16)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestZIPPredictionRejectsUnsupportedDepth(t *testing.T) {
	_, err := compressZIPPrediction([]byte{1, 2, 3, 4}, 2, 2, 32)
	assert.Error(t, err)
}

func TestConstantChannelVirtualEncodeMatchesDecompressConstant(t *testing.T) {
	width, height := 6, 4
	value := int32(200)
	direct, err := decompressConstant(value, width, height, 8)
	require.NoError(t, err)

	for _, compression := range []uint16{CompressionRaw, CompressionRLE, CompressionZIP, CompressionZIPPrediction} {
		encoded, err := compressConstant(value, compression, width, height, 8, 2)
		require.NoError(t, err)
		decoded, err := decompressChannel(encoded, compression, width, height, 8, false)
		require.NoError(t, err, "compression %d", compression)
		assert.Equal(t, direct, decoded, "compression %d", compression)
	}
}

func TestConstantChannelImageDataLazyDecode(t *testing.T) {
	ch := NewConstantChannelImageData(CompressionRaw, 42)
	ch.width, ch.height, ch.depth = 3, 3, 8
	data, err := ch.Image()
	require.NoError(t, err)
	assert.Len(t, data, 9)
	for _, b := range data {
		assert.Equal(t, byte(42), b)
	}
}

func TestDepthByteSizeRejectsUnsupported(t *testing.T) {
	_, err := depthByteSize(4)
	assert.Error(t, err)
}

func TestChannelToImageGray8(t *testing.T) {
	ch := NewChannelImageData(CompressionRaw, []byte{1, 2, 3, 4, 5, 6})
	img, err := ch.ToImage(3, 2, 8)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, byte(4), gray.GrayAt(0, 1).Y)
}

func TestChannelToImageGray16(t *testing.T) {
	ch := NewChannelImageData(CompressionRaw, []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04})
	img, err := ch.ToImage(2, 2, 16)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, uint16(4), gray.Gray16At(1, 1).Y)
}

func TestChannelToImageRejectsUnsupportedDepth(t *testing.T) {
	ch := NewChannelImageData(CompressionRaw, []byte{1, 2, 3, 4})
	_, err := ch.ToImage(2, 2, 32)
	assert.Error(t, err)
}

func TestLayerRecordChannelImage(t *testing.T) {
	rec := &LayerRecord{
		Top: 0, Left: 0, Bottom: 2, Right: 2,
		Channels: map[ChannelID]*ChannelImageData{
			0: NewChannelImageData(CompressionRaw, []byte{10, 20, 30, 40}),
		},
	}
	img, err := rec.ChannelImage(0, 8)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, byte(40), gray.GrayAt(1, 1).Y)

	_, err = rec.ChannelImage(ChannelTransparency, 8)
	assert.Error(t, err)
}
