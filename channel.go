package psd

import "image"

// ChannelImageData is a single channel's pixel plane, either already
// materialized in memory or held as a lazy (file, offset, length)
// reference. Grounded on pytoshop's layers.py ChannelImageData and
// image_data.py ImageData: the two constructor modes are mutually
// exclusive, matching the original's ValueError-if-both-given guard.
type ChannelImageData struct {
	Compression uint16

	image []byte // materialized pixels, decompressed, native sample layout

	// lazy reference, used when this channel was read from a file and
	// not yet decompressed.
	file   *File
	offset int64
	size   int64

	width, height int
	depth         uint16
	big           bool // PSB: governs RLE row-length table width

	// constant-channel virtual encode: when isConstant is set, Write
	// synthesizes compressed bytes for a uniform plane directly from
	// constantValue without ever materializing the full pixel array.
	isConstant   bool
	constantValue int32
}

// NewConstantChannelImageData builds a channel whose plane is a single
// repeated scalar value, compressed without ever allocating the full
// width*height byte array (spec DESIGN NOTES "constant-channel virtual
// encode").
func NewConstantChannelImageData(compression uint16, value int32) *ChannelImageData {
	return &ChannelImageData{Compression: compression, isConstant: true, constantValue: value}
}

// NewChannelImageData wraps already-decoded pixel data for writing.
func NewChannelImageData(compression uint16, image []byte) *ChannelImageData {
	return &ChannelImageData{Compression: compression, image: image}
}

// newLazyChannelImageData builds a deferred reference to compressed bytes
// still sitting in the file; Image() performs the seek-save/decompress/
// seek-restore dance on first access. big selects the RLE row-length
// table width (u16 for PSD, u32 for PSB).
func newLazyChannelImageData(f *File, compression uint16, offset, size int64, width, height int, depth uint16, big bool) *ChannelImageData {
	return &ChannelImageData{
		Compression: compression,
		file:        f,
		offset:      offset,
		size:        size,
		width:       width,
		height:      height,
		depth:       depth,
		big:         big,
	}
}

// Image returns the decompressed pixel bytes, reading and decompressing
// lazily on first access. The "tell, seek, read, finally seek back"
// pattern keeps the shared File cursor where the caller left it.
func (c *ChannelImageData) Image() ([]byte, error) {
	if c.image != nil {
		return c.image, nil
	}
	if c.isConstant {
		decoded, err := decompressConstant(c.constantValue, c.width, c.height, c.depth)
		if err != nil {
			return nil, err
		}
		c.image = decoded
		return c.image, nil
	}
	if c.file == nil {
		return nil, nil
	}
	saved, err := c.file.Tell()
	if err != nil {
		return nil, err
	}
	defer c.file.Seek(saved, 0)

	if _, err := c.file.Seek(c.offset, 0); err != nil {
		return nil, err
	}
	buf := make([]byte, c.size)
	if _, err := c.file.Read(buf); err != nil {
		return nil, exhaustionError("ChannelImageData", "failed to read channel bytes", c.size)
	}

	decoded, err := decompressChannel(buf, c.Compression, c.width, c.height, c.depth, c.big)
	if err != nil {
		return nil, err
	}
	c.image = decoded
	return c.image, nil
}

// ToImage exposes this channel's decoded samples as a standard-library
// image.Image: one grayscale sample per pixel, nothing composited or
// blended in. 8-bit channels decode to *image.Gray, 16-bit (stored
// big-endian on disk, as image.Gray16 expects) to *image.Gray16; other
// depths have no matching standard-library gray type. Grounded on the
// teacher's image.go/layer.go use of the image package, with the
// compositing (ToPNG/ToImage/Renderer) stripped out — this is channel
// access, not rendering.
func (c *ChannelImageData) ToImage(width, height int, depth uint16) (image.Image, error) {
	data, err := c.Image()
	if err != nil {
		return nil, err
	}
	switch depth {
	case 8:
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, data)
		return img, nil
	case 16:
		img := image.NewGray16(image.Rect(0, 0, width, height))
		copy(img.Pix, data)
		return img, nil
	default:
		return nil, capabilityError("ChannelImageData.ToImage", "no standard-library gray type for this depth", depth)
	}
}

func decompressChannel(data []byte, compression uint16, width, height int, depth uint16, big bool) ([]byte, error) {
	rowBytes, err := rowByteSize(width, depth)
	if err != nil {
		return nil, err
	}
	switch compression {
	case CompressionRaw:
		return decompressRaw(data, width, height, depth)
	case CompressionRLE:
		rowCounts, rowData, err := readRLERowTable(data, height, big)
		if err != nil {
			return nil, err
		}
		packed, err := decompressRLE(rowData, rowCounts, rowBytes)
		if err != nil {
			return nil, err
		}
		return decompressRaw(packed, width, height, depth)
	case CompressionZIP:
		inflated, err := decompressZIP(data)
		if err != nil {
			return nil, err
		}
		return decompressRaw(inflated, width, height, depth)
	case CompressionZIPPrediction:
		return decompressZIPPrediction(data, width, height, depth)
	default:
		return nil, domainError("ChannelImageData", "unknown compression code", compression)
	}
}

func rowByteSize(width int, depth uint16) (int, error) {
	size, err := depthByteSize(depth)
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return (width + 7) / 8, nil
	}
	return width * size, nil
}

// compressChannel encodes decoded pixel bytes with the requested
// compression, returning the bytes to write after the channel's own
// u16 compression code.
func compressChannel(data []byte, compression uint16, width, height int, depth uint16, big bool) ([]byte, error) {
	rowBytes, err := rowByteSize(width, depth)
	if err != nil {
		return nil, err
	}
	switch compression {
	case CompressionRaw:
		return compressRaw(data, width, height, depth)
	case CompressionRLE:
		rows, err := compressRLE(data, height, rowBytes, depth)
		if err != nil {
			return nil, err
		}
		return encodeRLERowTable(rows, big), nil
	case CompressionZIP:
		packed, err := compressRaw(data, width, height, depth)
		if err != nil {
			return nil, err
		}
		return compressZIP(packed)
	case CompressionZIPPrediction:
		return compressZIPPrediction(data, width, height, depth)
	default:
		return nil, domainError("ChannelImageData", "unknown compression code", compression)
	}
}

// rowCountByteWidth is 2 for PSD, 4 for PSB — the RLE per-row length
// table entry width (spec §4.2; original_source/pytoshop/codecs.py's
// compress_constant_rle picks u16 vs u32 on the same condition).
func rowCountByteWidth(big bool) int {
	if big {
		return 4
	}
	return 2
}

// readRLERowTable splits an RLE-compressed channel into its per-row
// length table and the row data that follows.
func readRLERowTable(data []byte, height int, big bool) ([]int, []byte, error) {
	width := rowCountByteWidth(big)
	if len(data) < height*width {
		return nil, nil, exhaustionError("codecs.rle", "truncated row length table", height)
	}
	counts := make([]int, height)
	for i := 0; i < height; i++ {
		if big {
			counts[i] = int(data[i*4])<<24 | int(data[i*4+1])<<16 | int(data[i*4+2])<<8 | int(data[i*4+3])
		} else {
			counts[i] = int(data[i*2])<<8 | int(data[i*2+1])
		}
	}
	return counts, data[height*width:], nil
}

func encodeRLERowTable(rows [][]byte, big bool) []byte {
	return encodeRLERowTableWidth(rows, rowCountByteWidth(big))
}

// encodeRLERowTableWidth writes rows's per-row length table at the given
// entry width (2 or 4 bytes) followed by the concatenated row bytes;
// shared by both the per-channel path and the constant-channel virtual
// encode path in codecs.go.
func encodeRLERowTableWidth(rows [][]byte, width int) []byte {
	out := make([]byte, 0, len(rows)*width)
	for _, row := range rows {
		n := len(row)
		switch width {
		case 4:
			out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		default:
			out = append(out, byte(n>>8), byte(n))
		}
	}
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// Write emits this channel's compressed bytes (preceded by the u16
// compression code, matching the on-disk layout of both per-layer channel
// data and the composite image data section). big selects the RLE
// row-length table width for this file's version.
func (c *ChannelImageData) Write(f *File, width, height int, depth uint16, big bool) (int64, error) {
	if err := f.WriteUint16(c.Compression); err != nil {
		return 0, err
	}
	var encoded []byte
	var err error
	if c.isConstant {
		encoded, err = compressConstant(c.constantValue, c.Compression, width, height, depth, rowCountByteWidth(big))
	} else {
		var data []byte
		data, err = c.Image()
		if err != nil {
			return 0, err
		}
		encoded, err = compressChannel(data, c.Compression, width, height, depth, big)
	}
	if err != nil {
		return 0, err
	}
	if _, err := f.Write(encoded); err != nil {
		return 0, err
	}
	return int64(2 + len(encoded)), nil
}
