package psd

// ImageData is the final top-level section of a PSD/PSB file: the
// composite (merged) preview image. Per spec §6 it runs from the current
// cursor to end-of-file with no length prefix of its own. All channels
// share one compression unit: they are concatenated row-major into a
// single (num_channels*height, width) plane and that combined plane is
// what gets raw/RLE/ZIP/ZIP-prediction coded, not one codec instance per
// channel. Grounded on original_source/pytoshop/image_data.py's
// ImageData.read/write, which hands codecs.decompress_image/compress_image
// a shape of (header.num_channels*header.height, header.width).
type ImageData struct {
	Compression uint16
	Channels    []*ChannelImageData
}

// Read decodes the composite section: a u16 compression code, then the
// combined multi-channel plane split back into one ChannelImageData per
// channel.
func (d *ImageData) Read(f *File, header *Header) error {
	logf("image data: parsing")
	compression, err := f.ReadUint16()
	if err != nil {
		// a document with no composite bytes trailing it (truncated or
		// thumbnail-only) leaves ImageData empty rather than erroring.
		return nil
	}
	d.Compression = compression

	width, height := int(header.Width()), int(header.Height())
	numChannels := int(header.Channels)
	big := header.IsBig()

	data, err := readAll(f)
	if err != nil {
		return err
	}

	combined, err := decompressChannel(data, compression, width, numChannels*height, header.Depth, big)
	if err != nil {
		return err
	}

	rowBytes, err := rowByteSize(width, header.Depth)
	if err != nil {
		return err
	}
	planeBytes := rowBytes * height
	if header.Depth == 1 {
		planeBytes = width * height // decompressChannel unpacks depth-1 to one byte per pixel
	}
	if len(combined) < planeBytes*numChannels {
		return exhaustionError("ImageData", "composite plane shorter than declared channels", len(combined))
	}

	d.Channels = make([]*ChannelImageData, numChannels)
	for c := 0; c < numChannels; c++ {
		plane := combined[c*planeBytes : (c+1)*planeBytes]
		d.Channels[c] = NewChannelImageData(compression, plane)
	}
	return nil
}

// Write emits the composite image data section: the shared compression
// code followed by the channels' combined plane, coded as a single unit.
func (d *ImageData) Write(f *File, header *Header) error {
	logf("image data: writing")
	if err := f.WriteUint16(d.Compression); err != nil {
		return err
	}
	width, height := int(header.Width()), int(header.Height())
	big := header.IsBig()

	combined := make([]byte, 0)
	for _, ch := range d.Channels {
		data, err := ch.Image()
		if err != nil {
			return err
		}
		combined = append(combined, data...)
	}

	encoded, err := compressChannel(combined, d.Compression, width, len(d.Channels)*height, header.Depth, big)
	if err != nil {
		return err
	}
	_, err = f.Write(encoded)
	return err
}
