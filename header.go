package psd

// Header represents the PSD/PSB file header: signature, version, channel
// count, canvas dimensions, bit depth and color mode. Grounded on the
// teacher's header.go (kept the read path nearly verbatim) plus
// original_source/pytoshop/core.go's Header traitlets class for the write
// path and the version-dependent size bound the teacher never checked.
type Header struct {
	file     *File
	Sig      string
	Version  uint16
	Channels uint16
	Rows     uint32
	Cols     uint32
	Depth    uint16
	Mode     uint16
}

// maxSizeMapping mirrors pytoshop's Header.max_size_mapping: PSD (v1) caps
// canvas dimensions at 30000px, PSB (v2) at 300000px.
var maxSizeMapping = map[uint16]uint32{1: 30000, 2: 300000}

// Width returns the width of the document.
func (h *Header) Width() uint32 { return h.Cols }

// Height returns the height of the document.
func (h *Header) Height() uint32 { return h.Rows }

// ModeName returns the human-readable color mode name.
func (h *Header) ModeName() string { return ModeName(h.Mode) }

// IsBig returns true if this is a PSB (large document format).
func (h *Header) IsBig() bool { return h.Version == 2 }

// IsRGB returns true if the color mode is RGB.
func (h *Header) IsRGB() bool { return h.Mode == ColorModeRGBColor }

// IsCMYK returns true if the color mode is CMYK.
func (h *Header) IsCMYK() bool { return h.Mode == ColorModeCMYKColor }

func (h *Header) checkSize() error {
	max, ok := maxSizeMapping[h.Version]
	if !ok {
		return domainError("Header", "unsupported version", h.Version)
	}
	if h.Rows > max {
		return domainError("Header", "height exceeds version's max dimension", h.Rows)
	}
	if h.Cols > max {
		return domainError("Header", "width exceeds version's max dimension", h.Cols)
	}
	return nil
}

// Parse reads the fixed 26-byte header proper (signature through color
// mode) and nothing past it; the cursor is left positioned at the
// ColorModeData length prefix, which callers read separately via
// ColorModeData.Read.
func (h *Header) Parse() error {
	logf("header: parsing")
	sig, err := h.file.ReadString(4)
	if err != nil {
		return structuralError("Header", "failed to read signature", nil)
	}
	if sig != "8BPS" {
		return structuralError("Header", "invalid PSD signature", sig)
	}
	h.Sig = sig

	version, err := h.file.ReadUint16()
	if err != nil {
		return structuralError("Header", "failed to read version", nil)
	}
	if version != 1 && version != 2 {
		return domainError("Header", "unsupported PSD version", version)
	}
	h.Version = version

	if err := h.file.Skip(6); err != nil {
		return exhaustionError("Header", "failed to skip reserved bytes", nil)
	}

	channels, err := h.file.ReadUint16()
	if err != nil {
		return structuralError("Header", "failed to read channels", nil)
	}
	h.Channels = channels

	rows, err := h.file.ReadUint32()
	if err != nil {
		return structuralError("Header", "failed to read rows", nil)
	}
	h.Rows = rows

	cols, err := h.file.ReadUint32()
	if err != nil {
		return structuralError("Header", "failed to read cols", nil)
	}
	h.Cols = cols

	if err := h.checkSize(); err != nil {
		return err
	}

	depth, err := h.file.ReadUint16()
	if err != nil {
		return structuralError("Header", "failed to read depth", nil)
	}
	h.Depth = depth

	mode, err := h.file.ReadUint16()
	if err != nil {
		return structuralError("Header", "failed to read mode", nil)
	}
	h.Mode = mode

	return nil
}

// Write emits the 26-byte header proper (signature through color mode),
// not including the color mode data length/bytes, which the caller writes
// via ColorModeData.Write immediately after.
func (h *Header) Write() error {
	logf("header: writing")
	if err := h.checkSize(); err != nil {
		return err
	}
	if err := h.file.WriteString("8BPS"); err != nil {
		return err
	}
	if err := h.file.WriteUint16(h.Version); err != nil {
		return err
	}
	if _, err := h.file.Write(make([]byte, 6)); err != nil {
		return err
	}
	if err := h.file.WriteUint16(h.Channels); err != nil {
		return err
	}
	if err := h.file.WriteUint32(h.Rows); err != nil {
		return err
	}
	if err := h.file.WriteUint32(h.Cols); err != nil {
		return err
	}
	if err := h.file.WriteUint16(h.Depth); err != nil {
		return err
	}
	return h.file.WriteUint16(h.Mode)
}
