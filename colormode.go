package psd

// ColorModeData holds the raw bytes of the color mode data section. It is
// only meaningful for Indexed (a 768-byte palette) and Duotone (an Adobe
// duotone specification) color modes; for every other mode it is empty.
// Grounded on pytoshop's color_mode.py: no structure is imposed, the bytes
// round-trip unchanged.
type ColorModeData struct {
	Data []byte
}

func (c *ColorModeData) Read(f *File, big bool) error {
	n, err := f.readLength(big)
	if err != nil {
		return structuralError("ColorModeData", "failed to read length", nil)
	}
	if n == 0 {
		c.Data = nil
		return nil
	}
	buf := make([]byte, n)
	if _, err := f.Read(buf); err != nil {
		return exhaustionError("ColorModeData", "failed to read data", n)
	}
	c.Data = buf
	return nil
}

func (c *ColorModeData) Write(f *File, big bool) error {
	if err := f.writeLength(big, uint64(len(c.Data))); err != nil {
		return err
	}
	if len(c.Data) == 0 {
		return nil
	}
	_, err := f.Write(c.Data)
	return err
}
