package psd

// BlendingRange is one (black0,black1,white0,white1) input/output curve
// cutoff quad, stored as raw bytes (pytoshop keeps it as a numpy uint8
// array; we keep the equivalent 4-byte array without attaching semantics
// the format itself doesn't assign).
type BlendingRange [4]byte

func (r *BlendingRange) Read(f *File) error {
	buf := make([]byte, 4)
	if _, err := f.Read(buf); err != nil {
		return exhaustionError("BlendingRange", "failed to read range", nil)
	}
	copy(r[:], buf)
	return nil
}

func (r *BlendingRange) Write(f *File) error {
	_, err := f.Write(r[:])
	return err
}

// BlendingRangePair is a (source, destination) pair of BlendingRanges,
// always 8 bytes on disk.
type BlendingRangePair struct {
	Src BlendingRange
	Dst BlendingRange
}

func (p *BlendingRangePair) Read(f *File) error {
	if err := p.Src.Read(f); err != nil {
		return err
	}
	return p.Dst.Read(f)
}

func (p *BlendingRangePair) Write(f *File) error {
	if err := p.Src.Write(f); err != nil {
		return err
	}
	return p.Dst.Write(f)
}

// BlendingRanges is a layer record's (or the composite image's) blending
// ranges section. It default-collapses to a 0-length block when nothing is
// set, per spec DESIGN NOTES ("Default-collapsing").
type BlendingRanges struct {
	CompositeGrayBlend *BlendingRangePair
	Channels           []BlendingRangePair
}

// Length returns the number of bytes Write would emit, not counting the
// length prefix itself.
func (b *BlendingRanges) Length() int {
	if b.CompositeGrayBlend == nil && len(b.Channels) == 0 {
		return 0
	}
	n := 0
	if b.CompositeGrayBlend != nil {
		n += 8
	}
	n += 8 * len(b.Channels)
	return n
}

func (b *BlendingRanges) Read(f *File) error {
	length, err := f.ReadUint32()
	if err != nil {
		return structuralError("BlendingRanges", "failed to read length", nil)
	}
	if length == 0 {
		return nil
	}
	start, err := f.Tell()
	if err != nil {
		return err
	}
	end := start + int64(length)

	b.CompositeGrayBlend = &BlendingRangePair{}
	if err := b.CompositeGrayBlend.Read(f); err != nil {
		return err
	}

	for {
		pos, err := f.Tell()
		if err != nil {
			return err
		}
		if pos >= end {
			break
		}
		var pair BlendingRangePair
		if err := pair.Read(f); err != nil {
			return err
		}
		b.Channels = append(b.Channels, pair)
	}
	return nil
}

func (b *BlendingRanges) Write(f *File) error {
	if err := f.WriteUint32(uint32(b.Length())); err != nil {
		return err
	}
	if b.CompositeGrayBlend == nil && len(b.Channels) == 0 {
		return nil
	}
	if b.CompositeGrayBlend != nil {
		if err := b.CompositeGrayBlend.Write(f); err != nil {
			return err
		}
	}
	for i := range b.Channels {
		if err := b.Channels[i].Write(f); err != nil {
			return err
		}
	}
	return nil
}
