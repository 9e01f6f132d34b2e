package psd

import (
	"bytes"
	"image"
)

// LayerMask is a single layer's pixel mask and/or vector-mask-derived
// "real" mask, a variable-length sub-record inside LayerRecord's extra
// data. Grounded on original_source/pytoshop/layers.py's LayerMask class;
// the source's own user_make_feather field-name typo is fixed here to
// UserMaskFeather, per spec §9.
type LayerMask struct {
	Top, Left, Bottom, Right int32
	DefaultColor             uint8

	PositionRelativeToLayer        bool
	Disabled                       bool
	InvertLayerMaskWhenBlending    bool // obsolete; round-tripped only
	UserMaskFromRenderingOtherData bool

	UserMaskDensity   *uint8
	UserMaskFeather   *float64
	VectorMaskDensity *uint8
	VectorMaskFeather *float64

	hasReal                bool
	RealFlags              uint8
	RealUserMaskBackground uint8
	RealTop                int32
	RealLeft               int32
	RealBottom             int32
	RealRight              int32
}

func readLayerMask(f *File) (*LayerMask, error) {
	length, err := f.ReadUint32()
	if err != nil {
		return nil, structuralError("LayerMask", "failed to read length", nil)
	}
	if length == 0 {
		return nil, nil
	}
	start, err := f.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)

	m := &LayerMask{}
	if m.Top, err = f.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Left, err = f.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Bottom, err = f.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Right, err = f.ReadInt32(); err != nil {
		return nil, err
	}
	dc, err := f.ReadByte()
	if err != nil {
		return nil, err
	}
	m.DefaultColor = dc

	flags, err := f.ReadByte()
	if err != nil {
		return nil, err
	}
	m.PositionRelativeToLayer = flags&1 != 0
	m.Disabled = flags&2 != 0
	m.InvertLayerMaskWhenBlending = flags&4 != 0
	m.UserMaskFromRenderingOtherData = flags&8 != 0

	if flags&16 != 0 {
		paramBits, err := f.ReadByte()
		if err != nil {
			return nil, err
		}
		if paramBits&1 != 0 {
			v, err := f.ReadByte()
			if err != nil {
				return nil, err
			}
			m.UserMaskDensity = &v
		}
		if paramBits&2 != 0 {
			v, err := f.ReadFloat64()
			if err != nil {
				return nil, err
			}
			m.UserMaskFeather = &v
		}
		if paramBits&4 != 0 {
			v, err := f.ReadByte()
			if err != nil {
				return nil, err
			}
			m.VectorMaskDensity = &v
		}
		if paramBits&8 != 0 {
			v, err := f.ReadFloat64()
			if err != nil {
				return nil, err
			}
			m.VectorMaskFeather = &v
		}
	}

	pos, err := f.Tell()
	if err != nil {
		return nil, err
	}
	if end-pos >= 18 {
		m.hasReal = true
		if m.RealFlags, err = f.ReadByte(); err != nil {
			return nil, err
		}
		if m.RealUserMaskBackground, err = f.ReadByte(); err != nil {
			return nil, err
		}
		if m.RealTop, err = f.ReadInt32(); err != nil {
			return nil, err
		}
		if m.RealLeft, err = f.ReadInt32(); err != nil {
			return nil, err
		}
		if m.RealBottom, err = f.ReadInt32(); err != nil {
			return nil, err
		}
		if m.RealRight, err = f.ReadInt32(); err != nil {
			return nil, err
		}
	}

	pos, err = f.Tell()
	if err != nil {
		return nil, err
	}
	if pos < end {
		if err := f.Skip(end - pos); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *LayerMask) encode() ([]byte, error) {
	var buf bytes.Buffer
	f := &File{writer: &buf}
	f.WriteInt32(m.Top)
	f.WriteInt32(m.Left)
	f.WriteInt32(m.Bottom)
	f.WriteInt32(m.Right)
	f.WriteByte(m.DefaultColor)

	var flags uint8
	if m.PositionRelativeToLayer {
		flags |= 1
	}
	if m.Disabled {
		flags |= 2
	}
	if m.InvertLayerMaskWhenBlending {
		flags |= 4
	}
	if m.UserMaskFromRenderingOtherData {
		flags |= 8
	}
	hasParams := m.UserMaskDensity != nil || m.UserMaskFeather != nil ||
		m.VectorMaskDensity != nil || m.VectorMaskFeather != nil
	if hasParams {
		flags |= 16
	}
	f.WriteByte(flags)

	if hasParams {
		var paramBits uint8
		if m.UserMaskDensity != nil {
			paramBits |= 1
		}
		if m.UserMaskFeather != nil {
			paramBits |= 2
		}
		if m.VectorMaskDensity != nil {
			paramBits |= 4
		}
		if m.VectorMaskFeather != nil {
			paramBits |= 8
		}
		f.WriteByte(paramBits)
		if m.UserMaskDensity != nil {
			f.WriteByte(*m.UserMaskDensity)
		}
		if m.UserMaskFeather != nil {
			f.WriteFloat64(*m.UserMaskFeather)
		}
		if m.VectorMaskDensity != nil {
			f.WriteByte(*m.VectorMaskDensity)
		}
		if m.VectorMaskFeather != nil {
			f.WriteFloat64(*m.VectorMaskFeather)
		}
	}

	if m.hasReal {
		f.WriteByte(m.RealFlags)
		f.WriteByte(m.RealUserMaskBackground)
		f.WriteInt32(m.RealTop)
		f.WriteInt32(m.RealLeft)
		f.WriteInt32(m.RealBottom)
		f.WriteInt32(m.RealRight)
	}
	return buf.Bytes(), nil
}

func writeLayerMask(f *File, m *LayerMask) error {
	if m == nil {
		return f.WriteUint32(0)
	}
	data, err := m.encode()
	if err != nil {
		return err
	}
	if err := f.WriteUint32(uint32(len(data))); err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// layerChannelInfo is one entry in a LayerRecord's channel table: which
// channel this is, and how many bytes of channel image data follow it in
// the file (the compression code plus compressed bytes).
type layerChannelInfo struct {
	ID     ChannelID
	Length int64
}

// LayerRecord is a single on-disk layer: its bounds, channel list, blend
// mode, opacity/clipping/flags, optional mask, blending ranges, name, and
// the additional-layer-info tagged blocks that carry everything from a
// modern Unicode name to a vector mask. Grounded on
// original_source/pytoshop/layers.py's LayerRecord.
type LayerRecord struct {
	Top, Left, Bottom, Right int32

	Channels map[ChannelID]*ChannelImageData

	BlendMode BlendMode
	Opacity   uint8
	Clipping  uint8
	flags     uint8 // raw flags byte, preserved across round-trips

	Mask            *LayerMask
	BlendingRanges  BlendingRanges
	Name            string
	AdditionalInfo  []TaggedBlock
}

// TransparencyProtected reports the layer record's flags bit 0.
func (l *LayerRecord) TransparencyProtected() bool { return l.flags&1 != 0 }

// SetTransparencyProtected sets flags bit 0.
func (l *LayerRecord) SetTransparencyProtected(v bool) { l.setFlag(1, v) }

// Visible reports whether the layer is shown; the on-disk bit is a
// "hidden" flag, so Visible is its complement (spec §3, a known gotcha of
// this format also handled this way by pytoshop's layers.py).
func (l *LayerRecord) Visible() bool { return l.flags&2 == 0 }

// SetVisible sets the layer's visibility.
func (l *LayerRecord) SetVisible(v bool) { l.setFlag(2, !v) }

// PixelDataIrrelevant reports flags bit 4. Bit 3 is a separate legacy
// "irrelevant" flag Photoshop forces on independently of this one and
// plays no part in this value (pytoshop's layers.py pixel_data_irrelevant).
func (l *LayerRecord) PixelDataIrrelevant() bool { return l.flags&16 != 0 }

func (l *LayerRecord) setFlag(bit uint8, v bool) {
	if v {
		l.flags |= bit
	} else {
		l.flags &^= bit
	}
}

// sectionDivider, IsFolderRecord and IsBoundingRecord inspect the
// lsct/lsdk section divider tagged block, if present, to classify this
// record's role in the flat-to-nested layer projection: a folder record
// IS a group (its name/blend mode/opacity belong to the group itself),
// while a bounding record is the sentinel marking where that group's
// member records begin in the flat, bottom-to-top list.
func (l *LayerRecord) sectionDivider() *SectionDividerSetting {
	for _, b := range l.AdditionalInfo {
		if sd, ok := b.(*SectionDividerSetting); ok {
			return sd
		}
	}
	return nil
}

func (l *LayerRecord) IsFolderRecord() bool {
	sd := l.sectionDivider()
	return sd != nil && (sd.Type == SectionDividerOpenFolder || sd.Type == SectionDividerClosedFolder)
}

func (l *LayerRecord) IsBoundingRecord() bool {
	sd := l.sectionDivider()
	return sd != nil && sd.Type == SectionDividerBoundingLayer
}

// unicodeName returns the luni tagged block's name when present, since a
// modern writer's Unicode name overrides the legacy Pascal-string Name.
func (l *LayerRecord) unicodeName() (string, bool) {
	for _, b := range l.AdditionalInfo {
		if un, ok := b.(*UnicodeLayerName); ok {
			return un.Name, true
		}
	}
	return "", false
}

// DisplayName returns the layer's Unicode name if one was stored,
// otherwise the legacy Pascal-string name.
func (l *LayerRecord) DisplayName() string {
	if name, ok := l.unicodeName(); ok {
		return name
	}
	return l.Name
}

func (l *LayerRecord) Width() int32  { return l.Right - l.Left }
func (l *LayerRecord) Height() int32 { return l.Bottom - l.Top }

// ChannelImage decodes a single channel's plane as a standard-library
// image.Image, using this record's bounds. depth is the owning
// document's Header.Depth — a record carries no depth of its own since
// every channel in a PSD shares the file-level depth.
func (l *LayerRecord) ChannelImage(id ChannelID, depth uint16) (image.Image, error) {
	ch, ok := l.Channels[id]
	if !ok {
		return nil, domainError("LayerRecord.ChannelImage", "no such channel on this record", id)
	}
	return ch.ToImage(int(l.Width()), int(l.Height()), depth)
}

func readLayerRecord(f *File, big bool, depth uint16) (*LayerRecord, error) {
	l := &LayerRecord{Channels: make(map[ChannelID]*ChannelImageData)}
	var err error
	if l.Top, err = f.ReadInt32(); err != nil {
		return nil, structuralError("LayerRecord", "failed to read top", nil)
	}
	if l.Left, err = f.ReadInt32(); err != nil {
		return nil, err
	}
	if l.Bottom, err = f.ReadInt32(); err != nil {
		return nil, err
	}
	if l.Right, err = f.ReadInt32(); err != nil {
		return nil, err
	}

	numChannels, err := f.ReadUint16()
	if err != nil {
		return nil, err
	}
	channelInfos := make([]layerChannelInfo, numChannels)
	for i := range channelInfos {
		idRaw, err := f.ReadInt16()
		if err != nil {
			return nil, err
		}
		length, err := f.readLength(big)
		if err != nil {
			return nil, err
		}
		channelInfos[i] = layerChannelInfo{ID: ChannelID(idRaw), Length: int64(length)}
	}

	sig, err := f.ReadString(4)
	if err != nil {
		return nil, structuralError("LayerRecord", "failed to read blend signature", nil)
	}
	if sig != "8BIM" {
		return nil, structuralError("LayerRecord", "bad blend mode signature", sig)
	}
	mode, err := f.ReadString(4)
	if err != nil {
		return nil, err
	}
	l.BlendMode = BlendMode(mode)

	opacity, err := f.ReadByte()
	if err != nil {
		return nil, err
	}
	l.Opacity = opacity
	clipping, err := f.ReadByte()
	if err != nil {
		return nil, err
	}
	l.Clipping = clipping
	flags, err := f.ReadByte()
	if err != nil {
		return nil, err
	}
	l.flags = flags
	if _, err := f.ReadByte(); err != nil { // filler, always zero
		return nil, err
	}

	extraLength, err := f.ReadUint32()
	if err != nil {
		return nil, err
	}
	extraStart, err := f.Tell()
	if err != nil {
		return nil, err
	}
	extraEnd := extraStart + int64(extraLength)

	if l.Mask, err = readLayerMask(f); err != nil {
		return nil, err
	}
	if err := l.BlendingRanges.Read(f); err != nil {
		return nil, err
	}
	name, err := f.ReadPascalString(4)
	if err != nil {
		return nil, structuralError("LayerRecord", "failed to read name", nil)
	}
	l.Name = name

	pos, err := f.Tell()
	if err != nil {
		return nil, err
	}
	if pos < extraEnd {
		blocks, err := readTaggedBlocks(f, extraEnd, big, 1)
		if err != nil {
			return nil, err
		}
		l.AdditionalInfo = blocks
	}

	pos, err = f.Tell()
	if err != nil {
		return nil, err
	}
	if pos < extraEnd {
		if err := f.Skip(extraEnd - pos); err != nil {
			return nil, err
		}
	}

	width, height := int(l.Width()), int(l.Height())
	for _, ci := range channelInfos {
		offset, err := f.Tell()
		if err != nil {
			return nil, err
		}
		if ci.Length < 2 {
			// empty channel: no compression code, no data
			if err := f.Skip(ci.Length); err != nil {
				return nil, err
			}
			l.Channels[ci.ID] = NewChannelImageData(CompressionRaw, []byte{})
			continue
		}
		compression, err := f.ReadUint16()
		if err != nil {
			return nil, err
		}
		dataLen := ci.Length - 2
		l.Channels[ci.ID] = newLazyChannelImageData(f, compression, offset+2, dataLen, width, height, depth, big)
		if err := f.Skip(dataLen); err != nil {
			return nil, err
		}
	}

	return l, nil
}

func writeLayerRecord(f *File, l *LayerRecord, big bool, depth uint16) error {
	f.WriteInt32(l.Top)
	f.WriteInt32(l.Left)
	f.WriteInt32(l.Bottom)
	f.WriteInt32(l.Right)

	ids := make([]ChannelID, 0, len(l.Channels))
	for id := range l.Channels {
		ids = append(ids, id)
	}
	sortChannelIDs(ids)

	if err := f.WriteUint16(uint16(len(ids))); err != nil {
		return err
	}

	width, height := int(l.Width()), int(l.Height())
	encoded := make(map[ChannelID][]byte, len(ids))
	for _, id := range ids {
		ch := l.Channels[id]
		var buf bytes.Buffer
		cf := &File{writer: &buf}
		if _, err := ch.Write(cf, width, height, depth, big); err != nil {
			return err
		}
		encoded[id] = buf.Bytes()
		if err := f.WriteInt16(int16(id)); err != nil {
			return err
		}
		if err := f.writeLength(big, uint64(len(encoded[id]))); err != nil {
			return err
		}
	}

	if err := f.WriteString("8BIM"); err != nil {
		return err
	}
	mode := string(l.BlendMode)
	if mode == "" {
		mode = string(BlendNormal)
	}
	if err := f.WriteString(mode); err != nil {
		return err
	}
	if err := f.WriteByte(l.Opacity); err != nil {
		return err
	}
	if err := f.WriteByte(l.Clipping); err != nil {
		return err
	}
	if err := f.WriteByte(l.flags); err != nil {
		return err
	}
	if err := f.WriteByte(0); err != nil { // filler
		return err
	}

	var extra bytes.Buffer
	ef := &File{writer: &extra}
	if err := writeLayerMask(ef, l.Mask); err != nil {
		return err
	}
	if err := l.BlendingRanges.Write(ef); err != nil {
		return err
	}
	if err := ef.WritePascalString(l.Name, 4); err != nil {
		return err
	}
	if err := writeTaggedBlocks(ef, l.AdditionalInfo, big, 1); err != nil {
		return err
	}
	if err := f.WriteUint32(uint32(extra.Len())); err != nil {
		return err
	}
	if _, err := f.Write(extra.Bytes()); err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := f.Write(encoded[id]); err != nil {
			return err
		}
	}
	return nil
}

func sortChannelIDs(ids []ChannelID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// LayerInfo is the layer-records section of LayerAndMaskInfo: a length
// prefix, a signed layer count (negative meaning "the first alpha channel
// holds the merged-result transparency"), the flat array of LayerRecord
// headers, then each record's channel image data in the same order.
// Grounded on original_source/pytoshop/layers.py's LayerInfo.
type LayerInfo struct {
	Layers           []*LayerRecord
	UsingAlphaChannel bool
}

func readLayerInfo(f *File, big bool, depth uint16) (*LayerInfo, error) {
	length, err := f.readLength(big)
	if err != nil {
		return nil, structuralError("LayerInfo", "failed to read length", nil)
	}
	info := &LayerInfo{}
	if length == 0 {
		return info, nil
	}
	start, err := f.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)

	count, err := f.ReadInt16()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		info.UsingAlphaChannel = true
		count = -count
	}

	info.Layers = make([]*LayerRecord, count)
	for i := range info.Layers {
		rec, err := readLayerRecord(f, big, depth)
		if err != nil {
			return nil, err
		}
		info.Layers[i] = rec
	}

	pos, err := f.Tell()
	if err != nil {
		return nil, err
	}
	if pos < end {
		if err := f.Skip(end - pos); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func (info *LayerInfo) write(f *File, big bool, depth uint16) error {
	var buf bytes.Buffer
	bf := &File{writer: &buf}

	count := int16(len(info.Layers))
	if info.UsingAlphaChannel {
		count = -count
	}
	if err := bf.WriteInt16(count); err != nil {
		return err
	}
	for _, l := range info.Layers {
		if err := writeLayerRecord(bf, l, big, depth); err != nil {
			return err
		}
	}

	if err := f.writeLength(big, uint64(buf.Len())); err != nil {
		return err
	}
	_, err := f.Write(buf.Bytes())
	return err
}

// GlobalLayerMaskInfo is the document-wide overlay color used by the
// legacy "quick mask" feature; it default-collapses to a 0-length block
// when unset, per spec DESIGN NOTES.
type GlobalLayerMaskInfo struct {
	set               bool
	OverlayColorSpace uint16
	ColorComponents   [4]uint16
	Opacity           uint16
	Kind              LayerMaskKind
}

func readGlobalLayerMaskInfo(f *File) (*GlobalLayerMaskInfo, error) {
	length, err := f.ReadUint32()
	if err != nil {
		return nil, structuralError("GlobalLayerMaskInfo", "failed to read length", nil)
	}
	g := &GlobalLayerMaskInfo{}
	if length == 0 {
		return g, nil
	}
	start, err := f.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)
	g.set = true

	if g.OverlayColorSpace, err = f.ReadUint16(); err != nil {
		return nil, err
	}
	for i := range g.ColorComponents {
		if g.ColorComponents[i], err = f.ReadUint16(); err != nil {
			return nil, err
		}
	}
	if g.Opacity, err = f.ReadUint16(); err != nil {
		return nil, err
	}
	kind, err := f.ReadByte()
	if err != nil {
		return nil, err
	}
	g.Kind = LayerMaskKind(kind)

	pos, err := f.Tell()
	if err != nil {
		return nil, err
	}
	if pos < end {
		if err := f.Skip(end - pos); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *GlobalLayerMaskInfo) write(f *File) error {
	if g == nil || !g.set {
		return f.WriteUint32(0)
	}
	var buf bytes.Buffer
	bf := &File{writer: &buf}
	bf.WriteUint16(g.OverlayColorSpace)
	for _, c := range g.ColorComponents {
		bf.WriteUint16(c)
	}
	bf.WriteUint16(g.Opacity)
	bf.WriteByte(byte(g.Kind))
	if err := f.WriteUint32(uint32(buf.Len())); err != nil {
		return err
	}
	_, err := f.Write(buf.Bytes())
	return err
}

// LayerAndMaskInfo is the top-level section after ColorModeData and
// ImageResources: the layer records, the global layer mask, and a tail of
// additional-layer-info tagged blocks (padding 4, unlike the padding-1
// blocks nested inside each LayerRecord's own extra data).
type LayerAndMaskInfo struct {
	LayerInfo           LayerInfo
	GlobalLayerMaskInfo *GlobalLayerMaskInfo
	AdditionalInfo      []TaggedBlock
}

func (lm *LayerAndMaskInfo) Read(f *File, big bool, depth uint16) error {
	logf("layer and mask info: parsing")
	length, err := f.readLength(big)
	if err != nil {
		return structuralError("LayerAndMaskInfo", "failed to read length", nil)
	}
	if length == 0 {
		return nil
	}
	start, err := f.Tell()
	if err != nil {
		return err
	}
	end := start + int64(length)

	info, err := readLayerInfo(f, big, depth)
	if err != nil {
		return err
	}
	lm.LayerInfo = *info

	global, err := readGlobalLayerMaskInfo(f)
	if err != nil {
		return err
	}
	lm.GlobalLayerMaskInfo = global

	pos, err := f.Tell()
	if err != nil {
		return err
	}
	if pos < end {
		blocks, err := readTaggedBlocks(f, end, big, 4)
		if err != nil {
			return err
		}
		lm.AdditionalInfo = blocks
	}

	pos, err = f.Tell()
	if err != nil {
		return err
	}
	if pos < end {
		if err := f.Skip(end - pos); err != nil {
			return err
		}
	}
	return nil
}

func (lm *LayerAndMaskInfo) Write(f *File, big bool, depth uint16) error {
	logf("layer and mask info: writing")
	var buf bytes.Buffer
	bf := &File{writer: &buf}

	if err := lm.LayerInfo.write(bf, big, depth); err != nil {
		return err
	}
	if err := lm.GlobalLayerMaskInfo.write(bf); err != nil {
		return err
	}
	if err := writeTaggedBlocks(bf, lm.AdditionalInfo, big, 4); err != nil {
		return err
	}

	if err := f.writeLength(big, uint64(buf.Len())); err != nil {
		return err
	}
	_, err := f.Write(buf.Bytes())
	return err
}
