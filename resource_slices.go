package psd

import "bytes"

// Rectangle is a top/left/bottom/right bounding box, as used by slices.
type Rectangle struct {
	Top    int32
	Left   int32
	Bottom int32
	Right  int32
}

// Slice is one slice entry, normalized across the legacy (v6) fixed-layout
// format and the v7/8 descriptor-encoded format.
type Slice struct {
	ID                int32
	GroupID           int32
	Origin            int32
	AssociatedLayerID int32
	Name              string
	Type              int32
	Bounds            Rectangle
	URL               string
	Target            string
	Message           string
	Alt               string
	CellTextIsHTML    bool
	CellText          string
	HorizontalAlign   int32
	VerticalAlign     int32
}

// SlicesResource is the decoded form of resource id 1050.
type SlicesResource struct {
	Version int32
	Bounds  Rectangle
	Name    string
	Slices  []Slice
}

// Guide is a single ruler guide.
type Guide struct {
	Position     int32
	IsHorizontal bool
}

// GuidesResource is the decoded form of the guides embedded in resource id
// 1032 (GridAndGuidesInfo).
type GuidesResource struct {
	Guides []Guide
}

// ParseSlices decodes the slices resource (id 1050), grounded on the
// teacher's ResourceSection.ParseSlices: version 6 is a flat binary
// layout, versions 7/8 wrap an OSType descriptor parsed via descriptor.go.
func (r *ImageResources) ParseSlices() (*SlicesResource, error) {
	res := r.Get(uint16(ResIDSlices))
	if res == nil || len(res.Data) == 0 {
		return &SlicesResource{Version: 6, Slices: []Slice{{ID: 0}}}, nil
	}

	f := NewBufferFile(res.Data)
	result := &SlicesResource{}
	version, err := f.ReadInt32()
	if err != nil {
		return nil, structuralError("SlicesResource", "failed to read version", nil)
	}
	result.Version = version

	if version == 6 {
		if err := readRectangle(f, &result.Bounds); err != nil {
			return nil, err
		}
		name, err := f.ReadUnicodeString()
		if err != nil {
			return nil, err
		}
		result.Name = name

		count, err := f.ReadInt32()
		if err != nil {
			return nil, err
		}
		result.Slices = make([]Slice, count)
		for i := range result.Slices {
			if err := readSliceV6(f, &result.Slices[i]); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	// v7/8: skip the descriptor version (always 16), then hand the rest
	// to the OSType descriptor parser.
	if _, err := f.ReadUint32(); err != nil {
		return nil, err
	}
	rest, err := readAll(f)
	if err != nil {
		return nil, err
	}
	desc, err := NewDescriptorParser(rest).Parse()
	if err != nil {
		return nil, structuralError("SlicesResource", "failed to parse v7/8 descriptor", nil)
	}
	result.Bounds = extractBounds(desc, "bounds")
	if baseName, ok := desc["baseName"].(string); ok {
		result.Name = baseName
	}
	if slicesArray, ok := desc["slices"].([]interface{}); ok {
		result.Slices = make([]Slice, len(slicesArray))
		for i, sliceData := range slicesArray {
			if sliceMap, ok := sliceData.(map[string]interface{}); ok {
				result.Slices[i] = normalizeSliceV7(sliceMap)
			}
		}
	}
	return result, nil
}

func readAll(f *File) ([]byte, error) {
	var buf bytes.Buffer
	tmp := make([]byte, 4096)
	for {
		n, err := f.reader.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil {
			break
		}
	}
	return buf.Bytes(), nil
}

func readRectangle(f *File, r *Rectangle) error {
	var err error
	if r.Top, err = f.ReadInt32(); err != nil {
		return err
	}
	if r.Left, err = f.ReadInt32(); err != nil {
		return err
	}
	if r.Bottom, err = f.ReadInt32(); err != nil {
		return err
	}
	r.Right, err = f.ReadInt32()
	return err
}

func readSliceV6(f *File, s *Slice) error {
	var err error
	if s.ID, err = f.ReadInt32(); err != nil {
		return err
	}
	if s.GroupID, err = f.ReadInt32(); err != nil {
		return err
	}
	if s.Origin, err = f.ReadInt32(); err != nil {
		return err
	}
	if s.Origin == 1 {
		if s.AssociatedLayerID, err = f.ReadInt32(); err != nil {
			return err
		}
	}
	if s.Name, err = f.ReadUnicodeString(); err != nil {
		return err
	}
	if s.Type, err = f.ReadInt32(); err != nil {
		return err
	}
	if err := readRectangle(f, &s.Bounds); err != nil {
		return err
	}
	if s.URL, err = f.ReadUnicodeString(); err != nil {
		return err
	}
	if s.Target, err = f.ReadUnicodeString(); err != nil {
		return err
	}
	if s.Message, err = f.ReadUnicodeString(); err != nil {
		return err
	}
	if s.Alt, err = f.ReadUnicodeString(); err != nil {
		return err
	}
	htmlFlag, err := f.ReadByte()
	if err != nil {
		return err
	}
	s.CellTextIsHTML = htmlFlag != 0
	if s.CellText, err = f.ReadUnicodeString(); err != nil {
		return err
	}
	if s.HorizontalAlign, err = f.ReadInt32(); err != nil {
		return err
	}
	if s.VerticalAlign, err = f.ReadInt32(); err != nil {
		return err
	}
	return f.Skip(4) // ARGB color, unused
}

// extractBounds pulls a Rectangle out of a parsed OSType descriptor map.
func extractBounds(data map[string]interface{}, key string) Rectangle {
	bounds := Rectangle{}
	if boundsMap, ok := data[key].(map[string]interface{}); ok {
		if top, ok := boundsMap["Top "].(int32); ok {
			bounds.Top = top
		}
		if left, ok := boundsMap["Left"].(int32); ok {
			bounds.Left = left
		}
		if bottom, ok := boundsMap["Btom"].(int32); ok {
			bounds.Bottom = bottom
		}
		if right, ok := boundsMap["Rght"].(int32); ok {
			bounds.Right = right
		}
	}
	return bounds
}

func normalizeSliceV7(data map[string]interface{}) Slice {
	slice := Slice{}
	if id, ok := data["sliceID"].(int32); ok {
		slice.ID = id
	}
	if groupID, ok := data["groupID"].(int32); ok {
		slice.GroupID = groupID
	}
	if origin, ok := data["origin"].(int32); ok {
		slice.Origin = origin
	}
	if sliceType, ok := data["Type"].(int32); ok {
		slice.Type = sliceType
	}
	slice.Bounds = extractBounds(data, "bounds")
	if url, ok := data["url"].(string); ok {
		slice.URL = url
	}
	if msg, ok := data["Msge"].(string); ok {
		slice.Message = msg
	}
	if alt, ok := data["altTag"].(string); ok {
		slice.Alt = alt
	}
	if cellText, ok := data["cellText"].(string); ok {
		slice.CellText = cellText
	}
	if htmlFlag, ok := data["cellTextIsHTML"].(bool); ok {
		slice.CellTextIsHTML = htmlFlag
	}
	if hAlign, ok := data["horzAlign"].(int32); ok {
		slice.HorizontalAlign = hAlign
	}
	if vAlign, ok := data["vertAlign"].(int32); ok {
		slice.VerticalAlign = vAlign
	}
	return slice
}

// ParseGuides decodes the guides embedded in the GridAndGuidesInfo
// resource (id 1032).
func (r *ImageResources) ParseGuides() (*GuidesResource, error) {
	res := r.Get(uint16(ResIDGridAndGuidesInfo))
	if res == nil {
		return &GuidesResource{}, nil
	}
	info, ok := res.Block.(*GridAndGuidesInfo)
	if !ok {
		return &GuidesResource{}, nil
	}
	out := &GuidesResource{Guides: make([]Guide, len(info.Guides))}
	for i, g := range info.Guides {
		out.Guides[i] = Guide{
			Position:     int32(g.Location),
			IsHorizontal: g.Direction == GuideHorizontal,
		}
	}
	return out, nil
}

// LayerComp is a named snapshot of layer visibility/position/style —
// descriptor-encoded in resource id 1065. Interpreting the descriptor
// payload beyond slices/guides is a non-goal (spec.md §1), so this
// remains a name-only stub, matching the teacher's own LayerComps.
type LayerComp struct {
	ID   int
	Name string
}

// LayerComps always returns an empty list: resource 1065 is not decoded
// into LayerComp values. See LayerComp.
func (r *ImageResources) LayerComps() []LayerComp {
	return []LayerComp{}
}
