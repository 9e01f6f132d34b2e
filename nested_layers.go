package psd

import "strings"

// LayerNode is either a Group or an Image: the user-facing tree the flat,
// on-disk LayerInfo list projects into. Grounded on
// original_source/pytoshop/user/nested_layers.py's Layer/Group/Image
// classes and the teacher's node.go traversal API, retargeted from a
// single Node type carrying a *Layer onto this two-constructor model.
type LayerNode interface {
	layerNode()
	NodeName() string
	IsVisible() bool
}

// Group is a folder: a named, orderable container of child layers/groups.
// Closed controls whether Photoshop shows it collapsed in the layers
// panel; it carries no effect on pixel data.
type Group struct {
	Name      string
	Visible   bool
	Opacity   uint8
	BlendMode BlendMode
	Closed    bool
	ID        int32
	Layers    []LayerNode
}

func (*Group) layerNode()          {}
func (g *Group) NodeName() string  { return g.Name }
func (g *Group) IsVisible() bool   { return g.Visible }

// Image is a leaf layer: its bounds, channels, and optional vector mask.
type Image struct {
	Name       string
	Visible    bool
	Opacity    uint8
	BlendMode  BlendMode
	Top, Left, Bottom, Right int32
	ID         int32
	Channels   map[ChannelID]*ChannelImageData
	VectorMask *PathResource
}

func (*Image) layerNode()          {}
func (im *Image) NodeName() string { return im.Name }
func (im *Image) IsVisible() bool  { return im.Visible }
func (im *Image) Width() int32     { return im.Right - im.Left }
func (im *Image) Height() int32    { return im.Bottom - im.Top }

// layerID returns the lyid tagged block's id, or 0 if the record never
// got one assigned.
func (l *LayerRecord) layerID() int32 {
	for _, b := range l.AdditionalInfo {
		if id, ok := b.(*LayerID); ok {
			return id.ID
		}
	}
	return 0
}

func layerRecordToImage(l *LayerRecord) *Image {
	im := &Image{
		Name:      l.DisplayName(),
		Visible:   l.Visible(),
		Opacity:   l.Opacity,
		BlendMode: l.BlendMode,
		Top:       l.Top,
		Left:      l.Left,
		Bottom:    l.Bottom,
		Right:     l.Right,
		ID:        l.layerID(),
		Channels:  l.Channels,
	}
	for _, b := range l.AdditionalInfo {
		if vm, ok := b.(*VectorMask); ok {
			im.VectorMask = vm.Path
		}
	}
	return im
}

// PSDToNestedLayers projects a flat LayerInfo's bottom-to-top record list
// into the Group/Image tree Photoshop's layers panel shows. The on-disk
// list is produced by flattening the tree in pre-order — a group's own
// record, then its children, then its closing bounding record — and
// reversing that whole sequence once at the end, so recovering the tree
// means walking the on-disk list from its last record back to its first:
// an open/closed section-divider record starts a new group (pushed as
// current) and a bounding-section-divider record closes the innermost
// open group (popped). A bounding record seen with no group open at all
// — a legacy file that never wrote an explicit opening divider for its
// one implicit top-level group — recovers by taking the oldest
// already-collected sibling as a naming template for the synthetic group
// and wrapping the rest; with nothing collected yet the record is simply
// ignored. Grounded on
// original_source/pytoshop/user/nested_layers.py's psd_to_nested_layers.
func PSDToNestedLayers(info *LayerInfo) []LayerNode {
	root := &Group{}
	stack := []*Group{root}

	for i := len(info.Layers) - 1; i >= 0; i-- {
		rec := info.Layers[i]
		current := stack[len(stack)-1]

		switch {
		case rec.IsFolderRecord():
			sd := rec.sectionDivider()
			g := &Group{
				Name:      rec.DisplayName(),
				Visible:   rec.Visible(),
				Opacity:   rec.Opacity,
				BlendMode: rec.BlendMode,
				Closed:    sd != nil && sd.Type == SectionDividerClosedFolder,
				ID:        rec.layerID(),
			}
			current.Layers = append(current.Layers, g)
			stack = append(stack, g)
		case rec.IsBoundingRecord():
			if len(stack) == 1 {
				children := root.Layers
				if len(children) == 0 {
					continue
				}
				template := children[0]
				g := &Group{Name: template.NodeName(), Visible: template.IsVisible(), Layers: children[1:]}
				switch t := template.(type) {
				case *Image:
					g.Opacity, g.BlendMode = t.Opacity, t.BlendMode
				case *Group:
					g.Opacity, g.BlendMode = t.Opacity, t.BlendMode
				}
				root.Layers = []LayerNode{g}
				continue
			}
			stack = stack[:len(stack)-1]
		default:
			current.Layers = append(current.Layers, layerRecordToImage(rec))
		}
	}
	return root.Layers
}

// flattenState accumulates the flat record list in top-to-bottom pre-order
// (NestedLayersToPSD reverses it into on-disk order) and the
// parallel group-id list (spec's LayersGroupInfo resource) that
// NestedLayersToPSD's caller persists alongside it.
type flattenState struct {
	records  []*LayerRecord
	groupIDs []uint16
	nextGID  uint16
}

// NestedLayersToPSD is the inverse of PSDToNestedLayers: a depth-first,
// pre-order walk (group-then-children, matching how the folder record
// sits above its bounding divider once reversed) that emits LayerRecords
// plus the group-id-per-record table. Grounded on nested_layers.py's
// nested_layers_to_psd/_flatten_layers.
func NestedLayersToPSD(tree []LayerNode) (*LayerInfo, []uint16, error) {
	st := &flattenState{}
	if err := flattenInto(st, tree, 0); err != nil {
		return nil, nil, err
	}
	if len(st.records) == 0 {
		return nil, nil, domainError("NestedLayersToPSD", "no images found in tree", nil)
	}
	// records/groupIDs were appended in pre-order (top-to-bottom); the
	// on-disk list is bottom-to-top, so reverse both before returning.
	reverseRecords(st.records)
	reverseUint16(st.groupIDs)
	return &LayerInfo{Layers: st.records}, st.groupIDs, nil
}

func flattenInto(st *flattenState, nodes []LayerNode, groupID uint16) error {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Group:
			st.nextGID++
			myID := st.nextGID
			folderType := SectionDividerOpenFolder
			if v.Closed {
				folderType = SectionDividerClosedFolder
			}
			folder := &LayerRecord{
				Name:      v.Name,
				BlendMode: v.BlendMode,
				Opacity:   v.Opacity,
				Channels:  map[ChannelID]*ChannelImageData{},
				AdditionalInfo: []TaggedBlock{
					&SectionDividerSetting{Type: folderType, BlendMode: string(v.BlendMode)},
					&UnicodeLayerName{Name: v.Name},
					&LayerID{ID: v.ID},
				},
			}
			folder.SetVisible(v.Visible)
			st.records = append(st.records, folder)
			st.groupIDs = append(st.groupIDs, groupID)

			if err := flattenInto(st, v.Layers, myID); err != nil {
				return err
			}

			bounding := &LayerRecord{
				Channels: map[ChannelID]*ChannelImageData{},
				AdditionalInfo: []TaggedBlock{
					&SectionDividerSetting{Type: SectionDividerBoundingLayer},
					&LayerNameSource{ID: v.ID},
				},
			}
			st.records = append(st.records, bounding)
			st.groupIDs = append(st.groupIDs, groupID)
		case *Image:
			// an image whose transparency channel is entirely zero is left out.
			if alpha := v.Channels[ChannelTransparency]; alpha != nil {
				empty := alpha.isConstant && alpha.constantValue == 0
				if !alpha.isConstant {
					data, err := alpha.Image()
					if err != nil {
						return err
					}
					empty = strings.Trim(string(data), "\x00") == ""
				}
				if empty {
					continue
				}
			}
			rec := imageToLayerRecord(v)
			st.records = append(st.records, rec)
			st.groupIDs = append(st.groupIDs, groupID)
		}
	}
	return nil
}

func imageToLayerRecord(im *Image) *LayerRecord {
	rec := &LayerRecord{
		Top: im.Top, Left: im.Left, Bottom: im.Bottom, Right: im.Right,
		BlendMode: im.BlendMode,
		Opacity:   im.Opacity,
		Clipping:  0,
		Name:      im.Name,
		Channels:  im.Channels,
		AdditionalInfo: []TaggedBlock{
			&UnicodeLayerName{Name: im.Name},
			&LayerID{ID: im.ID},
		},
	}
	rec.SetVisible(im.Visible)
	if im.VectorMask != nil {
		rec.AdditionalInfo = append(rec.AdditionalInfo, &VectorMask{Path: im.VectorMask})
	}
	if rec.Channels == nil {
		rec.Channels = map[ChannelID]*ChannelImageData{}
	}
	// an image with no alpha channel and no vector mask still needs one
	// to round-trip as fully opaque; a constant channel never
	// materializes the plane (spec DESIGN NOTES "constant-channel
	// virtual encode").
	if _, ok := rec.Channels[ChannelTransparency]; !ok && im.VectorMask == nil {
		rec.Channels[ChannelTransparency] = NewConstantChannelImageData(CompressionRaw, 255)
	}
	return rec
}

func reverseRecords(s []*LayerRecord) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseUint16(s []uint16) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// --- traversal convenience, adapted from the teacher's node.go Node API ---

// Descendants returns every Image and Group beneath a Group, depth-first.
func (g *Group) Descendants() []LayerNode {
	var out []LayerNode
	for _, child := range g.Layers {
		out = append(out, child)
		if sub, ok := child.(*Group); ok {
			out = append(out, sub.Descendants()...)
		}
	}
	return out
}

// SubtreeLayers returns every Image beneath (and including, if it is one)
// a tree rooted at nodes.
func SubtreeLayers(nodes []LayerNode) []*Image {
	var out []*Image
	for _, n := range nodes {
		switch v := n.(type) {
		case *Image:
			out = append(out, v)
		case *Group:
			out = append(out, SubtreeLayers(v.Layers)...)
		}
	}
	return out
}

// SubtreeGroups returns every Group beneath a tree rooted at nodes.
func SubtreeGroups(nodes []LayerNode) []*Group {
	var out []*Group
	for _, n := range nodes {
		if g, ok := n.(*Group); ok {
			out = append(out, g)
			out = append(out, SubtreeGroups(g.Layers)...)
		}
	}
	return out
}

// ChildrenAtPath resolves a "/"-separated path of group/layer names
// against a tree, returning every node whose ancestor chain matches.
func ChildrenAtPath(nodes []LayerNode, path string) []LayerNode {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		return nil
	}
	return findAtPath(nodes, parts)
}

func findAtPath(nodes []LayerNode, parts []string) []LayerNode {
	if len(parts) == 0 {
		return nodes
	}
	target, remaining := parts[0], parts[1:]
	var results []LayerNode
	for _, n := range nodes {
		if n.NodeName() != target {
			continue
		}
		if len(remaining) == 0 {
			results = append(results, n)
			continue
		}
		if g, ok := n.(*Group); ok {
			results = append(results, findAtPath(g.Layers, remaining)...)
		}
	}
	return results
}

// ToHash renders a tree as a plain map structure, convenient for
// diagnostics and JSON export.
func ToHash(nodes []LayerNode) []map[string]interface{} {
	out := make([]map[string]interface{}, len(nodes))
	for i, n := range nodes {
		switch v := n.(type) {
		case *Group:
			out[i] = map[string]interface{}{
				"type":    "group",
				"name":    v.Name,
				"visible": v.Visible,
				"opacity": float64(v.Opacity) / 255.0,
				"mode":    v.BlendMode.Name(),
				"closed":  v.Closed,
				"layers":  ToHash(v.Layers),
			}
		case *Image:
			out[i] = map[string]interface{}{
				"type":    "layer",
				"name":    v.Name,
				"visible": v.Visible,
				"opacity": float64(v.Opacity) / 255.0,
				"mode":    v.BlendMode.Name(),
				"left":    v.Left,
				"top":     v.Top,
				"right":   v.Right,
				"bottom":  v.Bottom,
				"width":   v.Width(),
				"height":  v.Height(),
			}
		}
	}
	return out
}
