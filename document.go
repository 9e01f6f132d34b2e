package psd

// BuildPSD assembles a full PSD/PSB document from a nested layer tree,
// the inverse direction of PSD.Tree: it determines the document's
// channel count and bit depth from the tree's own channel data, sizes
// the canvas (or accepts a caller-supplied size), flattens the tree into
// the flat on-disk layer list, and fills in Header/Resources/
// LayerAndMask accordingly. The composite ImageData section is left
// empty — synthesizing a composite from layers is rendering, which this
// package does not do (spec §1 Non-goals); callers that need a populated
// composite set PSD.Image themselves. Grounded on
// original_source/pytoshop/user/nested_layers.py's nested_layers_to_psd.
func BuildPSD(tree []LayerNode, colorMode uint16, version uint16, size *[2]int32) (*PSD, error) {
	numChannels, depth, err := DetermineChannelsAndDepth(tree)
	if err != nil {
		return nil, err
	}

	var width, height int32
	if size != nil {
		width, height = size[0], size[1]
	} else {
		width, height = NormalizeTreePositions(tree)
	}

	info, groupIDs, err := NestedLayersToPSD(tree)
	if err != nil {
		return nil, err
	}

	p := &PSD{
		Header: Header{
			Version:  version,
			Channels: uint16(numChannels),
			Rows:     uint32(height),
			Cols:     uint32(width),
			Depth:    depth,
			Mode:     colorMode,
		},
	}
	p.LayerAndMask.LayerInfo = *info
	p.Resources.setLayersGroupInfo(groupIDs)
	return p, nil
}

// DetermineChannelsAndDepth inspects every Image leaf's channel data to
// find the document-wide channel count (the highest channel_id + 1 among
// non-constant channels) and bit depth, rejecting a tree whose materialized
// channels disagree on depth. A scalar (constant) channel carries no
// depth information and is skipped, matching pytoshop's
// _determine_channels_and_depth, which only inspects array-backed
// channels.
func DetermineChannelsAndDepth(tree []LayerNode) (numChannels int, depth uint16, err error) {
	haveDepth := false
	for _, im := range SubtreeLayers(tree) {
		for id, ch := range im.Channels {
			if ch == nil || ch.isConstant {
				continue
			}
			if id >= 0 && int(id)+1 > numChannels {
				numChannels = int(id) + 1
			}
			data, derr := ch.Image()
			if derr != nil {
				return 0, 0, derr
			}
			w, h := int(im.Width()), int(im.Height())
			if w <= 0 || h <= 0 || w*h == 0 {
				continue
			}
			chDepth, ok := inferDepth(len(data), w*h)
			if !ok {
				continue
			}
			if !haveDepth {
				depth = chDepth
				haveDepth = true
			} else if depth != chDepth {
				return 0, 0, shapeError("BuildPSD", "mixed channel depths in layer tree", chDepth)
			}
		}
	}
	if numChannels == 0 || !haveDepth {
		return 0, 0, domainError("BuildPSD", "cannot determine channel count or depth from an empty tree", nil)
	}
	return numChannels, depth, nil
}

// inferDepth recovers the likely bit depth of a decoded plane from its
// byte length: a plane is stored one sample per pixel at 1 or 4 bytes, or
// two bytes for 16-bit. Depth-1 and depth-8 planes are indistinguishable
// this way (both are one byte per pixel in memory, per spec §4.2) — as
// in pytoshop, a byte-per-pixel plane is always taken to mean depth 8.
func inferDepth(byteLen, pixels int) (uint16, bool) {
	if pixels == 0 {
		return 0, false
	}
	switch byteLen / pixels {
	case 1:
		return 8, true
	case 2:
		return 16, true
	case 4:
		return 32, true
	default:
		return 0, false
	}
}

// NormalizeTreePositions implements spec §4.6's size-normalization step:
// it finds the bounding box of every Image leaf in tree, translates every
// leaf so the minimum top/left becomes (0,0), and returns the resulting
// canvas (width, height). Grounded on
// original_source/pytoshop/user/nested_layers.py's _adjust_positions.
func NormalizeTreePositions(tree []LayerNode) (width, height int32) {
	images := SubtreeLayers(tree)
	if len(images) == 0 {
		return 0, 0
	}
	top, left := images[0].Top, images[0].Left
	bottom, right := images[0].Bottom, images[0].Right
	for _, im := range images[1:] {
		if im.Top < top {
			top = im.Top
		}
		if im.Left < left {
			left = im.Left
		}
		if im.Bottom > bottom {
			bottom = im.Bottom
		}
		if im.Right > right {
			right = im.Right
		}
	}
	for _, im := range images {
		im.Top -= top
		im.Left -= left
		im.Bottom -= top
		im.Right -= left
	}
	return right - left, bottom - top
}
