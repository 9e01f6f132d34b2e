package psd

import "fmt"

// Color modes, as stored in the file header.
const (
	ColorModeBitmap       = 0
	ColorModeGrayscale    = 1
	ColorModeIndexedColor = 2
	ColorModeRGBColor     = 3
	ColorModeCMYKColor    = 4
	ColorModeMultichannel = 7
	ColorModeDuotone      = 8
	ColorModeLabColor     = 9
)

var colorModeNames = map[int]string{
	0: "Bitmap", 1: "GrayScale", 2: "IndexedColor", 3: "RGBColor",
	4: "CMYKColor", 7: "Multichannel", 8: "Duotone", 9: "LabColor",
}

// ModeName returns the human-readable color mode name, falling back to a
// numeric placeholder for codes this table doesn't carry.
func ModeName(mode uint16) string {
	if name, ok := colorModeNames[int(mode)]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", mode)
}

// Compression codes used by both the per-channel layer data and the
// composite image data section.
const (
	CompressionRaw           uint16 = 0
	CompressionRLE           uint16 = 1
	CompressionZIP           uint16 = 2
	CompressionZIPPrediction uint16 = 3
)

// ChannelID identifies a channel within a layer record's channel list.
// Non-negative values are color channels (0=R/Gray/Cyan, 1=G/Magenta,
// 2=B/Yellow, 3=K for CMYK); -1 is transparency, -2 is a user layer mask,
// -3 is a real (pre-vector-mask) user layer mask.
type ChannelID int16

const (
	ChannelTransparency   ChannelID = -1
	ChannelUserMask       ChannelID = -2
	ChannelRealUserMask   ChannelID = -3
)

// LayerMaskKind is the GlobalLayerMaskInfo "kind" byte.
type LayerMaskKind uint8

const (
	LayerMaskKindColorSelected   LayerMaskKind = 0
	LayerMaskKindColorProtected  LayerMaskKind = 1
	LayerMaskKindUseValueStored  LayerMaskKind = 128
)

// SectionDividerType is the lsct/lsdk tagged block's group-structure tag.
type SectionDividerType uint32

const (
	SectionDividerOther         SectionDividerType = 0
	SectionDividerOpenFolder    SectionDividerType = 1
	SectionDividerClosedFolder  SectionDividerType = 2
	SectionDividerBoundingLayer SectionDividerType = 3
)

func (t SectionDividerType) String() string {
	switch t {
	case SectionDividerOpenFolder:
		return "open_folder"
	case SectionDividerClosedFolder:
		return "closed_folder"
	case SectionDividerBoundingLayer:
		return "bounding_section_divider"
	default:
		return "other"
	}
}

// PathRecordType identifies a record within a PathResource / vector mask.
type PathRecordType uint16

const (
	PathRecordClosedSubpathLength       PathRecordType = 0
	PathRecordClosedSubpathBezierLinked PathRecordType = 1
	PathRecordClosedSubpathBezierUnlink PathRecordType = 2
	PathRecordOpenSubpathLength         PathRecordType = 3
	PathRecordOpenSubpathBezierLinked   PathRecordType = 4
	PathRecordOpenSubpathBezierUnlink   PathRecordType = 5
	PathRecordPathFillRule              PathRecordType = 6
	PathRecordClipboard                 PathRecordType = 7
	PathRecordInitialFillRule           PathRecordType = 8
)

// ImageResourceID enumerates the resource_id values this package gives a
// typed record to; every other id falls back to a generic opaque block.
type ImageResourceID uint16

const (
	ResIDLayersGroupInfo              ImageResourceID = 1026
	ResIDBorderInfo                   ImageResourceID = 1009
	ResIDBackgroundColor              ImageResourceID = 1010
	ResIDPrintFlags                   ImageResourceID = 1011
	ResIDGridAndGuidesInfo            ImageResourceID = 1032
	ResIDCopyrightFlag                ImageResourceID = 1034
	ResIDURL                          ImageResourceID = 1035
	ResIDGlobalAngle                  ImageResourceID = 1037
	ResIDEffectsVisible               ImageResourceID = 1042
	ResIDDocumentSpecificIdsSeed      ImageResourceID = 1044
	ResIDUnicodeAlphaNames            ImageResourceID = 1045
	ResIDGlobalAltitude               ImageResourceID = 1049
	ResIDWorkflowURL                  ImageResourceID = 1051
	ResIDAlphaIdentifiers             ImageResourceID = 1053
	ResIDVersionInfo                  ImageResourceID = 1057
	ResIDPrintScale                   ImageResourceID = 1062
	ResIDSlices                       ImageResourceID = 1050
)

// Units used by PrintFlags/BorderInfo style resources.
type Units uint16

const (
	UnitsInches      Units = 0
	UnitsCM          Units = 1
	UnitsPoints      Units = 2
	UnitsPicas       Units = 3
	UnitsColumns     Units = 4
)

// GuideDirection is a single guide's orientation.
type GuideDirection uint8

const (
	GuideVertical   GuideDirection = 0
	GuideHorizontal GuideDirection = 1
)

// PrintScaleStyle is the PrintScale resource's style field.
type PrintScaleStyle uint16

const (
	PrintScaleCentered    PrintScaleStyle = 0
	PrintScaleSizeToFit   PrintScaleStyle = 1
	PrintScaleUserDefined PrintScaleStyle = 2
)
