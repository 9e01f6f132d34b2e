package psd

import (
	"fmt"
	"os"
)

// PSD is a full Photoshop document: the fixed header, the color mode
// data, the image resources, the layer-and-mask section, and the
// composite image data, composed in the fixed on-disk order (spec §6's
// top-level file layout table). Grounded on the teacher's psd.go PSD
// type, kept for the New/Open/Parse/lazy-accessor shape and extended with
// a symmetric Write path the teacher never had (it is read-only).
type PSD struct {
	file *File

	Header          Header
	ColorModeData   ColorModeData
	Resources       ImageResources
	LayerAndMask    LayerAndMaskInfo
	Image           ImageData

	parsed bool
}

// New opens filename for reading without parsing it; call Parse (or use
// Open) to decode its sections.
func New(filename string) (*PSD, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return &PSD{file: NewReaderFile(f)}, nil
}

// Open opens filename, parses it, invokes fn, and closes the file
// afterward regardless of fn's outcome.
func Open(filename string, fn func(*PSD) error) error {
	p, err := New(filename)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Parse(); err != nil {
		return err
	}
	return fn(p)
}

// Close closes the underlying file, if this PSD owns one.
func (p *PSD) Close() error {
	if p.file == nil {
		return nil
	}
	if closer, ok := p.file.seek.(*os.File); ok {
		return closer.Close()
	}
	return nil
}

// Parsed reports whether Parse has completed successfully.
func (p *PSD) Parsed() bool { return p.parsed }

// Parse decodes every section in file order: Header, ColorModeData,
// ImageResources, LayerAndMaskInfo, then the composite ImageData.
func (p *PSD) Parse() error {
	if p.file == nil {
		return structuralError("PSD", "no source to parse", nil)
	}
	p.Header.file = p.file
	if err := p.Header.Parse(); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	big := p.Header.IsBig()

	if err := p.ColorModeData.Read(p.file, big); err != nil {
		return fmt.Errorf("color mode data: %w", err)
	}

	if err := p.Resources.Read(p.file); err != nil {
		return fmt.Errorf("image resources: %w", err)
	}

	if err := p.LayerAndMask.Read(p.file, big, p.Header.Depth); err != nil {
		return fmt.Errorf("layer and mask info: %w", err)
	}

	if err := p.Image.Read(p.file, &p.Header); err != nil {
		return fmt.Errorf("image data: %w", err)
	}

	p.parsed = true
	return nil
}

// WriteFile creates (or truncates) filename and writes every section of
// p to it in file order.
func (p *PSD) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Write(NewWriterFile(f))
}

// Write emits every section to sink in file order: Header, ColorModeData,
// ImageResources, LayerAndMaskInfo, composite ImageData.
func (p *PSD) Write(sink *File) error {
	p.Header.file = sink
	if err := p.Header.Write(); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	big := p.Header.IsBig()

	if err := p.ColorModeData.Write(sink, big); err != nil {
		return fmt.Errorf("color mode data: %w", err)
	}

	if err := p.Resources.Write(sink); err != nil {
		return fmt.Errorf("image resources: %w", err)
	}

	if err := p.LayerAndMask.Write(sink, big, p.Header.Depth); err != nil {
		return fmt.Errorf("layer and mask info: %w", err)
	}

	return p.Image.Write(sink, &p.Header)
}

// Layers returns the flat, on-disk (bottom-to-top) layer record list.
func (p *PSD) Layers() []*LayerRecord {
	return p.LayerAndMask.LayerInfo.Layers
}

// Tree projects the flat layer list into the nested Group/Image view
// (§4.6); it is recomputed on each call since the flat list is the
// source of truth and may have been mutated since the last projection.
func (p *PSD) Tree() []LayerNode {
	return PSDToNestedLayers(&p.LayerAndMask.LayerInfo)
}

// SetTree replaces the document's flat layer list and group-id resource
// from a nested tree, the inverse of Tree.
func (p *PSD) SetTree(tree []LayerNode) error {
	info, groupIDs, err := NestedLayersToPSD(tree)
	if err != nil {
		return err
	}
	p.LayerAndMask.LayerInfo = *info
	p.Resources.setLayersGroupInfo(groupIDs)
	return nil
}
