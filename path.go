package psd

import (
	"bytes"
	"math"
)

// PathRecordType dispatch (the type itself and its constants live in
// enums.go). pytoshop's path.py dispatches via a HasTraits metaclass
// registry; spec §9 REDESIGN FLAGS asks for an explicit constructor table
// instead, so newPathRecord below is a plain switch rather than runtime
// registration.

// fixedPoint24_8 mirrors the on-disk 24.8 fixed-point path coordinate:
// a value scaled against its axis dimension into a 32-bit integer with
// 24 fractional bits (scale 2^24), per pytoshop's path.py _read_point/_write_point.
func readFixedPoint24_8(f *File, dimension float64) (float64, error) {
	raw, err := f.ReadUint32()
	if err != nil {
		return 0, err
	}
	return (float64(raw) / float64(1<<24)) * dimension, nil
}

func writeFixedPoint24_8(f *File, value, dimension float64) error {
	encoded := uint32(math.Round((value / dimension) * float64(1<<24)))
	return f.WriteUint32(encoded)
}

// PathPoint is one Bezier control point: a vertical/horizontal pair of
// anchor, leading, and trailing handle coordinates expressed as fractions
// of the image height/width.
type PathPoint struct {
	PrecedingVert, PrecedingHoriz float64
	AnchorVert, AnchorHoriz       float64
	LeavingVert, LeavingHoriz     float64
}

func readPathPoint(f *File, height, width float64) (PathPoint, error) {
	var p PathPoint
	var err error
	if p.PrecedingVert, err = readFixedPoint24_8(f, height); err != nil {
		return p, err
	}
	if p.PrecedingHoriz, err = readFixedPoint24_8(f, width); err != nil {
		return p, err
	}
	if p.AnchorVert, err = readFixedPoint24_8(f, height); err != nil {
		return p, err
	}
	if p.AnchorHoriz, err = readFixedPoint24_8(f, width); err != nil {
		return p, err
	}
	if p.LeavingVert, err = readFixedPoint24_8(f, height); err != nil {
		return p, err
	}
	if p.LeavingHoriz, err = readFixedPoint24_8(f, width); err != nil {
		return p, err
	}
	return p, nil
}

func writePathPoint(f *File, p PathPoint, height, width float64) error {
	for _, c := range []struct {
		v, dim float64
	}{
		{p.PrecedingVert, height}, {p.PrecedingHoriz, width},
		{p.AnchorVert, height}, {p.AnchorHoriz, width},
		{p.LeavingVert, height}, {p.LeavingHoriz, width},
	} {
		if err := writeFixedPoint24_8(f, c.v, c.dim); err != nil {
			return err
		}
	}
	return nil
}

// PathRecord is one 26-byte record of a path resource. decode/encode work
// against the 24-byte payload that follows the 2-byte type selector;
// height/width give the axis dimensions the 24.8 fixed-point fields are
// scaled against.
type PathRecord interface {
	RecordType() PathRecordType
	decode(data []byte, height, width float64) error
	encode(height, width float64) ([]byte, error)
}

// PathFillRuleRecord (type 6) carries no payload of its own; its presence
// in the record stream is the only signal Photoshop needs.
// InitialFillRuleRecord (type 8) carries a single IsFilledStart flag.
type PathFillRuleRecord struct{}

func (r *PathFillRuleRecord) RecordType() PathRecordType { return PathRecordPathFillRule }
func (r *PathFillRuleRecord) decode(data []byte, height, width float64) error { return nil }
func (r *PathFillRuleRecord) encode(height, width float64) ([]byte, error) { return make([]byte, 24), nil }

type InitialFillRuleRecord struct{ IsFilledStart bool }

func (r *InitialFillRuleRecord) RecordType() PathRecordType { return PathRecordInitialFillRule }
func (r *InitialFillRuleRecord) decode(data []byte, height, width float64) error {
	r.IsFilledStart = len(data) >= 2 && (data[0] != 0 || data[1] != 0)
	return nil
}
func (r *InitialFillRuleRecord) encode(height, width float64) ([]byte, error) {
	out := make([]byte, 24)
	if r.IsFilledStart {
		out[1] = 1
	}
	return out, nil
}

// lengthRecord backs both ClosedSubpathLengthRecord (type 0) and
// OpenSubpathLengthRecord (type 3): a point count announcing how many
// knot records of the matching open/closed kind follow.
type lengthRecord struct {
	closed bool
	Count  uint32
}

func (r *lengthRecord) RecordType() PathRecordType {
	if r.closed {
		return PathRecordClosedSubpathLength
	}
	return PathRecordOpenSubpathLength
}
func (r *lengthRecord) decode(data []byte, height, width float64) error {
	f := NewBufferFile(data)
	v, err := f.ReadUint32()
	r.Count = v
	return err
}
func (r *lengthRecord) encode(height, width float64) ([]byte, error) {
	out := make([]byte, 24)
	out[0] = byte(r.Count >> 24)
	out[1] = byte(r.Count >> 16)
	out[2] = byte(r.Count >> 8)
	out[3] = byte(r.Count)
	return out, nil
}

// ClosedSubpathLengthRecord announces the knot count for the following
// closed-subpath Bezier knots.
type ClosedSubpathLengthRecord struct{ lengthRecord }

// OpenSubpathLengthRecord announces the knot count for the following
// open-subpath Bezier knots.
type OpenSubpathLengthRecord struct{ lengthRecord }

// knotRecord backs the four Bezier-knot record kinds: open/closed crossed
// with linked/unlinked.
type knotRecord struct {
	kind  PathRecordType
	Point PathPoint
}

func (r *knotRecord) RecordType() PathRecordType { return r.kind }
func (r *knotRecord) decode(data []byte, height, width float64) error {
	p, err := readPathPoint(NewBufferFile(data), height, width)
	r.Point = p
	return err
}
func (r *knotRecord) encode(height, width float64) ([]byte, error) {
	var buf bytes.Buffer
	f := &File{writer: &buf}
	if err := writePathPoint(f, r.Point, height, width); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ClosedSubpathBezierKnotLinked is a closed-subpath knot whose handles are
// linked (smooth point).
type ClosedSubpathBezierKnotLinked struct{ knotRecord }

// ClosedSubpathBezierKnotUnlinked is a closed-subpath knot with independent
// handles (corner point).
type ClosedSubpathBezierKnotUnlinked struct{ knotRecord }

// OpenSubpathBezierKnotLinked is an open-subpath linked knot.
type OpenSubpathBezierKnotLinked struct{ knotRecord }

// OpenSubpathBezierKnotUnlinked is an open-subpath unlinked knot.
type OpenSubpathBezierKnotUnlinked struct{ knotRecord }

// ClipboardRecord (type 7) records the bounding box and resolution the
// path was copied at.
type ClipboardRecord struct {
	Top, Left, Bottom, Right float64
	Resolution               float64
}

func (r *ClipboardRecord) RecordType() PathRecordType { return PathRecordClipboard }
func (r *ClipboardRecord) decode(data []byte, height, width float64) error {
	f := NewBufferFile(data)
	var err error
	if r.Top, err = readFixedPoint24_8(f, height); err != nil {
		return err
	}
	if r.Left, err = readFixedPoint24_8(f, width); err != nil {
		return err
	}
	if r.Bottom, err = readFixedPoint24_8(f, height); err != nil {
		return err
	}
	if r.Right, err = readFixedPoint24_8(f, width); err != nil {
		return err
	}
	r.Resolution, err = readFixedPoint24_8(f, 1)
	return err
}
func (r *ClipboardRecord) encode(height, width float64) ([]byte, error) {
	var buf bytes.Buffer
	f := &File{writer: &buf}
	for _, c := range []struct{ v, dim float64 }{
		{r.Top, height}, {r.Left, width}, {r.Bottom, height}, {r.Right, width}, {r.Resolution, 1},
	} {
		if err := writeFixedPoint24_8(f, c.v, c.dim); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func newPathRecord(t PathRecordType) PathRecord {
	switch t {
	case PathRecordClosedSubpathLength:
		return &ClosedSubpathLengthRecord{lengthRecord{closed: true}}
	case PathRecordClosedSubpathBezierLinked:
		return &ClosedSubpathBezierKnotLinked{knotRecord{kind: t}}
	case PathRecordClosedSubpathBezierUnlink:
		return &ClosedSubpathBezierKnotUnlinked{knotRecord{kind: t}}
	case PathRecordOpenSubpathLength:
		return &OpenSubpathLengthRecord{lengthRecord{closed: false}}
	case PathRecordOpenSubpathBezierLinked:
		return &OpenSubpathBezierKnotLinked{knotRecord{kind: t}}
	case PathRecordOpenSubpathBezierUnlink:
		return &OpenSubpathBezierKnotUnlinked{knotRecord{kind: t}}
	case PathRecordPathFillRule:
		return &PathFillRuleRecord{}
	case PathRecordClipboard:
		return &ClipboardRecord{}
	case PathRecordInitialFillRule:
		return &InitialFillRuleRecord{}
	default:
		return nil
	}
}

// PathResource is the full vector-mask path: a flat record stream, each
// entry 26 bytes (2-byte type selector, 24-byte payload). Grounded on
// pytoshop's path.py PathResource.read/write.
type PathResource struct {
	Records []PathRecord
}

func (p *PathResource) readFrom(f *File, length int) error {
	// VectorMask stores width/height-relative fractions scaled against
	// 1.0, matching pytoshop's path.py (the real image dimensions are
	// applied by callers that know the canvas size; the wire format
	// itself always uses a unit square).
	const unit = 1.0
	count := length / 26
	p.Records = make([]PathRecord, 0, count)
	for i := 0; i < count; i++ {
		raw := make([]byte, 26)
		if _, err := f.Read(raw); err != nil {
			return exhaustionError("PathResource", "truncated path record", length)
		}
		t := PathRecordType(uint16(raw[0])<<8 | uint16(raw[1]))
		rec := newPathRecord(t)
		if rec == nil {
			continue
		}
		if err := rec.decode(raw[2:], unit, unit); err != nil {
			return err
		}
		p.Records = append(p.Records, rec)
	}
	return nil
}

func (p *PathResource) writeTo(f *File) error {
	const unit = 1.0
	for _, rec := range p.Records {
		t := uint16(rec.RecordType())
		if err := f.WriteUint16(t); err != nil {
			return err
		}
		payload, err := rec.encode(unit, unit)
		if err != nil {
			return err
		}
		if len(payload) < 24 {
			payload = append(payload, make([]byte, 24-len(payload))...)
		}
		if _, err := f.Write(payload[:24]); err != nil {
			return err
		}
	}
	return nil
}

// FromRect builds a rectangular vector-mask path covering the given
// pixel bounds, scaled against the canvas height/width. Mirrors
// pytoshop's path.py PathResource.from_rect, including its documented
// quirk: the generated initial-fill-rule record always reports
// IsFilledStart=false (all_pixels=False),
// regardless of what a caller "intends" by the rectangle — Adobe's own
// writer does this too.
func FromRect(top, left, bottom, right, canvasHeight, canvasWidth float64) *PathResource {
	// the path's own records are written against a unit square (see
	// readFrom/writeTo), so pixel bounds collapse to height/width
	// fractions here rather than at encode time.
	vTop, vBottom := top/canvasHeight, bottom/canvasHeight
	hLeft, hRight := left/canvasWidth, right/canvasWidth
	knot := func(v, hv float64) PathPoint {
		return PathPoint{PrecedingVert: v, PrecedingHoriz: hv, AnchorVert: v, AnchorHoriz: hv, LeavingVert: v, LeavingHoriz: hv}
	}
	knots := []PathPoint{
		knot(vTop, hLeft),
		knot(vTop, hRight),
		knot(vBottom, hRight),
		knot(vBottom, hLeft),
	}
	records := []PathRecord{
		&PathFillRuleRecord{},
		&InitialFillRuleRecord{IsFilledStart: false},
		&ClosedSubpathLengthRecord{lengthRecord{closed: true, Count: uint32(len(knots))}},
	}
	for _, k := range knots {
		records = append(records, &ClosedSubpathBezierKnotLinked{knotRecord{kind: PathRecordClosedSubpathBezierLinked, Point: k}})
	}
	return &PathResource{Records: records}
}
