package psd

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"unicode/utf16"
)

// seeker is the subset of *os.File / *bytes.Reader this package relies on
// for seek-save/restore (spec DESIGN NOTES "lazy-load handles").
type seeker interface {
	io.Reader
	io.Seeker
}

// File wraps a seekable reader and/or writer with the big-endian primitive
// accessors every PSD/PSB section is built from. Reading and writing share
// the same cursor so section code never has to juggle separate decode/encode
// types. A File may be backed by an on-disk *os.File (the common case) or by
// an in-memory buffer (used when a tagged block or descriptor parses a
// sub-slice of already-read bytes).
type File struct {
	reader io.Reader
	writer io.Writer
	seek   seeker
}

// NewReaderFile wraps an already-open file for reading.
func NewReaderFile(f *os.File) *File {
	return &File{reader: f, seek: f}
}

// NewWriterFile wraps an already-open file for writing.
func NewWriterFile(f *os.File) *File {
	return &File{writer: f, seek: f}
}

// NewBufferFile wraps an in-memory buffer for scratch encode/decode work.
func NewBufferFile(b []byte) *File {
	buf := bytes.NewReader(b)
	return &File{reader: buf, seek: buf}
}

func (f *File) Read(p []byte) (int, error) {
	return io.ReadFull(f.reader, p)
}

func (f *File) Write(p []byte) (int, error) {
	return f.writer.Write(p)
}

// Seek seeks to a position in the underlying stream.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.seek.Seek(offset, whence)
}

// Tell returns the current position in the stream.
func (f *File) Tell() (int64, error) {
	return f.seek.Seek(0, io.SeekCurrent)
}

func (f *File) ReadString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := f.Read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (f *File) WriteString(s string) error {
	_, err := f.Write([]byte(s))
	return err
}

func (f *File) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (f *File) WriteByte(b byte) error {
	_, err := f.Write([]byte{b})
	return err
}

func (f *File) ReadUint16() (uint16, error) {
	buf := make([]byte, 2)
	if _, err := f.Read(buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

func (f *File) WriteUint16(v uint16) error {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	_, err := f.Write(buf)
	return err
}

func (f *File) ReadInt16() (int16, error) {
	buf := make([]byte, 2)
	if _, err := f.Read(buf); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf)), nil
}

func (f *File) WriteInt16(v int16) error {
	return f.WriteUint16(uint16(v))
}

func (f *File) ReadUint32() (uint32, error) {
	buf := make([]byte, 4)
	if _, err := f.Read(buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func (f *File) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	_, err := f.Write(buf)
	return err
}

func (f *File) ReadInt32() (int32, error) {
	buf := make([]byte, 4)
	if _, err := f.Read(buf); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

func (f *File) WriteInt32(v int32) error {
	return f.WriteUint32(uint32(v))
}

func (f *File) ReadUint64() (uint64, error) {
	buf := make([]byte, 8)
	if _, err := f.Read(buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

func (f *File) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	_, err := f.Write(buf)
	return err
}

func (f *File) ReadFloat64() (float64, error) {
	v, err := f.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (f *File) WriteFloat64(v float64) error {
	return f.WriteUint64(math.Float64bits(v))
}

func (f *File) Skip(n int64) error {
	_, err := f.Seek(n, io.SeekCurrent)
	return err
}

// pad returns the number of padding bytes needed to round n up to a
// multiple of divisor, mirroring pytoshop's util.pad helper.
func pad(n, divisor int) int {
	r := n % divisor
	if r == 0 {
		return 0
	}
	return divisor - r
}

// readLength reads a section length prefix, u32 for PSD and u64 for PSB,
// centralizing the v1/v2 width split (spec DESIGN NOTES "units of length").
func (f *File) readLength(big bool) (uint64, error) {
	if big {
		return f.ReadUint64()
	}
	v, err := f.ReadUint32()
	return uint64(v), err
}

func (f *File) writeLength(big bool, v uint64) error {
	if big {
		return f.WriteUint64(v)
	}
	return f.WriteUint32(uint32(v))
}

// ReadPascalString reads a length-prefixed (1-byte count) string and
// consumes padding so the total read is a multiple of padTo.
func (f *File) ReadPascalString(padTo int) (string, error) {
	n, err := f.ReadByte()
	if err != nil {
		return "", err
	}
	s, err := f.ReadString(int(n))
	if err != nil {
		return "", err
	}
	total := 1 + int(n)
	if skip := pad(total, padTo); skip > 0 {
		if err := f.Skip(int64(skip)); err != nil {
			return "", err
		}
	}
	return s, nil
}

func pascalStringLength(s string, padTo int) int {
	total := 1 + len(s)
	return total + pad(total, padTo)
}

func (f *File) WritePascalString(s string, padTo int) error {
	if len(s) > 255 {
		s = s[:255]
	}
	if err := f.WriteByte(byte(len(s))); err != nil {
		return err
	}
	if err := f.WriteString(s); err != nil {
		return err
	}
	total := 1 + len(s)
	if skip := pad(total, padTo); skip > 0 {
		_, err := f.Write(make([]byte, skip))
		return err
	}
	return nil
}

// ReadUnicodeString reads Adobe's unicode string format: a u32 character
// count followed by that many UTF-16BE code units. A single trailing NUL
// is stripped if present, matching pytoshop's decode_unicode_string.
func (f *File) ReadUnicodeString() (string, error) {
	count, err := f.ReadUint32()
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}
	units := make([]uint16, count)
	for i := range units {
		u, err := f.ReadUint16()
		if err != nil {
			return "", err
		}
		units[i] = u
	}
	if units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units)), nil
}

func unicodeStringLength(s string) int {
	return 4 + 2*(len(utf16.Encode([]rune(s)))+1)
}

// WriteUnicodeString writes Adobe's unicode string format, always
// terminating with the trailing NUL pytoshop's encoder emits.
func (f *File) WriteUnicodeString(s string) error {
	units := utf16.Encode([]rune(s))
	units = append(units, 0)
	if err := f.WriteUint32(uint32(len(units))); err != nil {
		return err
	}
	for _, u := range units {
		if err := f.WriteUint16(u); err != nil {
			return err
		}
	}
	return nil
}

// unpackBitflags unpacks a byte into up to 8 booleans, LSB first, matching
// pytoshop's util.unpack_bitflags.
func unpackBitflags(b byte, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = (b>>uint(i))&1 != 0
	}
	return out
}

// packBitflags is the inverse of unpackBitflags.
func packBitflags(flags ...bool) byte {
	var b byte
	for i, f := range flags {
		if f {
			b |= 1 << uint(i)
		}
	}
	return b
}
