package psd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, wf.WriteUint16(0xABCD))
	require.NoError(t, wf.WriteInt16(-5))
	require.NoError(t, wf.WriteUint32(0xDEADBEEF))
	require.NoError(t, wf.WriteInt32(-100))
	require.NoError(t, wf.WriteUint64(0x0102030405060708))
	require.NoError(t, wf.WriteFloat64(3.5))

	rf := NewBufferFile(buf.Bytes())
	u16, err := rf.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), u16)

	i16, err := rf.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-5), i16)

	u32, err := rf.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	i32, err := rf.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-100), i32)

	u64, err := rf.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	f64, err := rf.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f64)
}

func TestPascalStringPadding(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, wf.WritePascalString("ab", 4))
	assert.Equal(t, 0, buf.Len()%4)

	rf := NewBufferFile(buf.Bytes())
	s, err := rf.ReadPascalString(4)
	require.NoError(t, err)
	assert.Equal(t, "ab", s)
}

func TestUnicodeStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, wf.WriteUnicodeString("héllo"))

	rf := NewBufferFile(buf.Bytes())
	s, err := rf.ReadUnicodeString()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
}

func TestUnicodeStringEmpty(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, wf.WriteUint32(0))

	rf := NewBufferFile(buf.Bytes())
	s, err := rf.ReadUnicodeString()
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestLengthWidthSelection(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, wf.writeLength(false, 300))
	assert.Equal(t, 4, buf.Len())

	buf.Reset()
	require.NoError(t, wf.writeLength(true, 300))
	assert.Equal(t, 8, buf.Len())
}

func TestBitflagsRoundTrip(t *testing.T) {
	b := packBitflags(true, false, true, true)
	flags := unpackBitflags(b, 4)
	assert.Equal(t, []bool{true, false, true, true}, flags)
}

func TestPad(t *testing.T) {
	assert.Equal(t, 0, pad(8, 4))
	assert.Equal(t, 2, pad(6, 4))
	assert.Equal(t, 3, pad(1, 4))
}
