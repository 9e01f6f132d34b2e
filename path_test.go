package psd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedPoint24_8RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, writeFixedPoint24_8(wf, 37.5, 100))

	rf := NewBufferFile(buf.Bytes())
	got, err := readFixedPoint24_8(rf, 100)
	require.NoError(t, err)
	assert.InDelta(t, 37.5, got, 0.01)
}

func TestFromRectProducesClosedRectangle(t *testing.T) {
	path := FromRect(10, 20, 30, 40, 100, 100)

	var lengths, knots int
	for _, rec := range path.Records {
		switch rec.(type) {
		case *ClosedSubpathLengthRecord:
			lengths++
		case *ClosedSubpathBezierKnotLinked:
			knots++
		}
	}
	assert.Equal(t, 1, lengths)
	assert.Equal(t, 4, knots)
}

func TestFromRectAllPixelsQuirk(t *testing.T) {
	path := FromRect(0, 0, 10, 10, 10, 10)
	var fillRule *InitialFillRuleRecord
	for _, rec := range path.Records {
		if r, ok := rec.(*InitialFillRuleRecord); ok {
			fillRule = r
		}
	}
	require.NotNil(t, fillRule)
	assert.False(t, fillRule.IsFilledStart)
}

func TestPathResourceWriteReadRoundTrip(t *testing.T) {
	original := FromRect(1, 2, 9, 8, 10, 10)

	var buf bytes.Buffer
	wf := &File{writer: &buf}
	require.NoError(t, original.writeTo(wf))
	assert.Equal(t, 0, buf.Len()%26)

	rf := NewBufferFile(buf.Bytes())
	var decoded PathResource
	require.NoError(t, decoded.readFrom(rf, buf.Len()))
	require.Len(t, decoded.Records, len(original.Records))

	for i, rec := range decoded.Records {
		assert.Equal(t, original.Records[i].RecordType(), rec.RecordType())
	}
}
