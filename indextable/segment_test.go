package indextable

import (
	"io"
	"testing"

	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

// memStream is a minimal growable in-memory io.ReadWriteSeeker, mirroring
// the helper used throughout the other packages' stream-backed tests.
type memStream struct {
	buf []byte
	pos int64
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	}
	m.pos = target

	return m.pos, nil
}

func fixedEUBCSegment() *Segment {
	return &Segment{
		IndexEditRate:     ulid.Rational{Numerator: 25, Denominator: 1},
		IndexDuration:     10,
		EditUnitByteCount: 230400,
		IndexSID:          2,
		BodySID:           1,
		DeltaEntries: []DeltaEntry{
			{PosTableIndex: -1, Slice: 0, ElementData: 0},
		},
	}
}

func TestSegment_MonolithicRoundTrip(t *testing.T) {
	seg := fixedEUBCSegment()

	value, err := seg.Bytes()
	require.NoError(t, err)

	parsed, err := Parse(value)
	require.NoError(t, err)

	require.Equal(t, seg.IndexEditRate, parsed.IndexEditRate)
	require.Equal(t, seg.IndexDuration, parsed.IndexDuration)
	require.Equal(t, seg.EditUnitByteCount, parsed.EditUnitByteCount)
	require.False(t, parsed.IsVBR())
	require.Len(t, parsed.DeltaEntries, 1)
}

func TestSegment_WriteMonolithic_ThenReadBack(t *testing.T) {
	seg := fixedEUBCSegment()

	m := &memStream{}
	s := klv.NewStream(m)
	require.NoError(t, seg.WriteMonolithic(s))

	require.NoError(t, s.SeekAbsolute(0))
	key, length, err := s.ReadKL()
	require.NoError(t, err)
	require.Equal(t, SegmentKey, key)

	value := make([]byte, length)
	_, err = io.ReadFull(s, value)
	require.NoError(t, err)

	parsed, err := Parse(value)
	require.NoError(t, err)
	require.Equal(t, seg.BodySID, parsed.BodySID)
}
