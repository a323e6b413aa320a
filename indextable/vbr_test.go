package indextable

import (
	"io"
	"testing"

	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

// TestSegment_VBRStreaming1000Frames exercises the Avid large-VBR layout
// with a 1000-frame MJPEG-shaped clip: 1001 index entries (Avid's extra
// trailing offset) and 1 delta entry, with strictly increasing stream
// offsets.
func TestSegment_VBRStreaming1000Frames(t *testing.T) {
	const frameCount = 1000

	seg := &Segment{
		IndexEditRate: ulid.Rational{Numerator: 25, Denominator: 1},
		IndexDuration: frameCount,
		IndexSID:      2,
		BodySID:       1,
		DeltaEntries: []DeltaEntry{
			{PosTableIndex: -1, Slice: 0, ElementData: 0},
		},
	}
	require.True(t, seg.IsVBR())

	var offset uint64
	for i := 0; i <= frameCount; i++ {
		seg.IndexEntries = append(seg.IndexEntries, IndexEntry{StreamOffset: offset})
		offset += 1024 + uint64(i%37) // variable frame size
	}
	require.Len(t, seg.IndexEntries, frameCount+1)

	m := &memStream{}
	s := klv.NewStream(m)
	require.NoError(t, seg.WriteStreaming(s))

	require.NoError(t, s.SeekAbsolute(0))
	key, length, err := s.ReadKL()
	require.NoError(t, err)
	require.Equal(t, SegmentKey, key)

	value := make([]byte, length)
	_, err = io.ReadFull(s, value)
	require.NoError(t, err)

	parsed, err := Parse(value)
	require.NoError(t, err)

	require.Len(t, parsed.IndexEntries, frameCount+1)
	require.Len(t, parsed.DeltaEntries, 1)

	for i := 1; i < len(parsed.IndexEntries); i++ {
		require.Less(t, parsed.IndexEntries[i-1].StreamOffset, parsed.IndexEntries[i].StreamOffset)
	}
}

// TestSegment_VBREditUnitByteCountZero confirms a freshly built VBR segment
// (no EditUnitByteCount set) reports itself correctly and round-trips
// through WriteStreaming/Parse even for a single edit unit (one frame entry
// plus the closing offset entry).
func TestSegment_VBREditUnitByteCountZero(t *testing.T) {
	seg := &Segment{
		IndexEditRate: ulid.Rational{Numerator: 25, Denominator: 1},
		IndexDuration: 1,
		IndexSID:      2,
		BodySID:       1,
		IndexEntries: []IndexEntry{
			{StreamOffset: 0},
			{StreamOffset: 288000},
		},
	}
	require.True(t, seg.IsVBR())

	m := &memStream{}
	s := klv.NewStream(m)
	require.NoError(t, seg.WriteStreaming(s))

	require.NoError(t, s.SeekAbsolute(0))
	_, length, err := s.ReadKL()
	require.NoError(t, err)

	value := make([]byte, length)
	_, err = io.ReadFull(s, value)
	require.NoError(t, err)

	parsed, err := Parse(value)
	require.NoError(t, err)
	require.True(t, parsed.IsVBR())
	require.Equal(t, seg.IndexEntries, parsed.IndexEntries)
}
