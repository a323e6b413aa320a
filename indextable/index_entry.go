package indextable

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// indexEntryFixedSize is the width of an index entry's fixed-position
// fields, before the variable-length slice-offset and pos-table tails.
const indexEntryFixedSize = 1 + 1 + 1 + 8

// IndexEntry locates one edit unit within the essence container.
type IndexEntry struct {
	TemporalOffset int8
	KeyFrameOffset int8
	Flags          uint8
	StreamOffset   uint64
	SliceOffsets   []uint32
	PosTable       []ulid.Rational
}

// Size returns e's encoded size given sliceCount and posTableCount (the
// index segment's header values, shared by every entry in the array).
func Size(sliceCount, posTableCount int) int {
	return indexEntryFixedSize + sliceCount*4 + posTableCount*ulid.RationalSize
}

// Bytes renders e using its own SliceOffsets/PosTable lengths.
func (e IndexEntry) Bytes() []byte {
	b := make([]byte, Size(len(e.SliceOffsets), len(e.PosTable)))
	e.WriteToSlice(b, 0)

	return b
}

// WriteToSlice writes e into data at offset and returns the next write
// position.
func (e IndexEntry) WriteToSlice(data []byte, offset int) int {
	data[offset] = byte(e.TemporalOffset)
	data[offset+1] = byte(e.KeyFrameOffset)
	data[offset+2] = e.Flags
	binary.BigEndian.PutUint64(data[offset+3:offset+11], e.StreamOffset)
	offset += indexEntryFixedSize

	for _, so := range e.SliceOffsets {
		binary.BigEndian.PutUint32(data[offset:offset+4], so)
		offset += 4
	}

	for _, rat := range e.PosTable {
		offset = rat.WriteToSlice(data, offset)
	}

	return offset
}

// ParseIndexEntry decodes one index entry from data, given the segment's
// slice count and pos-table count.
func ParseIndexEntry(data []byte, sliceCount, posTableCount int) (IndexEntry, int, error) {
	need := Size(sliceCount, posTableCount)
	if len(data) < need {
		return IndexEntry{}, 0, fmt.Errorf("%w: index entry requires %d bytes, got %d",
			mxferrs.ErrShortRead, need, len(data))
	}

	e := IndexEntry{
		TemporalOffset: int8(data[0]),
		KeyFrameOffset: int8(data[1]),
		Flags:          data[2],
		StreamOffset:   binary.BigEndian.Uint64(data[3:11]),
	}
	offset := indexEntryFixedSize

	if sliceCount > 0 {
		e.SliceOffsets = make([]uint32, sliceCount)
		for i := range e.SliceOffsets {
			e.SliceOffsets[i] = binary.BigEndian.Uint32(data[offset : offset+4])
			offset += 4
		}
	}

	if posTableCount > 0 {
		e.PosTable = make([]ulid.Rational, posTableCount)
		for i := range e.PosTable {
			rat, err := ulid.ParseRational(data[offset : offset+ulid.RationalSize])
			if err != nil {
				return IndexEntry{}, 0, err
			}
			e.PosTable[i] = rat
			offset += ulid.RationalSize
		}
	}

	return e, offset, nil
}
