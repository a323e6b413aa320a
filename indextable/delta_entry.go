// Package indextable implements the index-table segment local set: delta
// entries, index entries, and both the monolithic and Avid-streaming VBR
// write modes (spec §4.6).
package indextable

import (
	"encoding/binary"

	"github.com/mxfgo/mxf/mxferrs"
)

// DeltaEntrySize is the fixed on-disk width of one delta entry.
const DeltaEntrySize = 1 + 1 + 4

// DeltaEntry gives the byte offset of one sub-element within an edit unit.
type DeltaEntry struct {
	PosTableIndex int8
	Slice         uint8
	ElementData   uint32
}

// Bytes renders e as a fixed DeltaEntrySize-byte slice.
func (e DeltaEntry) Bytes() []byte {
	b := make([]byte, DeltaEntrySize)
	e.WriteToSlice(b, 0)

	return b
}

// WriteToSlice writes e into data at offset and returns the next write
// position.
func (e DeltaEntry) WriteToSlice(data []byte, offset int) int {
	data[offset] = byte(e.PosTableIndex)
	data[offset+1] = e.Slice
	binary.BigEndian.PutUint32(data[offset+2:offset+6], e.ElementData)

	return offset + DeltaEntrySize
}

// ParseDeltaEntry decodes one delta entry from data.
func ParseDeltaEntry(data []byte) (DeltaEntry, error) {
	if len(data) < DeltaEntrySize {
		return DeltaEntry{}, mxferrs.ErrShortRead
	}

	return DeltaEntry{
		PosTableIndex: int8(data[0]),
		Slice:         data[1],
		ElementData:   binary.BigEndian.Uint32(data[2:6]),
	}, nil
}
