package ulid

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
)

// ArrayHeaderSize is the fixed width of the batch/array item header that
// precedes a repeating group of fixed-size elements inside a local-set
// item's value (e.g. a strong-reference array, the index table's delta and
// index entry arrays).
const ArrayHeaderSize = 8

// ArrayHeader is the count/element-length prefix written before a batch or
// array item's elements.
type ArrayHeader struct {
	Count         uint32
	ElementLength uint32
}

// ParseArrayHeader decodes an 8-byte array header from data.
func ParseArrayHeader(data []byte) (ArrayHeader, error) {
	var h ArrayHeader
	if len(data) != ArrayHeaderSize {
		return h, fmt.Errorf("%w: array header requires %d bytes, got %d", mxferrs.ErrShortRead, ArrayHeaderSize, len(data))
	}
	h.Count = binary.BigEndian.Uint32(data[0:4])
	h.ElementLength = binary.BigEndian.Uint32(data[4:8])

	return h, nil
}

// Bytes returns h as an 8-byte big-endian slice.
func (h ArrayHeader) Bytes() []byte {
	b := make([]byte, ArrayHeaderSize)
	binary.BigEndian.PutUint32(b[0:4], h.Count)
	binary.BigEndian.PutUint32(b[4:8], h.ElementLength)

	return b
}

// WriteToSlice writes h into data at offset and returns the next write
// position.
func (h ArrayHeader) WriteToSlice(data []byte, offset int) int {
	binary.BigEndian.PutUint32(data[offset:offset+4], h.Count)
	binary.BigEndian.PutUint32(data[offset+4:offset+8], h.ElementLength)

	return offset + ArrayHeaderSize
}

// TotalValueLength returns the total byte length of the array's elements,
// not including the header itself.
func (h ArrayHeader) TotalValueLength() int {
	return int(h.Count) * int(h.ElementLength)
}

// NewArrayHeader builds an ArrayHeader for count elements of the given fixed
// width.
func NewArrayHeader(count int, elementLength int) ArrayHeader {
	return ArrayHeader{
		Count:         uint32(count),         //nolint:gosec
		ElementLength: uint32(elementLength), //nolint:gosec
	}
}
