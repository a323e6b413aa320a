package indextable

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// SegmentKey is the well-known key of the IndexTableSegment local set.
var SegmentKey = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x10, 0x01, 0x00,
}

// Standard local tags used by every index table segment. These never vary
// per file, so unlike header metadata's open item graph, a segment encodes
// and decodes itself directly without consulting a primer pack.
const (
	tagInstanceUID        = 0x3C0A
	tagIndexEditRate       = 0x3F0B
	tagIndexStartPosition = 0x3F0C
	tagIndexDuration      = 0x3F0D
	tagEditUnitByteCount  = 0x3F05
	tagIndexSID           = 0x3F06
	tagBodySID            = 0x3F07
	tagSliceCount         = 0x3F08
	tagPosTableCount      = 0x3F0E
	tagDeltaEntryArray    = 0x3F09
	tagIndexEntryArray    = 0x3F0A
)

// itemHeaderSize is the width of a local-set item's (local_tag,
// item_length) header.
const itemHeaderSize = 4

// Segment is the index-table segment local set (spec §4.6): one per
// essence-container body, giving the byte layout of every edit unit.
type Segment struct {
	InstanceUID        ulid.UUID
	IndexEditRate      ulid.Rational
	IndexStartPosition int64
	IndexDuration      int64
	// EditUnitByteCount is 0 for VBR essence, where every IndexEntry must
	// carry its own StreamOffset.
	EditUnitByteCount uint32
	IndexSID          uint32
	BodySID           uint32
	SliceCount        uint8
	PosTableCount     uint8

	DeltaEntries []DeltaEntry
	IndexEntries []IndexEntry
}

// IsVBR reports whether the segment describes variable-bitrate essence,
// where every index entry must be consulted for its own stream offset.
func (seg *Segment) IsVBR() bool {
	return seg.EditUnitByteCount == 0
}

// monolithicLengthLimit is the largest local-set value that fits a 2-byte
// local-set length field (spec §4.6 "Monolithic... Constraint: total
// encoded length fits a 2-byte local set length field").
const monolithicLengthLimit = 0xFFFF

// fixedItemsBytes renders every scalar item (everything but the delta and
// index arrays) into one local-set item sequence.
func (seg *Segment) fixedItemsBytes() []byte {
	var body []byte

	putItem := func(tag uint16, value []byte) {
		header := make([]byte, itemHeaderSize)
		binary.BigEndian.PutUint16(header[0:2], tag)
		binary.BigEndian.PutUint16(header[2:4], uint16(len(value))) //nolint:gosec
		body = append(body, header...)
		body = append(body, value...)
	}

	putItem(tagInstanceUID, seg.InstanceUID.Bytes())
	putItem(tagIndexEditRate, seg.IndexEditRate.Bytes())
	putItem(tagIndexStartPosition, beUint64(uint64(seg.IndexStartPosition))) //nolint:gosec
	putItem(tagIndexDuration, beUint64(uint64(seg.IndexDuration)))          //nolint:gosec
	putItem(tagEditUnitByteCount, beUint32(seg.EditUnitByteCount))
	putItem(tagIndexSID, beUint32(seg.IndexSID))
	putItem(tagBodySID, beUint32(seg.BodySID))
	putItem(tagSliceCount, []byte{seg.SliceCount})
	putItem(tagPosTableCount, []byte{seg.PosTableCount})

	return body
}

// deltaArrayBytes and indexArrayBytes render the delta or index entry
// array, with its (count, element_length) header, as one local-set item
// value.
func (seg *Segment) deltaArrayBytes() []byte {
	header := ulid.NewArrayHeader(len(seg.DeltaEntries), DeltaEntrySize)
	out := make([]byte, ulid.ArrayHeaderSize+len(seg.DeltaEntries)*DeltaEntrySize)
	offset := header.WriteToSlice(out, 0)
	for _, e := range seg.DeltaEntries {
		offset = e.WriteToSlice(out, offset)
	}

	return out
}

func (seg *Segment) indexArrayBytes() []byte {
	elemSize := Size(int(seg.SliceCount), int(seg.PosTableCount))
	header := ulid.NewArrayHeader(len(seg.IndexEntries), elemSize)
	out := make([]byte, ulid.ArrayHeaderSize+len(seg.IndexEntries)*elemSize)
	offset := header.WriteToSlice(out, 0)
	for _, e := range seg.IndexEntries {
		offset = e.WriteToSlice(out, offset)
	}

	return out
}

// Bytes renders the segment as a monolithic local set value (not including
// the segment's own KLV key/length). Returns an error if the result would
// not fit a 2-byte local-set length field; callers facing that case use
// WriteStreaming instead.
func (seg *Segment) Bytes() ([]byte, error) {
	body := seg.fixedItemsBytes()

	deltaItem := itemBytes(tagDeltaEntryArray, seg.deltaArrayBytes())
	indexItem := itemBytes(tagIndexEntryArray, seg.indexArrayBytes())

	body = append(body, deltaItem...)
	body = append(body, indexItem...)

	if len(body) > monolithicLengthLimit {
		return nil, fmt.Errorf("%w: index table segment value %d bytes exceeds monolithic limit %d",
			mxferrs.ErrInvalidLength, len(body), monolithicLengthLimit)
	}

	return body, nil
}

func itemBytes(tag uint16, value []byte) []byte {
	header := make([]byte, itemHeaderSize)
	binary.BigEndian.PutUint16(header[0:2], tag)
	binary.BigEndian.PutUint16(header[2:4], uint16(len(value))) //nolint:gosec
	return append(header, value...)
}

// WriteMonolithic writes the segment as a single local-set KLV.
func (seg *Segment) WriteMonolithic(s *klv.Stream) error {
	value, err := seg.Bytes()
	if err != nil {
		return err
	}

	if err := s.WriteKL(SegmentKey, uint64(len(value))); err != nil {
		return err
	}
	_, err = s.Write(value)

	return err
}

// WriteStreaming writes the segment's local-set KLV using the Avid
// large-VBR layout: the KLV length declares the whole value (the fixed
// items plus both array items with all their entries), then the delta and
// index array headers are followed immediately by their entries written
// one at a time rather than assembled into one buffer. An array item's
// 16-bit item length wraps once its entries pass 64KiB; the real array
// counts in the headers bypass that limit, and Parse sizes both array items
// from their headers (spec §4.6 "Streaming").
func (seg *Segment) WriteStreaming(s *klv.Stream) error {
	fixed := seg.fixedItemsBytes()

	deltaHeader := ulid.NewArrayHeader(len(seg.DeltaEntries), DeltaEntrySize)
	indexElemSize := Size(int(seg.SliceCount), int(seg.PosTableCount))
	indexHeader := ulid.NewArrayHeader(len(seg.IndexEntries), indexElemSize)

	deltaArrayLen := uint64(len(seg.DeltaEntries) * DeltaEntrySize) //nolint:gosec
	indexArrayLen := uint64(len(seg.IndexEntries) * indexElemSize)  //nolint:gosec

	declaredLen := uint64(len(fixed)) +
		uint64(itemHeaderSize+ulid.ArrayHeaderSize) + deltaArrayLen +
		uint64(itemHeaderSize+ulid.ArrayHeaderSize) + indexArrayLen

	if err := s.WriteKL(SegmentKey, declaredLen); err != nil {
		return err
	}
	if _, err := s.Write(fixed); err != nil {
		return err
	}

	deltaItemHeader := make([]byte, itemHeaderSize)
	binary.BigEndian.PutUint16(deltaItemHeader[0:2], tagDeltaEntryArray)
	binary.BigEndian.PutUint16(deltaItemHeader[2:4], uint16(ulid.ArrayHeaderSize+deltaArrayLen)) //nolint:gosec
	if _, err := s.Write(deltaItemHeader); err != nil {
		return err
	}
	if _, err := s.Write(deltaHeader.Bytes()); err != nil {
		return err
	}
	for _, e := range seg.DeltaEntries {
		if _, err := s.Write(e.Bytes()); err != nil {
			return err
		}
	}

	indexItemHeader := make([]byte, itemHeaderSize)
	binary.BigEndian.PutUint16(indexItemHeader[0:2], tagIndexEntryArray)
	binary.BigEndian.PutUint16(indexItemHeader[2:4], uint16(ulid.ArrayHeaderSize+indexArrayLen)) //nolint:gosec
	if _, err := s.Write(indexItemHeader); err != nil {
		return err
	}
	if _, err := s.Write(indexHeader.Bytes()); err != nil {
		return err
	}
	for _, e := range seg.IndexEntries {
		if _, err := s.Write(e.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// Parse decodes a segment from its local-set value bytes, accepting both
// the monolithic and streaming layouts (the wire shape is identical once
// fully buffered; streaming only changes how the writer pipelines bytes).
func Parse(value []byte) (*Segment, error) {
	seg := &Segment{}

	offset := 0
	for offset < len(value) {
		if offset+itemHeaderSize > len(value) {
			return nil, fmt.Errorf("%w: truncated index segment item header", mxferrs.ErrShortRead)
		}
		tag := binary.BigEndian.Uint16(value[offset : offset+2])
		length := int(binary.BigEndian.Uint16(value[offset+2 : offset+4]))
		offset += itemHeaderSize

		if (tag == tagDeltaEntryArray || tag == tagIndexEntryArray) && offset+ulid.ArrayHeaderSize <= len(value) {
			header, err := ulid.ParseArrayHeader(value[offset : offset+ulid.ArrayHeaderSize])
			if err != nil {
				return nil, err
			}
			length = ulid.ArrayHeaderSize + header.TotalValueLength()
		}

		if offset+int(length) > len(value) {
			return nil, fmt.Errorf("%w: truncated index segment item value", mxferrs.ErrShortRead)
		}
		raw := value[offset : offset+int(length)]
		offset += int(length)

		if err := seg.applyItem(tag, raw); err != nil {
			return nil, err
		}
	}

	return seg, nil
}

func (seg *Segment) applyItem(tag uint16, raw []byte) error {
	switch tag {
	case tagInstanceUID:
		id, err := ulid.ParseUUID(raw)
		if err != nil {
			return err
		}
		seg.InstanceUID = id
	case tagIndexEditRate:
		r, err := ulid.ParseRational(raw)
		if err != nil {
			return err
		}
		seg.IndexEditRate = r
	case tagIndexStartPosition:
		seg.IndexStartPosition = int64(binary.BigEndian.Uint64(raw)) //nolint:gosec
	case tagIndexDuration:
		seg.IndexDuration = int64(binary.BigEndian.Uint64(raw)) //nolint:gosec
	case tagEditUnitByteCount:
		seg.EditUnitByteCount = binary.BigEndian.Uint32(raw)
	case tagIndexSID:
		seg.IndexSID = binary.BigEndian.Uint32(raw)
	case tagBodySID:
		seg.BodySID = binary.BigEndian.Uint32(raw)
	case tagSliceCount:
		seg.SliceCount = raw[0]
	case tagPosTableCount:
		seg.PosTableCount = raw[0]
	case tagDeltaEntryArray:
		entries, err := parseDeltaArray(raw)
		if err != nil {
			return err
		}
		seg.DeltaEntries = entries
	case tagIndexEntryArray:
		entries, err := parseIndexArray(raw, int(seg.SliceCount), int(seg.PosTableCount))
		if err != nil {
			return err
		}
		seg.IndexEntries = entries
	default:
		return fmt.Errorf("%w: unrecognized index segment local tag 0x%04x", mxferrs.ErrUnknownItem, tag)
	}

	return nil
}

func parseDeltaArray(data []byte) ([]DeltaEntry, error) {
	if len(data) < ulid.ArrayHeaderSize {
		return nil, fmt.Errorf("%w: delta entry array too short", mxferrs.ErrShortRead)
	}
	header, err := ulid.ParseArrayHeader(data[:ulid.ArrayHeaderSize])
	if err != nil {
		return nil, err
	}

	entries := make([]DeltaEntry, header.Count)
	offset := ulid.ArrayHeaderSize
	for i := range entries {
		e, err := ParseDeltaEntry(data[offset : offset+DeltaEntrySize])
		if err != nil {
			return nil, err
		}
		entries[i] = e
		offset += DeltaEntrySize
	}

	return entries, nil
}

func parseIndexArray(data []byte, sliceCount, posTableCount int) ([]IndexEntry, error) {
	if len(data) < ulid.ArrayHeaderSize {
		return nil, fmt.Errorf("%w: index entry array too short", mxferrs.ErrShortRead)
	}
	header, err := ulid.ParseArrayHeader(data[:ulid.ArrayHeaderSize])
	if err != nil {
		return nil, err
	}

	entries := make([]IndexEntry, header.Count)
	offset := ulid.ArrayHeaderSize
	for i := range entries {
		e, next, err := ParseIndexEntry(data[offset:], sliceCount, posTableCount)
		if err != nil {
			return nil, err
		}
		entries[i] = e
		offset += next
	}

	return entries, nil
}

func beUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func beUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
