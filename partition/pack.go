package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// keyPrefix is the first 13 octets shared by every partition pack key; the
// 14th octet carries Status, the 15th carries Kind, and the 16th is always
// the registry version byte (0x00).
var keyPrefix = [13]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01,
}

// Key builds the 16-byte partition pack key for the given status and kind.
func Key(status Status, kind Kind) ulid.Key {
	var k ulid.Key
	copy(k[:13], keyPrefix[:])
	k[13] = byte(status)
	k[14] = byte(kind)
	k[15] = 0x00

	return k
}

// DecodeKey extracts the status and kind octets from a partition pack key
// and validates that key's 13-byte prefix and trailing version byte match
// the expected form.
func DecodeKey(key ulid.Key) (Status, Kind, error) {
	var prefix [13]byte
	copy(prefix[:], key[:13])
	if prefix != keyPrefix || key[15] != 0x00 {
		return 0, 0, fmt.Errorf("%w: key is not a partition pack key", mxferrs.ErrUnexpectedKey)
	}

	status := Status(key[13])
	kind := Kind(key[14])
	if err := Validate(status, kind); err != nil {
		return 0, 0, err
	}

	return status, kind, nil
}

// Pack is the fixed-order field sequence of a partition pack's value, spec
// §3 "Partition pack", terminated by a batch of essence-container labels.
type Pack struct {
	Status Status
	Kind   Kind

	MajorVersion uint16
	MinorVersion uint16
	KAGSize      uint32

	ThisPartition     uint64
	PreviousPartition uint64
	FooterPartition   uint64

	HeaderByteCount uint64
	IndexByteCount  uint64
	IndexSID        uint32

	BodyOffset uint64
	BodySID    uint32

	OperationalPattern ulid.Label
	EssenceContainers  []ulid.Label
}

// fixedFieldsSize is the byte width of Pack's fixed-order fields, not
// counting the operational pattern label or the essence container batch.
const fixedFieldsSize = 2 + 2 + 4 + 8 + 8 + 8 + 8 + 8 + 4 + 8 + 4 + ulid.LabelSize

// Bytes serializes the value portion of a partition pack (everything after
// the KLV key/length).
func (p *Pack) Bytes() []byte {
	size := fixedFieldsSize + ulid.ArrayHeaderSize + len(p.EssenceContainers)*ulid.LabelSize
	b := make([]byte, size)
	offset := 0

	binary.BigEndian.PutUint16(b[offset:], p.MajorVersion)
	offset += 2
	binary.BigEndian.PutUint16(b[offset:], p.MinorVersion)
	offset += 2
	binary.BigEndian.PutUint32(b[offset:], p.KAGSize)
	offset += 4
	binary.BigEndian.PutUint64(b[offset:], p.ThisPartition)
	offset += 8
	binary.BigEndian.PutUint64(b[offset:], p.PreviousPartition)
	offset += 8
	binary.BigEndian.PutUint64(b[offset:], p.FooterPartition)
	offset += 8
	binary.BigEndian.PutUint64(b[offset:], p.HeaderByteCount)
	offset += 8
	binary.BigEndian.PutUint64(b[offset:], p.IndexByteCount)
	offset += 8
	binary.BigEndian.PutUint32(b[offset:], p.IndexSID)
	offset += 4
	binary.BigEndian.PutUint64(b[offset:], p.BodyOffset)
	offset += 8
	binary.BigEndian.PutUint32(b[offset:], p.BodySID)
	offset += 4
	offset = p.OperationalPattern.WriteToSlice(b, offset)

	header := ulid.NewArrayHeader(len(p.EssenceContainers), ulid.LabelSize)
	offset = header.WriteToSlice(b, offset)
	for _, label := range p.EssenceContainers {
		offset = label.WriteToSlice(b, offset)
	}

	return b
}

// Parse decodes the value portion of a partition pack from data, given the
// status and kind already recovered from the KLV key.
func Parse(status Status, kind Kind, data []byte) (*Pack, error) {
	if len(data) < fixedFieldsSize+ulid.ArrayHeaderSize {
		return nil, fmt.Errorf("%w: partition pack value too short (%d bytes)", mxferrs.ErrShortRead, len(data))
	}

	p := &Pack{Status: status, Kind: kind}
	offset := 0

	p.MajorVersion = binary.BigEndian.Uint16(data[offset:])
	offset += 2
	p.MinorVersion = binary.BigEndian.Uint16(data[offset:])
	offset += 2
	p.KAGSize = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	p.ThisPartition = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	p.PreviousPartition = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	p.FooterPartition = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	p.HeaderByteCount = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	p.IndexByteCount = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	p.IndexSID = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	p.BodyOffset = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	p.BodySID = binary.BigEndian.Uint32(data[offset:])
	offset += 4

	opLabel, err := ulid.ParseLabel(data[offset : offset+ulid.LabelSize])
	if err != nil {
		return nil, err
	}
	p.OperationalPattern = opLabel
	offset += ulid.LabelSize

	header, err := ulid.ParseArrayHeader(data[offset : offset+ulid.ArrayHeaderSize])
	if err != nil {
		return nil, err
	}
	offset += ulid.ArrayHeaderSize

	if header.ElementLength != ulid.LabelSize {
		return nil, fmt.Errorf("%w: essence container label width %d, expected %d",
			mxferrs.ErrEssenceLabelMismatch, header.ElementLength, ulid.LabelSize)
	}

	need := int(header.Count) * ulid.LabelSize
	if len(data) < offset+need {
		return nil, fmt.Errorf("%w: essence container batch truncated", mxferrs.ErrShortRead)
	}

	p.EssenceContainers = make([]ulid.Label, header.Count)
	for i := range p.EssenceContainers {
		label, err := ulid.ParseLabel(data[offset : offset+ulid.LabelSize])
		if err != nil {
			return nil, err
		}
		p.EssenceContainers[i] = label
		offset += ulid.LabelSize
	}

	return p, nil
}
