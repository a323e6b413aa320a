package metadata

import (
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// PrimerPackKey is the well-known key of the Primer Pack KLV that precedes
// every file's local-set sequence in the header metadata (spec §4.5).
var PrimerPackKey = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x05, 0x01, 0x00,
}

// primerEntrySize is the on-disk width of one primer pack entry: a 2-byte
// local tag followed by the 16-byte item key it stands for.
const primerEntrySize = 2 + ulid.LabelSize

// firstNonStandardTag is where a file's own local-tag numbering for
// non-standard items begins (spec §4.5 "Write").
const firstNonStandardTag = 0x8000

// TagTable is a per-file primer pack: the 2-byte local tag assigned to
// every item key actually present in that file. Standard items reuse their
// registered tag; everything else is numbered starting at
// firstNonStandardTag in first-seen order.
type TagTable struct {
	tagToKey map[uint16]ulid.Key
	keyToTag map[ulid.Key]uint16
	next     uint16
}

// NewTagTable creates an empty primer.
func NewTagTable() *TagTable {
	return &TagTable{
		tagToKey: make(map[uint16]ulid.Key),
		keyToTag: make(map[ulid.Key]uint16),
		next:     firstNonStandardTag,
	}
}

// Assign returns the local tag for itemKey, assigning one if this is the
// first time itemKey has been seen. registeredTag, if non-zero, is reused
// directly (a standard item keeps its data-model tag); otherwise a fresh
// non-standard tag is handed out.
func (t *TagTable) Assign(itemKey ulid.Key, registeredTag uint16) (uint16, error) {
	if tag, ok := t.keyToTag[itemKey]; ok {
		return tag, nil
	}

	tag := registeredTag
	if tag == 0 {
		tag = t.next
		t.next++
	}

	if existing, ok := t.tagToKey[tag]; ok && existing != itemKey {
		return 0, fmt.Errorf("%w: tag 0x%04x wanted by both %s and %s", mxferrs.ErrDuplicateTag, tag, existing, itemKey)
	}

	t.tagToKey[tag] = itemKey
	t.keyToTag[itemKey] = tag

	return tag, nil
}

// Lookup returns the item key assigned to tag, read from a primer pack.
func (t *TagTable) Lookup(tag uint16) (ulid.Key, bool) {
	key, ok := t.tagToKey[tag]

	return key, ok
}

// TagFor returns the local tag already assigned to itemKey.
func (t *TagTable) TagFor(itemKey ulid.Key) (uint16, bool) {
	tag, ok := t.keyToTag[itemKey]

	return tag, ok
}

// Record adds a (tag, key) pair read directly from an on-disk primer pack,
// without going through Assign's numbering policy.
func (t *TagTable) Record(tag uint16, key ulid.Key) {
	t.tagToKey[tag] = key
	t.keyToTag[key] = tag
}

// Bytes serializes the primer pack's array-of-entries value (not including
// the KLV key/length of the Primer Pack KLV itself).
func (t *TagTable) Bytes() []byte {
	header := ulid.NewArrayHeader(len(t.tagToKey), primerEntrySize)
	out := make([]byte, ulid.ArrayHeaderSize+len(t.tagToKey)*primerEntrySize)
	offset := header.WriteToSlice(out, 0)

	for tag, key := range t.tagToKey {
		out[offset] = byte(tag >> 8)
		out[offset+1] = byte(tag)
		offset = key.WriteToSlice(out, offset+2)
	}

	return out
}

// ParsePrimerPack decodes a primer pack value into a TagTable.
func ParsePrimerPack(data []byte) (*TagTable, error) {
	if len(data) < ulid.ArrayHeaderSize {
		return nil, fmt.Errorf("%w: primer pack too short", mxferrs.ErrShortRead)
	}

	header, err := ulid.ParseArrayHeader(data[:ulid.ArrayHeaderSize])
	if err != nil {
		return nil, err
	}
	if header.ElementLength != primerEntrySize {
		return nil, fmt.Errorf("%w: primer entry width %d, expected %d",
			mxferrs.ErrPrimerEntryWidth, header.ElementLength, primerEntrySize)
	}

	need := ulid.ArrayHeaderSize + int(header.Count)*primerEntrySize
	if len(data) < need {
		return nil, fmt.Errorf("%w: primer pack truncated", mxferrs.ErrShortRead)
	}

	t := NewTagTable()
	offset := ulid.ArrayHeaderSize
	for i := uint32(0); i < header.Count; i++ {
		tag := uint16(data[offset])<<8 | uint16(data[offset+1])
		key, err := ulid.ParseLabel(data[offset+2 : offset+2+ulid.LabelSize])
		if err != nil {
			return nil, err
		}
		t.Record(tag, key)
		offset += primerEntrySize
	}

	return t, nil
}
