package ulid

import (
	"fmt"

	"github.com/mxfgo/mxf/klvendian"
	"github.com/mxfgo/mxf/mxferrs"
)

// IndirectValue is the AAF "indirect value" encoding used by TaggedValue and
// similar extension properties: a leading byte-order marker followed by a
// half-swapped type key and the value bytes encoded in the order the marker
// names (spec §4.5 Avid variant).
type IndirectValue struct {
	Engine  klvendian.EndianEngine
	TypeKey Label
	Value   []byte
}

// indirectKeyHalfSwap permutes a type key's first 8 bytes in the pattern AAF
// readers expect for an indirect value's embedded type identifier: each
// 2-byte half of the first two 4-byte groups is swapped.
func indirectKeyHalfSwap(key Label) Label {
	swapped := key
	swapped[0], swapped[1] = key[1], key[0]
	swapped[2], swapped[3] = key[3], key[2]
	swapped[4], swapped[5] = key[5], key[4]
	swapped[6], swapped[7] = key[7], key[6]

	return swapped
}

// Bytes serializes v as marker byte + half-swapped type key + value.
func (v IndirectValue) Bytes() []byte {
	out := make([]byte, 1+LabelSize+len(v.Value))
	out[0] = klvendian.MarkerForEngine(v.Engine)
	swapped := indirectKeyHalfSwap(v.TypeKey)
	copy(out[1:1+LabelSize], swapped[:])
	copy(out[1+LabelSize:], v.Value)

	return out
}

// ParseIndirectValue decodes an AAF indirect value from data.
func ParseIndirectValue(data []byte) (IndirectValue, error) {
	var v IndirectValue
	if len(data) < 1+LabelSize {
		return v, fmt.Errorf("%w: indirect value requires at least %d bytes, got %d",
			mxferrs.ErrShortRead, 1+LabelSize, len(data))
	}

	engine, ok := klvendian.EngineForMarker(data[0])
	if !ok {
		return v, fmt.Errorf("%w: marker byte 0x%02x", mxferrs.ErrIndirectMarker, data[0])
	}

	var swapped Label
	copy(swapped[:], data[1:1+LabelSize])

	v.Engine = engine
	v.TypeKey = indirectKeyHalfSwap(swapped)
	v.Value = append([]byte(nil), data[1+LabelSize:]...)

	return v, nil
}

// NewIndirectString builds an IndirectValue wrapping utf16, UTF-16 code
// units the caller has already encoded in engine's byte order, under the
// caller-supplied typeKey (callers in this module pass the AAF string type
// key). It does not encode or convert the bytes itself.
func NewIndirectString(engine klvendian.EndianEngine, typeKey Label, utf16 []byte) IndirectValue {
	return IndirectValue{
		Engine:  engine,
		TypeKey: typeKey,
		Value:   utf16,
	}
}
