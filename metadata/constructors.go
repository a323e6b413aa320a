package metadata

import (
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/klvendian"
	"github.com/mxfgo/mxf/ulid"
)

// NewNetworkLocator builds a NetworkLocator set wrapping urlString as an AAF
// indirect UTF-16 string value, the shape Avid readers expect for a locator
// pointing at sibling essence files.
func NewNetworkLocator(instanceUID ulid.UUID, urlString string) *Set {
	s := NewSet(datamodel.SetKeyNetworkLocator, instanceUID)
	s.Set(datamodel.ItemNetworkLocatorURLString, NewIndirect(
		ulid.NewIndirectString(klvendian.GetBigEndianEngine(), utf16TypeKey, EncodeUTF16BE(urlString)),
	))

	return s
}

// NewTapeDescriptor builds a TapeDescriptor set for a physical source tape,
// recording its format and whether it carries color frame timecode.
func NewTapeDescriptor(instanceUID ulid.UUID, formatLabel ulid.Label, colorFrame bool) *Set {
	s := NewSet(datamodel.SetKeyTapeDescriptor, instanceUID)
	s.Set(datamodel.ItemTapeDescriptorFormat, NewLabel(formatLabel))
	s.Set(datamodel.ItemTapeDescriptorColorFrame, NewBool(colorFrame))

	return s
}

// utf16TypeKey is the AAF string type's embedded type key, used by every
// indirect-value TaggedValue and locator property.
var utf16TypeKey = ulid.Label{
	0x01, 0x10, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// UTF16TypeKey exposes utf16TypeKey for callers outside this package (e.g.
// avidclip's TaggedValue attributes) building their own indirect values.
func UTF16TypeKey() ulid.Label { return utf16TypeKey }

// EncodeUTF16BE renders s as UTF-16BE code units with no BOM, the encoding
// AAF indirect string values carry.
func EncodeUTF16BE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, byte(r>>8), byte(r))
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		out = append(out, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
	}

	return out
}

// TypedGetUint returns item itemKey of set s as an unsigned integer.
func TypedGetUint(s *Set, itemKey ulid.Key) (uint64, bool) {
	v, ok := s.Get(itemKey)
	if !ok {
		return 0, false
	}

	return v.Uint, true
}

// TypedGetRational returns item itemKey of set s as a Rational.
func TypedGetRational(s *Set, itemKey ulid.Key) (ulid.Rational, bool) {
	v, ok := s.Get(itemKey)
	if !ok {
		return ulid.Rational{}, false
	}

	return v.Rat, true
}

// TypedGetLabel returns item itemKey of set s as a Label.
func TypedGetLabel(s *Set, itemKey ulid.Key) (ulid.Label, bool) {
	v, ok := s.Get(itemKey)
	if !ok {
		return ulid.Label{}, false
	}

	return v.Label, true
}

// TypedSetUint sets item itemKey of set s to an unsigned integer value.
func TypedSetUint(s *Set, itemKey ulid.Key, v uint64) {
	s.Set(itemKey, NewUint(v))
}

// TypedSetRational sets item itemKey of set s to a Rational value.
func TypedSetRational(s *Set, itemKey ulid.Key, v ulid.Rational) {
	s.Set(itemKey, NewRational(v))
}
