// Package klvendian provides byte order utilities for the MXF primitive codec.
//
// MXF is a big-endian format: every KLV key, length, and structured item
// value is written most-significant-byte first. The one exception is the
// AAF "indirect value" encoding used by TaggedValue and similar extension
// properties (spec §4.1, §4.5): the value is prefixed with an explicit
// one-byte marker, 0x42 ('B') for big-endian or 0x4C ('L') for little-endian,
// and the bytes that follow are encoded using whichever order that marker
// names. This package's EndianEngine abstraction lets the indirect-value
// codec select an encoder/decoder pair at runtime instead of hard-coding
// big-endian everywhere.
package klvendian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// IndirectMarkerBig is the leading byte of an AAF indirect value encoded big-endian.
const IndirectMarkerBig = 0x42

// IndirectMarkerLittle is the leading byte of an AAF indirect value encoded little-endian.
const IndirectMarkerLittle = 0x4C

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// EngineForMarker returns the engine named by an indirect-value marker byte,
// and false if the marker is neither of the two recognized values.
func EngineForMarker(marker byte) (EndianEngine, bool) {
	switch marker {
	case IndirectMarkerBig:
		return GetBigEndianEngine(), true
	case IndirectMarkerLittle:
		return GetLittleEndianEngine(), true
	default:
		return nil, false
	}
}

// MarkerForEngine returns the indirect-value marker byte for the given engine.
// Any engine other than the two built-in ones is reported as big-endian.
func MarkerForEngine(engine EndianEngine) byte {
	if engine == GetLittleEndianEngine() {
		return IndirectMarkerLittle
	}

	return IndirectMarkerBig
}
