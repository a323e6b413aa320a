// Package ulid provides the fixed-size primitive types that every KLV key,
// structured item, and index entry in the MXF container engine is built
// from: universal labels and local keys, UUIDs, UMIDs, rational numbers, and
// the SMPTE timestamp structure. All multi-byte fields on the wire are
// big-endian; the one exception (the AAF indirect-value marker) is handled
// by the klvendian package, not here.
package ulid

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
)

// Label and Key are both 16-byte SMPTE Universal Labels. Label names a
// registered set or item definition in the data model (spec §4.4); Key is
// the same 16-byte shape used as a local-set item's full identifier before
// primer-pack tag assignment collapses it to a 2-byte local tag (spec §4.5).
type (
	Label [16]byte
	Key   = Label
)

// UUID is a 16-byte SMPTE/AAF instance identifier. Header metadata resolves
// strong and weak references by UUID, never by pointer identity (spec §9).
type UUID [16]byte

// UMID is a 32-byte Unique Material Identifier, used to identify Packages in
// the header metadata object graph.
type UMID [32]byte

// Rational represents a ratio of two signed 32-bit integers, used for edit
// rates and sample rates throughout the header metadata.
type Rational struct {
	Numerator   int32
	Denominator int32
}

// Timestamp is the SMPTE fixed-size date/time structure used by Package
// creation/modification dates.
type Timestamp struct {
	Year   int16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
	Qmsec  uint8 // quarter-milliseconds, 0-249
}

// LabelSize, UUIDSize, UMIDSize, RationalSize, and TimestampSize are the
// fixed on-disk byte widths of the corresponding types.
const (
	LabelSize     = 16
	UUIDSize      = 16
	UMIDSize      = 32
	RationalSize  = 8
	TimestampSize = 8
)

// String renders a label as unseparated uppercase hex, matching the
// convention used throughout SMPTE registers.
func (l Label) String() string {
	return fmt.Sprintf("%X", [16]byte(l))
}

// IsZero reports whether every byte of l is zero.
func (l Label) IsZero() bool {
	return l == Label{}
}

// ParseLabel decodes a 16-byte label from data.
func ParseLabel(data []byte) (Label, error) {
	var l Label
	if len(data) != LabelSize {
		return l, fmt.Errorf("%w: label requires %d bytes, got %d", mxferrs.ErrShortRead, LabelSize, len(data))
	}
	copy(l[:], data)

	return l, nil
}

// Bytes returns l as a 16-byte slice.
func (l Label) Bytes() []byte {
	b := make([]byte, LabelSize)
	copy(b, l[:])

	return b
}

// WriteToSlice writes l into data at offset and returns the next write
// position.
func (l Label) WriteToSlice(data []byte, offset int) int {
	copy(data[offset:offset+LabelSize], l[:])
	return offset + LabelSize
}

// String renders a UUID in the canonical 8-4-4-4-12 hyphenated form.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])

	return string(buf[:])
}

// IsZero reports whether every byte of u is zero.
func (u UUID) IsZero() bool {
	return u == UUID{}
}

// ParseUUID decodes a 16-byte UUID from data.
func ParseUUID(data []byte) (UUID, error) {
	var u UUID
	if len(data) != UUIDSize {
		return u, fmt.Errorf("%w: UUID requires %d bytes, got %d", mxferrs.ErrShortRead, UUIDSize, len(data))
	}
	copy(u[:], data)

	return u, nil
}

// Bytes returns u as a 16-byte slice.
func (u UUID) Bytes() []byte {
	b := make([]byte, UUIDSize)
	copy(b, u[:])

	return b
}

// WriteToSlice writes u into data at offset and returns the next write
// position.
func (u UUID) WriteToSlice(data []byte, offset int) int {
	copy(data[offset:offset+UUIDSize], u[:])
	return offset + UUIDSize
}

// ParseUMID decodes a 32-byte UMID from data.
func ParseUMID(data []byte) (UMID, error) {
	var m UMID
	if len(data) != UMIDSize {
		return m, fmt.Errorf("%w: UMID requires %d bytes, got %d", mxferrs.ErrShortRead, UMIDSize, len(data))
	}
	copy(m[:], data)

	return m, nil
}

// Bytes returns m as a 32-byte slice.
func (m UMID) Bytes() []byte {
	b := make([]byte, UMIDSize)
	copy(b, m[:])

	return b
}

// IsZero reports whether every byte of m is zero.
func (m UMID) IsZero() bool {
	return m == UMID{}
}

// ParseRational decodes an 8-byte numerator/denominator pair from data,
// always big-endian.
func ParseRational(data []byte) (Rational, error) {
	var r Rational
	if len(data) != RationalSize {
		return r, fmt.Errorf("%w: rational requires %d bytes, got %d", mxferrs.ErrShortRead, RationalSize, len(data))
	}
	r.Numerator = int32(binary.BigEndian.Uint32(data[0:4]))
	r.Denominator = int32(binary.BigEndian.Uint32(data[4:8]))

	return r, nil
}

// Bytes returns r as an 8-byte big-endian slice.
func (r Rational) Bytes() []byte {
	b := make([]byte, RationalSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(r.Numerator))
	binary.BigEndian.PutUint32(b[4:8], uint32(r.Denominator))

	return b
}

// WriteToSlice writes r into data at offset and returns the next write
// position.
func (r Rational) WriteToSlice(data []byte, offset int) int {
	binary.BigEndian.PutUint32(data[offset:offset+4], uint32(r.Numerator))
	binary.BigEndian.PutUint32(data[offset+4:offset+8], uint32(r.Denominator))

	return offset + RationalSize
}

// Float64 returns r as a floating-point ratio. A zero denominator returns 0.
func (r Rational) Float64() float64 {
	if r.Denominator == 0 {
		return 0
	}

	return float64(r.Numerator) / float64(r.Denominator)
}

// ParseTimestamp decodes an 8-byte SMPTE timestamp from data.
func ParseTimestamp(data []byte) (Timestamp, error) {
	var ts Timestamp
	if len(data) != TimestampSize {
		return ts, fmt.Errorf("%w: timestamp requires %d bytes, got %d", mxferrs.ErrShortRead, TimestampSize, len(data))
	}
	ts.Year = int16(binary.BigEndian.Uint16(data[0:2]))
	ts.Month = data[2]
	ts.Day = data[3]
	ts.Hour = data[4]
	ts.Minute = data[5]
	ts.Second = data[6]
	ts.Qmsec = data[7]

	return ts, nil
}

// Bytes returns ts as an 8-byte big-endian slice.
func (ts Timestamp) Bytes() []byte {
	b := make([]byte, TimestampSize)
	binary.BigEndian.PutUint16(b[0:2], uint16(ts.Year))
	b[2] = ts.Month
	b[3] = ts.Day
	b[4] = ts.Hour
	b[5] = ts.Minute
	b[6] = ts.Second
	b[7] = ts.Qmsec

	return b
}

// WriteToSlice writes ts into data at offset and returns the next write
// position.
func (ts Timestamp) WriteToSlice(data []byte, offset int) int {
	binary.BigEndian.PutUint16(data[offset:offset+2], uint16(ts.Year))
	data[offset+2] = ts.Month
	data[offset+3] = ts.Day
	data[offset+4] = ts.Hour
	data[offset+5] = ts.Minute
	data[offset+6] = ts.Second
	data[offset+7] = ts.Qmsec

	return offset + TimestampSize
}
