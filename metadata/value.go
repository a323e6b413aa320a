// Package metadata implements the header metadata object graph: sets,
// typed item values, the primer pack, and read/write of the local-set
// encoding spec §4.5 describes.
package metadata

import (
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/ulid"
)

// Value is the open-variant item value type named in spec §3: every item in
// a set holds exactly one of these shapes. Exactly one field is meaningful,
// selected by Type.
type Value struct {
	Type datamodel.TypeID

	Uint     uint64
	Int      int64
	Bool     bool
	Rat      ulid.Rational
	TS       ulid.Timestamp
	Label    ulid.Label
	UUID     ulid.UUID
	UMID     ulid.UMID
	Bytes    []byte
	Indirect ulid.IndirectValue
	UTF16    []byte

	// StrongRef/WeakRef hold the referenced set's instance UID; StrongRef
	// additionally implies ownership (the referenced set is written inline
	// as a child of this item, spec §4.5 "Write").
	Ref      ulid.UUID
	RefBatch []ulid.UUID
	RefArray []ulid.UUID
}

// NewUint wraps an unsigned integer value.
func NewUint(v uint64) Value { return Value{Type: datamodel.TypeUint32, Uint: v} }

// NewInt wraps a signed integer value.
func NewInt(v int64) Value { return Value{Type: datamodel.TypeInt32, Int: v} }

// NewBool wraps a boolean value.
func NewBool(v bool) Value { return Value{Type: datamodel.TypeBool, Bool: v} }

// NewRational wraps a rational value.
func NewRational(v ulid.Rational) Value { return Value{Type: datamodel.TypeRational, Rat: v} }

// NewTimestamp wraps a timestamp value.
func NewTimestamp(v ulid.Timestamp) Value { return Value{Type: datamodel.TypeTimestamp, TS: v} }

// NewLabel wraps a label/UL value.
func NewLabel(v ulid.Label) Value { return Value{Type: datamodel.TypeLabel, Label: v} }

// NewUUIDValue wraps a UUID value.
func NewUUIDValue(v ulid.UUID) Value { return Value{Type: datamodel.TypeUUID, UUID: v} }

// NewUMIDValue wraps a UMID value.
func NewUMIDValue(v ulid.UMID) Value { return Value{Type: datamodel.TypeUMID, UMID: v} }

// NewBytes wraps a fixed-size byte block value.
func NewBytes(v []byte) Value { return Value{Type: datamodel.TypeFixedBytes, Bytes: v} }

// NewIndirect wraps an AAF indirect-value (e.g. TaggedValue attribute).
func NewIndirect(v ulid.IndirectValue) Value { return Value{Type: datamodel.TypeIndirect, Indirect: v} }

// NewUTF16String wraps a UTF-16 string value.
func NewUTF16String(v []byte) Value { return Value{Type: datamodel.TypeUTF16String, UTF16: v} }

// NewStrongRef wraps a strong (owning) reference by instance UID.
func NewStrongRef(target ulid.UUID) Value { return Value{Type: datamodel.TypeStrongRef, Ref: target} }

// NewWeakRef wraps a weak (lookup-only) reference by instance UID.
func NewWeakRef(target ulid.UUID) Value { return Value{Type: datamodel.TypeWeakRef, Ref: target} }

// NewStrongRefBatch wraps an unordered batch of strong references.
func NewStrongRefBatch(targets []ulid.UUID) Value {
	return Value{Type: datamodel.TypeStrongRefBatch, RefBatch: targets}
}

// NewStrongRefArray wraps an ordered array of strong references.
func NewStrongRefArray(targets []ulid.UUID) Value {
	return Value{Type: datamodel.TypeStrongRefArray, RefArray: targets}
}

// NewWeakRefBatch wraps an unordered batch of weak references.
func NewWeakRefBatch(targets []ulid.UUID) Value {
	return Value{Type: datamodel.TypeWeakRefBatch, RefBatch: targets}
}

// NewWeakRefArray wraps an ordered array of weak references.
func NewWeakRefArray(targets []ulid.UUID) Value {
	return Value{Type: datamodel.TypeWeakRefArray, RefArray: targets}
}

// IsReference reports whether v's type is one of the four reference shapes.
func (v Value) IsReference() bool {
	switch v.Type {
	case datamodel.TypeStrongRef, datamodel.TypeWeakRef,
		datamodel.TypeStrongRefBatch, datamodel.TypeWeakRefBatch,
		datamodel.TypeStrongRefArray, datamodel.TypeWeakRefArray:
		return true
	default:
		return false
	}
}

// IsOwning reports whether v's type is one of the two strong-reference
// shapes, which imply the referenced set is a child owned by this item.
func (v Value) IsOwning() bool {
	switch v.Type {
	case datamodel.TypeStrongRef, datamodel.TypeStrongRefBatch, datamodel.TypeStrongRefArray:
		return true
	default:
		return false
	}
}

// ReferencedUUIDs returns every instance UID v references, regardless of
// whether v is a single reference, a batch, or an array.
func (v Value) ReferencedUUIDs() []ulid.UUID {
	switch v.Type {
	case datamodel.TypeStrongRef, datamodel.TypeWeakRef:
		return []ulid.UUID{v.Ref}
	case datamodel.TypeStrongRefBatch, datamodel.TypeWeakRefBatch:
		return v.RefBatch
	case datamodel.TypeStrongRefArray, datamodel.TypeWeakRefArray:
		return v.RefArray
	default:
		return nil
	}
}
