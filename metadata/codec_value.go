package metadata

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// encodeValue renders v's wire bytes for a local-set item, not including the
// (local_tag, item_length) header that precedes it.
func encodeValue(v Value) ([]byte, error) {
	switch v.Type {
	case datamodel.TypeUint8:
		return []byte{byte(v.Uint)}, nil
	case datamodel.TypeUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v.Uint))
		return b, nil
	case datamodel.TypeUint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v.Uint))
		return b, nil
	case datamodel.TypeUint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, v.Uint)
		return b, nil
	case datamodel.TypeInt32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v.Int))
		return b, nil
	case datamodel.TypeBool:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case datamodel.TypeRational:
		return v.Rat.Bytes(), nil
	case datamodel.TypeTimestamp:
		return v.TS.Bytes(), nil
	case datamodel.TypeLabel:
		return v.Label.Bytes(), nil
	case datamodel.TypeUUID:
		return v.UUID.Bytes(), nil
	case datamodel.TypeUMID:
		return v.UMID.Bytes(), nil
	case datamodel.TypeFixedBytes:
		return append([]byte(nil), v.Bytes...), nil
	case datamodel.TypeIndirect:
		return v.Indirect.Bytes(), nil
	case datamodel.TypeUTF16String:
		return append([]byte(nil), v.UTF16...), nil
	case datamodel.TypeStrongRef, datamodel.TypeWeakRef:
		return v.Ref.Bytes(), nil
	case datamodel.TypeStrongRefBatch, datamodel.TypeWeakRefBatch, datamodel.TypeStrongRefArray, datamodel.TypeWeakRefArray:
		return encodeRefs(v.ReferencedUUIDs()), nil
	default:
		return nil, fmt.Errorf("%w: value type %d", mxferrs.ErrUnknownItem, v.Type)
	}
}

// encodeRefs renders a batch/array of instance UIDs behind an ArrayHeader,
// matching the (count, element_length) shape used throughout (spec §3).
func encodeRefs(ids []ulid.UUID) []byte {
	header := ulid.NewArrayHeader(len(ids), ulid.UUIDSize)
	out := make([]byte, ulid.ArrayHeaderSize+len(ids)*ulid.UUIDSize)
	offset := header.WriteToSlice(out, 0)
	for _, id := range ids {
		offset = id.WriteToSlice(out, offset)
	}

	return out
}

// decodeValue parses data (the item's raw value bytes) into a Value of the
// given type.
func decodeValue(typeID datamodel.TypeID, data []byte) (Value, error) {
	switch typeID {
	case datamodel.TypeUint8:
		if len(data) != 1 {
			return Value{}, shortReadErr("uint8", 1, len(data))
		}
		return Value{Type: typeID, Uint: uint64(data[0])}, nil
	case datamodel.TypeUint16:
		if len(data) != 2 {
			return Value{}, shortReadErr("uint16", 2, len(data))
		}
		return Value{Type: typeID, Uint: uint64(binary.BigEndian.Uint16(data))}, nil
	case datamodel.TypeUint32:
		if len(data) != 4 {
			return Value{}, shortReadErr("uint32", 4, len(data))
		}
		return Value{Type: typeID, Uint: uint64(binary.BigEndian.Uint32(data))}, nil
	case datamodel.TypeUint64:
		if len(data) != 8 {
			return Value{}, shortReadErr("uint64", 8, len(data))
		}
		return Value{Type: typeID, Uint: binary.BigEndian.Uint64(data)}, nil
	case datamodel.TypeInt32:
		if len(data) != 4 {
			return Value{}, shortReadErr("int32", 4, len(data))
		}
		return Value{Type: typeID, Int: int64(int32(binary.BigEndian.Uint32(data)))}, nil
	case datamodel.TypeBool:
		if len(data) != 1 {
			return Value{}, shortReadErr("bool", 1, len(data))
		}
		return Value{Type: typeID, Bool: data[0] != 0}, nil
	case datamodel.TypeRational:
		r, err := ulid.ParseRational(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, Rat: r}, nil
	case datamodel.TypeTimestamp:
		ts, err := ulid.ParseTimestamp(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, TS: ts}, nil
	case datamodel.TypeLabel:
		l, err := ulid.ParseLabel(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, Label: l}, nil
	case datamodel.TypeUUID:
		u, err := ulid.ParseUUID(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, UUID: u}, nil
	case datamodel.TypeUMID:
		m, err := ulid.ParseUMID(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, UMID: m}, nil
	case datamodel.TypeFixedBytes:
		return Value{Type: typeID, Bytes: append([]byte(nil), data...)}, nil
	case datamodel.TypeIndirect:
		iv, err := ulid.ParseIndirectValue(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, Indirect: iv}, nil
	case datamodel.TypeUTF16String:
		return Value{Type: typeID, UTF16: append([]byte(nil), data...)}, nil
	case datamodel.TypeStrongRef, datamodel.TypeWeakRef:
		id, err := ulid.ParseUUID(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: typeID, Ref: id}, nil
	case datamodel.TypeStrongRefBatch, datamodel.TypeWeakRefBatch, datamodel.TypeStrongRefArray, datamodel.TypeWeakRefArray:
		ids, err := decodeRefs(data)
		if err != nil {
			return Value{}, err
		}
		if typeID == datamodel.TypeStrongRefBatch || typeID == datamodel.TypeWeakRefBatch {
			return Value{Type: typeID, RefBatch: ids}, nil
		}
		return Value{Type: typeID, RefArray: ids}, nil
	default:
		return Value{}, fmt.Errorf("%w: value type %d", mxferrs.ErrUnknownItem, typeID)
	}
}

func decodeRefs(data []byte) ([]ulid.UUID, error) {
	if len(data) < ulid.ArrayHeaderSize {
		return nil, fmt.Errorf("%w: reference array too short", mxferrs.ErrShortRead)
	}

	header, err := ulid.ParseArrayHeader(data[:ulid.ArrayHeaderSize])
	if err != nil {
		return nil, err
	}
	if header.ElementLength != ulid.UUIDSize {
		return nil, fmt.Errorf("%w: reference element width %d, expected %d",
			mxferrs.ErrInvalidLength, header.ElementLength, ulid.UUIDSize)
	}

	need := ulid.ArrayHeaderSize + int(header.Count)*ulid.UUIDSize
	if len(data) < need {
		return nil, fmt.Errorf("%w: reference array truncated", mxferrs.ErrShortRead)
	}

	ids := make([]ulid.UUID, header.Count)
	offset := ulid.ArrayHeaderSize
	for i := range ids {
		id, err := ulid.ParseUUID(data[offset : offset+ulid.UUIDSize])
		if err != nil {
			return nil, err
		}
		ids[i] = id
		offset += ulid.UUIDSize
	}

	return ids, nil
}

func shortReadErr(kind string, want, got int) error {
	return fmt.Errorf("%w: %s requires %d bytes, got %d", mxferrs.ErrShortRead, kind, want, got)
}
