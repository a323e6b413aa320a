package metadata

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/internal/pool"
	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// instanceUIDItemKey is the well-known InstanceUID item every set carries;
// it is stored on Set.InstanceUID rather than in Set.Items, but still needs
// a primer pack tag and a local-set item entry like any other item.
var instanceUIDItemKey = datamodel.ItemInstanceUID

// instanceUIDLocalTag is the standard local tag for InstanceUID, matching
// the registration in datamodel.NewSMPTERegistry.
const instanceUIDLocalTag = 0x3C0A

// itemHeaderSize is the fixed width of a local-set item's (local_tag,
// item_length) header (spec §4.5).
const itemHeaderSize = 4

// WriteSets assigns local tags to every item key used by g's attached sets,
// writes the primer pack, and then writes each set's local-set KLV in
// Graph.BreadthFirstOrder so owners precede their dependents.
func WriteSets(s *klv.Stream, g *Graph) error {
	order := g.BreadthFirstOrder()

	table := NewTagTable()
	for _, set := range order {
		if set.IsOpaque() {
			continue
		}
		if _, err := table.Assign(instanceUIDItemKey, instanceUIDLocalTag); err != nil {
			return err
		}
		for itemKey := range set.Items {
			registeredTag := uint16(0)
			if def, err := g.Registry.ItemDefFor(set.Key, itemKey); err == nil {
				registeredTag = def.LocalTag
			}
			if _, err := table.Assign(itemKey, registeredTag); err != nil {
				return err
			}
		}
	}

	primerValue := table.Bytes()
	if err := s.WriteKL(PrimerPackKey, uint64(len(primerValue))); err != nil {
		return err
	}

	pb := pool.GetPartitionBuffer()
	pb.MustWrite(primerValue)
	_, werr := pb.WriteTo(s)
	pool.PutPartitionBuffer(pb)
	if werr != nil {
		return fmt.Errorf("writing primer pack: %w", werr)
	}

	for _, set := range order {
		if err := writeSet(s, set, table); err != nil {
			return fmt.Errorf("writing set %s: %w", set.Key, err)
		}
	}

	return nil
}

func writeSet(s *klv.Stream, set *Set, table *TagTable) error {
	if set.IsOpaque() {
		if err := s.WriteKL(set.Key, uint64(len(set.Opaque))); err != nil {
			return err
		}
		_, err := s.Write(set.Opaque)
		return err
	}

	value, err := encodeSetBody(set, table)
	if err != nil {
		return err
	}

	if err := s.WriteKL(set.Key, uint64(len(value))); err != nil {
		return err
	}
	_, err = s.Write(value)

	return err
}

// encodeSetBody renders one set's local-set item sequence. It borrows a
// pooled scratch buffer for the duration of the call rather than growing
// its own slice from scratch — WriteSets calls this once per set in a
// file's header metadata, so the buffer is reused across every set instead
// of allocating and discarding one slice per set.
func encodeSetBody(set *Set, table *TagTable) ([]byte, error) {
	bb := pool.GetSetBuffer()
	defer pool.PutSetBuffer(bb)

	uidTag, ok := table.TagFor(instanceUIDItemKey)
	if !ok {
		return nil, fmt.Errorf("%w: InstanceUID has no assigned local tag", mxferrs.ErrDuplicateTag)
	}
	uidBytes := set.InstanceUID.Bytes()
	uidHeader := make([]byte, itemHeaderSize)
	binary.BigEndian.PutUint16(uidHeader[0:2], uidTag)
	binary.BigEndian.PutUint16(uidHeader[2:4], uint16(len(uidBytes))) //nolint:gosec
	bb.MustWrite(uidHeader)
	bb.MustWrite(uidBytes)

	for itemKey, v := range set.Items {
		tag, ok := table.TagFor(itemKey)
		if !ok {
			return nil, fmt.Errorf("%w: item %s has no assigned local tag", mxferrs.ErrDuplicateTag, itemKey)
		}

		encoded, err := encodeValue(v)
		if err != nil {
			return nil, err
		}

		header := make([]byte, itemHeaderSize)
		binary.BigEndian.PutUint16(header[0:2], tag)
		binary.BigEndian.PutUint16(header[2:4], uint16(len(encoded))) //nolint:gosec

		bb.MustWrite(header)
		bb.MustWrite(encoded)
	}

	return append([]byte(nil), bb.Bytes()...), nil
}

// ReadSets reads a primer pack followed by a sequence of local sets from s
// until io.EOF-equivalent exhaustion is signaled by the caller via count, and
// attaches every decoded set to g. Sets whose key is unknown to g.Registry
// are preserved opaquely. References are left unresolved here; callers
// resolve them in a second pass once every set has been attached (spec §4.5
// "Read": "sets may reference other sets not yet parsed").
func ReadSets(s *klv.Stream, g *Graph, setCount int) (*TagTable, error) {
	key, length, err := s.ReadNextNonFillerKL()
	if err != nil {
		return nil, fmt.Errorf("reading primer pack: %w", err)
	}
	if key != PrimerPackKey {
		return nil, fmt.Errorf("%w: expected primer pack, got %s", mxferrs.ErrUnexpectedKey, key)
	}

	primerValue := make([]byte, length)
	if _, err := readFull(s, primerValue); err != nil {
		return nil, fmt.Errorf("reading primer pack value: %w", err)
	}

	table, err := ParsePrimerPack(primerValue)
	if err != nil {
		return nil, err
	}

	for i := 0; i < setCount; i++ {
		key, length, err := s.ReadNextNonFillerKL()
		if err != nil {
			return nil, fmt.Errorf("reading set %d: %w", i, err)
		}

		value := make([]byte, length)
		if _, err := readFull(s, value); err != nil {
			return nil, fmt.Errorf("reading set %d value: %w", i, err)
		}

		set, err := decodeSet(key, value, table, g)
		if err != nil {
			return nil, fmt.Errorf("decoding set %d: %w", i, err)
		}

		if err := g.Attach(set); err != nil {
			return nil, err
		}
		if g.Root() == nil && !set.IsOpaque() && g.Registry.IsKnownSet(set.Key) {
			if def, _ := g.Registry.SetDefFor(set.Key); def != nil && def.Name == "Preface" {
				g.adoptRoot(set)
			}
		}
	}

	return table, nil
}

func decodeSet(key ulid.Key, value []byte, table *TagTable, g *Graph) (*Set, error) {
	if !g.Registry.IsKnownSet(key) {
		return &Set{Key: key, Opaque: append([]byte(nil), value...)}, nil
	}

	set := &Set{Key: key, Items: make(map[ulid.Key]Value)}

	offset := 0
	for offset < len(value) {
		if offset+itemHeaderSize > len(value) {
			return nil, fmt.Errorf("%w: truncated item header in set %s", mxferrs.ErrShortRead, key)
		}

		tag := binary.BigEndian.Uint16(value[offset : offset+2])
		itemLen := binary.BigEndian.Uint16(value[offset+2 : offset+4])
		offset += itemHeaderSize

		if offset+int(itemLen) > len(value) {
			return nil, fmt.Errorf("%w: truncated item value in set %s", mxferrs.ErrShortRead, key)
		}
		raw := value[offset : offset+int(itemLen)]
		offset += int(itemLen)

		itemKey, ok := table.Lookup(tag)
		if !ok {
			return nil, fmt.Errorf("%w: local tag 0x%04x not present in primer pack", mxferrs.ErrUnknownItem, tag)
		}

		def, err := g.Registry.ItemDefFor(key, itemKey)
		if err != nil {
			return nil, err
		}

		if itemKey == instanceUIDItemKey {
			uid, err := ulid.ParseUUID(raw)
			if err != nil {
				return nil, err
			}
			set.InstanceUID = uid
			continue
		}

		v, err := decodeValue(def.Type, raw)
		if err != nil {
			return nil, err
		}
		set.Items[itemKey] = v
	}

	return set, nil
}

func readFull(s *klv.Stream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("%w: zero-byte read", mxferrs.ErrShortRead)
		}
	}

	return total, nil
}
