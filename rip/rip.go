// Package rip implements the Random Index Pack: the file-tail directory of
// partition offsets that lets a reader seek directly to any partition
// without scanning the whole file (spec §4.7).
package rip

import (
	"encoding/binary"
	"fmt"

	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// Key is the well-known RIP KLV key.
var Key = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x11, 0x01, 0x00,
}

// entrySize is the fixed width of one (body_sid, this_partition_offset)
// entry.
const entrySize = 4 + 8

// trailerSize is the width of the 4-byte total length that terminates the
// RIP, letting a reader locate the RIP's start by seeking back from EOF.
const trailerSize = 4

// Entry is one partition's directory record.
type Entry struct {
	BodySID         uint32
	PartitionOffset uint64
}

// Pack is the in-memory representation of a file's RIP.
type Pack struct {
	Entries []Entry
}

// FromPartitions builds a Pack with one entry per partition, in the order
// the partitions were written, given each partition's body SID and
// absolute byte offset.
func FromPartitions(bodySIDs []uint32, offsets []int64) (*Pack, error) {
	if len(bodySIDs) != len(offsets) {
		return nil, fmt.Errorf("%w: %d body SIDs but %d offsets", mxferrs.ErrInvalidLength, len(bodySIDs), len(offsets))
	}

	p := &Pack{Entries: make([]Entry, len(bodySIDs))}
	for i := range bodySIDs {
		p.Entries[i] = Entry{BodySID: bodySIDs[i], PartitionOffset: uint64(offsets[i])} //nolint:gosec
	}

	return p, nil
}

// valueBytes renders the RIP's entry array, used as both the KLV value and
// the basis for the trailing total-length field.
func (p *Pack) valueBytes() []byte {
	out := make([]byte, len(p.Entries)*entrySize)
	offset := 0
	for _, e := range p.Entries {
		binary.BigEndian.PutUint32(out[offset:offset+4], e.BodySID)
		binary.BigEndian.PutUint64(out[offset+4:offset+12], e.PartitionOffset)
		offset += entrySize
	}

	return out
}

// WriteTo writes the RIP KLV followed by its 4-byte total-length trailer.
// The trailer is the total byte count of the key, length field, value, and
// trailer itself, so a reader at EOF can seek back exactly that far to
// find the RIP's start.
func (p *Pack) WriteTo(s *klv.Stream) error {
	value := p.valueBytes()

	startPos, err := s.Position()
	if err != nil {
		return err
	}

	if err := s.WriteKL(Key, uint64(len(value))); err != nil {
		return err
	}
	if _, err := s.Write(value); err != nil {
		return fmt.Errorf("writing RIP entries: %w", err)
	}

	endPos, err := s.Position()
	if err != nil {
		return err
	}

	total := uint32(endPos-startPos) + trailerSize //nolint:gosec

	trailer := make([]byte, trailerSize)
	binary.BigEndian.PutUint32(trailer, total)
	if _, err := s.Write(trailer); err != nil {
		return fmt.Errorf("writing RIP trailer: %w", err)
	}

	return nil
}

// ReadFromEnd reads the RIP from a stream whose end position is fileSize,
// by reading the trailing 4-byte total length, seeking back that far, and
// parsing the KLV found there.
func ReadFromEnd(s *klv.Stream, fileSize int64) (*Pack, error) {
	if err := s.SeekAbsolute(fileSize - trailerSize); err != nil {
		return nil, err
	}

	trailer := make([]byte, trailerSize)
	if _, err := readFull(s, trailer); err != nil {
		return nil, fmt.Errorf("reading RIP trailer: %w", err)
	}
	total := binary.BigEndian.Uint32(trailer)

	ripStart := fileSize - int64(total)
	if ripStart < 0 {
		return nil, fmt.Errorf("%w: RIP total length %d exceeds file size %d", mxferrs.ErrInvalidLength, total, fileSize)
	}

	if err := s.SeekAbsolute(ripStart); err != nil {
		return nil, err
	}

	key, length, err := s.ReadKL()
	if err != nil {
		return nil, err
	}
	if key != Key {
		return nil, fmt.Errorf("%w: expected RIP key, got %s", mxferrs.ErrUnexpectedKey, key)
	}

	value := make([]byte, length)
	if _, err := readFull(s, value); err != nil {
		return nil, fmt.Errorf("reading RIP value: %w", err)
	}

	return Parse(value)
}

// Parse decodes a RIP's value bytes into a Pack.
func Parse(value []byte) (*Pack, error) {
	if len(value)%entrySize != 0 {
		return nil, fmt.Errorf("%w: RIP value length %d not a multiple of entry size %d",
			mxferrs.ErrInvalidLength, len(value), entrySize)
	}

	count := len(value) / entrySize
	p := &Pack{Entries: make([]Entry, count)}

	offset := 0
	for i := 0; i < count; i++ {
		p.Entries[i] = Entry{
			BodySID:         binary.BigEndian.Uint32(value[offset : offset+4]),
			PartitionOffset: binary.BigEndian.Uint64(value[offset+4 : offset+12]),
		}
		offset += entrySize
	}

	return p, nil
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
