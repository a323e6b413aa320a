// Package klv implements the KLV (Key-Length-Value) stream codec that every
// higher layer of the container engine builds on: BER length encoding, the
// filler key, and a reader/writer pair over an io.ReadWriteSeeker.
package klv

import (
	"fmt"
	"io"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// FillerKey is the standard SMPTE KLVFill item key. read_next_non_filler_kl
// skips any KLV whose key equals this one.
var FillerKey = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01,
	0x03, 0x01, 0x02, 0x10, 0x01, 0x00, 0x00, 0x00,
}

// DefaultMinLLen is the minimum BER length-field width used when no call to
// SetMinLLen has overridden it.
const DefaultMinLLen = 4

// KeyLength is the fixed width of a KLV key on the wire.
const KeyLength = 16

// Stream wraps an io.ReadWriteSeeker with KLV key/length codec operations.
// It never buffers the Value portion of a KLV itself; callers read or write
// exactly as many bytes as the decoded length names.
type Stream struct {
	rw      io.ReadWriteSeeker
	minLLen int
}

// NewStream wraps rw for KLV operations, with the default minimum
// length-field width.
func NewStream(rw io.ReadWriteSeeker) *Stream {
	return &Stream{rw: rw, minLLen: DefaultMinLLen}
}

// SetMinLLen sets the minimum BER length-field width subsequent WriteKL and
// WriteFixedKL calls use; partition packs round this up so overall pack
// sizes stay predictable (spec §4.3).
func (s *Stream) SetMinLLen(n int) {
	s.minLLen = n
}

// MinLLen returns the current minimum length-field width.
func (s *Stream) MinLLen() int {
	return s.minLLen
}

// Position returns the stream's current absolute byte offset.
func (s *Stream) Position() (int64, error) {
	return s.rw.Seek(0, io.SeekCurrent)
}

// Skip advances the stream by n bytes without reading their contents.
func (s *Stream) Skip(n int64) error {
	_, err := s.rw.Seek(n, io.SeekCurrent)
	return err
}

// ReadK reads a 16-byte key.
func (s *Stream) ReadK() (ulid.Key, error) {
	var buf [KeyLength]byte
	if _, err := io.ReadFull(s.rw, buf[:]); err != nil {
		return ulid.Key{}, fmt.Errorf("reading key: %w", err)
	}

	return ulid.Key(buf), nil
}

// ReadL reads a BER-encoded length field.
func (s *Stream) ReadL() (uint64, error) {
	var first [1]byte
	if _, err := io.ReadFull(s.rw, first[:]); err != nil {
		return 0, fmt.Errorf("reading length: %w", err)
	}

	if first[0]&0x80 == 0 {
		return uint64(first[0]), nil
	}

	width := int(first[0] & 0x7F)
	if width == 0 {
		return 0, fmt.Errorf("%w: indefinite-length BER form is not supported", mxferrs.ErrInvalidLength)
	}
	if width > MaxBERWidth {
		return 0, fmt.Errorf("%w: BER length width %d exceeds maximum %d", mxferrs.ErrInvalidLength, width, MaxBERWidth)
	}

	rest := make([]byte, width)
	if _, err := io.ReadFull(s.rw, rest); err != nil {
		return 0, fmt.Errorf("reading length: %w", err)
	}

	var length uint64
	for _, b := range rest {
		length = length<<8 | uint64(b)
	}

	return length, nil
}

// ReadKL reads a key followed by its length.
func (s *Stream) ReadKL() (ulid.Key, uint64, error) {
	key, err := s.ReadK()
	if err != nil {
		return key, 0, err
	}

	length, err := s.ReadL()
	if err != nil {
		return key, 0, err
	}

	return key, length, nil
}

// ReadNextNonFillerKL reads key/length pairs, skipping over any filler KLV
// encountered (advancing past its value), and returns the first non-filler
// key and length found.
func (s *Stream) ReadNextNonFillerKL() (ulid.Key, uint64, error) {
	for {
		key, length, err := s.ReadKL()
		if err != nil {
			return key, 0, err
		}

		if key != FillerKey {
			return key, length, nil
		}

		if err := s.Skip(int64(length)); err != nil {
			return key, 0, fmt.Errorf("skipping filler value: %w", err)
		}
	}
}

// WriteKL writes key followed by length encoded with the stream's current
// minimum length-field width (using the long form if the short form would
// be narrower than that minimum).
func (s *Stream) WriteKL(key ulid.Key, length uint64) error {
	llen := s.minLLen
	if shortWidth := 1; llen <= shortWidth && length <= 127 {
		llen = shortWidth
	} else if needed := 1 + berLengthWidth(length); needed > llen {
		llen = needed
	}

	return s.WriteFixedKL(key, llen, length)
}

// WriteFixedKL writes key followed by length, with the length field padded
// to exactly llen bytes.
func (s *Stream) WriteFixedKL(key ulid.Key, llen int, length uint64) error {
	buf := make([]byte, 0, KeyLength+llen)
	buf = append(buf, key[:]...)

	buf, err := encodeFixedBERLength(buf, length, llen)
	if err != nil {
		return err
	}

	if _, err := s.rw.Write(buf); err != nil {
		return fmt.Errorf("writing key/length: %w", err)
	}

	return nil
}

// Write writes raw bytes to the underlying stream, used for KLV values once
// the key/length has been written.
func (s *Stream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

// Read reads raw bytes from the underlying stream, used for KLV values once
// the key/length has been read.
func (s *Stream) Read(p []byte) (int, error) {
	return s.rw.Read(p)
}

// SeekAbsolute seeks to an absolute byte offset.
func (s *Stream) SeekAbsolute(offset int64) error {
	_, err := s.rw.Seek(offset, io.SeekStart)
	return err
}
