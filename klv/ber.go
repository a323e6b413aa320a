package klv

import (
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
)

// MaxBERWidth is the largest number of bytes BER long-form length encoding
// permits on the wire (the first length byte is 0x80|width, width<=8).
const MaxBERWidth = 8

// berLengthWidth returns the number of bytes the short or long BER form
// needs to represent length, not counting the leading form/width byte in
// the long-form case.
func berLengthWidth(length uint64) int {
	if length <= 127 {
		return 0
	}

	width := 1
	for v := length >> 8; v > 0; v >>= 8 {
		width++
	}

	return width
}

// encodeBERLength appends the BER encoding of length to dst and returns the
// result. Values <= 127 use the one-byte short form; larger values use the
// long form, 0x80|width followed by width big-endian bytes.
func encodeBERLength(dst []byte, length uint64) []byte {
	if length <= 127 {
		return append(dst, byte(length))
	}

	width := berLengthWidth(length)
	dst = append(dst, 0x80|byte(width))
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(length>>(uint(i)*8)))
	}

	return dst
}

// encodeFixedBERLength appends a BER length field padded to exactly llen
// bytes. llen=1 carries values <= 127 in the short form; llen>=2 always uses
// the long form with first byte 0x80|(llen-1), left-padded with zero bytes.
func encodeFixedBERLength(dst []byte, length uint64, llen int) ([]byte, error) {
	if llen <= 0 {
		return nil, fmt.Errorf("%w: llen must be positive, got %d", mxferrs.ErrInvalidLength, llen)
	}

	if llen == 1 {
		if length > 127 {
			return nil, fmt.Errorf("%w: length %d does not fit in llen=1", mxferrs.ErrInvalidLength, length)
		}

		return append(dst, byte(length)), nil
	}

	width := llen - 1
	if width > 8 {
		return nil, fmt.Errorf("%w: llen=%d exceeds maximum width", mxferrs.ErrInvalidLength, llen)
	}

	maxValue := uint64(1)<<(uint(width)*8) - 1
	if length > maxValue && width < 8 {
		return nil, fmt.Errorf("%w: length %d does not fit in llen=%d", mxferrs.ErrInvalidLength, length, llen)
	}

	dst = append(dst, 0x80|byte(width))
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(length>>(uint(i)*8)))
	}

	return dst, nil
}

// decodeBERLength decodes a BER length field from the start of data,
// returning the decoded length and the number of bytes consumed.
func decodeBERLength(data []byte) (length uint64, consumed int, err error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: empty length field", mxferrs.ErrInvalidLength)
	}

	first := data[0]
	if first&0x80 == 0 {
		return uint64(first), 1, nil
	}

	width := int(first & 0x7F)
	if width == 0 {
		return 0, 0, fmt.Errorf("%w: indefinite-length BER form is not supported", mxferrs.ErrInvalidLength)
	}
	if width > MaxBERWidth {
		return 0, 0, fmt.Errorf("%w: BER length width %d exceeds maximum %d", mxferrs.ErrInvalidLength, width, MaxBERWidth)
	}
	if len(data) < 1+width {
		return 0, 0, fmt.Errorf("%w: BER length needs %d bytes, got %d", mxferrs.ErrShortRead, 1+width, len(data))
	}

	for i := 0; i < width; i++ {
		length = length<<8 | uint64(data[1+i])
	}

	return length, 1 + width, nil
}
