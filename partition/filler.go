package partition

import (
	"fmt"

	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/mxferrs"
)

// minFillerKLVSize is the smallest legal filler KLV: a 16-byte key plus a
// 1-byte BER length with no value. Any required padding narrower than this
// must absorb an additional full KAG instead (spec §4.3).
const minFillerKLVSize = klv.KeyLength + 1

// WriteKAGFiller writes a filler KLV whose length brings the stream's next
// write position onto a KAG boundary (position % kagSize == 0). If kagSize
// is 0 or 1, alignment is trivially satisfied and no filler is written.
func WriteKAGFiller(s *klv.Stream, kagSize uint32) error {
	if kagSize <= 1 {
		return nil
	}

	pos, err := s.Position()
	if err != nil {
		return err
	}

	remainder := pos % int64(kagSize)
	if remainder == 0 {
		return nil
	}

	pad := int64(kagSize) - remainder

	minPad := int64(klv.KeyLength + s.MinLLen())
	if pad < minPad {
		pad += int64(kagSize)
	}

	return writeFillerOfTotalLength(s, pad)
}

// WritePositionFiller pads the stream from its current position up to the
// absolute byte offset target, writing a single filler KLV. It is used to
// reserve re-writable space for header metadata whose re-serialized size may
// later shrink.
func WritePositionFiller(s *klv.Stream, target int64) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}

	pad := target - pos
	if pad < 0 {
		return fmt.Errorf("%w: target %d, current position %d", mxferrs.ErrFillerRegression, target, pos)
	}
	if pad == 0 {
		return nil
	}

	return writeFillerOfTotalLength(s, pad)
}

// writeFillerOfTotalLength writes one filler KLV whose total encoded size
// (key + length field + value) equals total. If total is smaller than the
// smallest legal filler KLV, the caller's alignment invariant (header/index
// reservation being non-trivially re-fillable) has been violated by a
// caller requesting too small a pad; this only happens when a caller asks
// to pad less than 17 bytes. WriteKAGFiller never does for a kagSize of at
// least 17, while WritePositionFiller passes through whatever gap its
// target leaves, so a target 1 to 16 bytes ahead fails here.
func writeFillerOfTotalLength(s *klv.Stream, total int64) error {
	if total < minFillerKLVSize {
		return fmt.Errorf("%w: filler pad %d is smaller than minimum KLV overhead %d",
			mxferrs.ErrInvalidLength, total, minFillerKLVSize)
	}

	llen := 1
	valueLen := total - klv.KeyLength - int64(llen)
	for (llen == 1 && valueLen > 127) || (llen >= 2 && valueLen >= int64(1)<<(uint(llen-1)*8)) {
		llen++
		if llen > 9 {
			return fmt.Errorf("%w: cannot express filler pad %d with a 9-byte-or-narrower length field",
				mxferrs.ErrInvalidLength, total)
		}
		valueLen = total - klv.KeyLength - int64(llen)
	}

	if err := s.WriteFixedKL(klv.FillerKey, llen, uint64(valueLen)); err != nil {
		return err
	}

	if valueLen > 0 {
		zeros := make([]byte, valueLen)
		if _, err := s.Write(zeros); err != nil {
			return fmt.Errorf("writing filler value: %w", err)
		}
	}

	return nil
}
