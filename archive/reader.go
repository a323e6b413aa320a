package archive

import (
	"fmt"
	"io"

	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/indextable"
	"github.com/mxfgo/mxf/internal/options"
	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/partition"
	"github.com/mxfgo/mxf/ulid"
	"go.uber.org/zap"
)

// cleanTimecodeThreshold is how many consecutive content packages a target
// timecode must increment by exactly one frame before SeekToTimecode
// switches from linear scanning to extrapolated seeking.
const cleanTimecodeThreshold = 10

// contentPackage is one fully-read edit unit, cached so a caller that reads
// sequentially after a seek doesn't pay for a second read of the package
// the seek already landed on.
type contentPackage struct {
	position int64
	vitc     Timecode
	ltc      Timecode
	video    []byte
	audio    [][]byte
}

// Reader reads an Archive file back from a KLV stream positioned at its
// very first byte: the header partition, header metadata, and index table
// segment are parsed once at construction, recovering the audio track
// count and content package duration authoritatively rather than requiring
// a caller to supply them. Every content package is the same byte size
// (the index table segment's EditUnitByteCount), so Reader can seek
// directly to any position without scanning.
type Reader struct {
	stream            *klv.Stream
	audioKeys         []ulid.Key
	duration          int64
	startOfEssencePos int64
	cpSize            int64
	position          int64
	actualPosition    int64
	cached            contentPackage
	haveCached        bool
	log               *zap.Logger
}

// ReaderOption configures a Reader at construction.
type ReaderOption = options.Option[*Reader]

// WithReaderLogger attaches a structured logger; the default is zap.NewNop().
func WithReaderLogger(log *zap.Logger) ReaderOption {
	return options.NoError[*Reader](func(r *Reader) { r.log = log })
}

// NewReader creates a Reader over stream, which must be positioned at an
// Archive file's very first byte. It parses the header partition, the full
// header metadata object graph, and the index table segment, recovering
// the file's audio track count (from the EssenceContainerData set's
// NumAudioTracks extension item) and content package duration (from the
// index table segment's IndexDuration) without requiring either from the
// caller.
func NewReader(stream *klv.Stream, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{stream: stream, log: zap.NewNop()}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	headerKey, headerLen, err := stream.ReadKL()
	if err != nil {
		return nil, fmt.Errorf("reading header partition: %w", err)
	}
	_, kind, err := partition.DecodeKey(headerKey)
	if err != nil {
		return nil, fmt.Errorf("decoding header partition key: %w", err)
	}
	if kind != partition.KindHeader {
		return nil, fmt.Errorf("%w: expected header partition, got kind %v", mxferrs.ErrUnexpectedKey, kind)
	}
	if err := stream.Skip(int64(headerLen)); err != nil {
		return nil, err
	}

	registry, err := newRegistry()
	if err != nil {
		return nil, fmt.Errorf("building data model: %w", err)
	}
	g := metadata.NewGraph(registry)
	if _, err := metadata.ReadSets(stream, g, headerMetadataSetCount); err != nil {
		return nil, fmt.Errorf("reading header metadata: %w", err)
	}
	if g.Root() == nil {
		return nil, fmt.Errorf("%w: header metadata has no Preface", mxferrs.ErrMissingItem)
	}

	var ecData *metadata.Set
	for _, set := range g.BreadthFirstOrder() {
		if set.Key == datamodel.SetKeyEssenceContainerData {
			ecData = set
			break
		}
	}
	if ecData == nil {
		return nil, fmt.Errorf("%w: no EssenceContainerData set in header metadata", mxferrs.ErrMissingItem)
	}

	numAudioTracks, ok := metadata.TypedGetUint(ecData, ItemNumAudioTracks)
	if !ok {
		return nil, fmt.Errorf("%w: EssenceContainerData has no NumAudioTracks item", mxferrs.ErrMissingItem)
	}
	audioTracks := int(numAudioTracks)
	if audioTracks < 0 || audioTracks > maxAudioTracks {
		return nil, fmt.Errorf("%w: %d audio tracks recorded, archive format allows 0..%d",
			mxferrs.ErrTrackIndexRange, audioTracks, maxAudioTracks)
	}
	r.audioKeys = audioItemKeys(audioTracks)

	segKey, segLen, err := stream.ReadNextNonFillerKL()
	if err != nil {
		return nil, fmt.Errorf("reading index table segment: %w", err)
	}
	if segKey != indextable.SegmentKey {
		return nil, fmt.Errorf("%w: expected index table segment, got %s", mxferrs.ErrUnexpectedKey, segKey)
	}
	segValue := make([]byte, segLen)
	if _, err := readFull(stream, segValue); err != nil {
		return nil, fmt.Errorf("reading index table segment value: %w", err)
	}
	segment, err := indextable.Parse(segValue)
	if err != nil {
		return nil, fmt.Errorf("parsing index table segment: %w", err)
	}

	startPos, err := stream.Position()
	if err != nil {
		return nil, err
	}

	r.duration = segment.IndexDuration
	r.cpSize = int64(segment.EditUnitByteCount)
	r.startOfEssencePos = startPos

	if r.duration > 0 {
		if err := r.readFirstContentPackage(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Duration returns the reader's total content package count.
func (r *Reader) Duration() int64 {
	return r.duration
}

// Position returns the next content package position ReadContentPackage
// will return.
func (r *Reader) Position() int64 {
	return r.position
}

// IsEOF reports whether the reader has consumed every content package.
func (r *Reader) IsEOF() bool {
	return r.position >= r.duration
}

func (r *Reader) readElement(key ulid.Key) ([]byte, int64, error) {
	k, length, err := r.stream.ReadKL()
	if err != nil {
		return nil, 0, err
	}
	if k != key {
		return nil, 0, fmt.Errorf("%w: expected %s, got %s", mxferrs.ErrUnexpectedKey, key, k)
	}

	value := make([]byte, length)
	if _, err := readFull(r.stream, value); err != nil {
		return nil, 0, err
	}

	const keyAndLenWidth = 16 + 4 // this package's writer always uses a fixed 4-byte length field
	return value, int64(keyAndLenWidth) + int64(length), nil
}

func (r *Reader) readFirstContentPackage() error {
	key, length, err := r.stream.ReadNextNonFillerKL()
	if err != nil {
		return err
	}
	if key != SystemItemKey {
		return fmt.Errorf("%w: expected system item key, got %s", mxferrs.ErrUnexpectedKey, key)
	}

	value := make([]byte, length)
	if _, err := readFull(r.stream, value); err != nil {
		return err
	}
	vitc, ltc, err := parseSystemItemValue(value)
	if err != nil {
		return err
	}
	size := int64(16+4) + int64(length)

	video, n, err := r.readElement(VideoItemKey)
	if err != nil {
		return err
	}
	size += n

	audio := make([][]byte, len(r.audioKeys))
	for i, k := range r.audioKeys {
		a, an, err := r.readElement(k)
		if err != nil {
			return err
		}
		audio[i] = a
		size += an
	}

	if size != r.cpSize {
		return fmt.Errorf("%w: first content package is %d bytes, index table segment declares %d",
			mxferrs.ErrEditUnitByteCount, size, r.cpSize)
	}
	r.cached = contentPackage{position: 0, vitc: vitc, ltc: ltc, video: video, audio: audio}
	r.haveCached = true
	r.actualPosition = 1
	r.position = 0

	return nil
}

// ReadContentPackage reads the next content package's VITC/LTC, video
// frame, and audio frames (one per track, in track order). Returns io.EOF
// once every content package has been read.
func (r *Reader) ReadContentPackage() (Timecode, Timecode, []byte, [][]byte, error) {
	if r.position >= r.duration {
		return Timecode{}, Timecode{}, nil, nil, io.EOF
	}

	if r.haveCached && r.cached.position == r.position {
		r.position++
		if r.actualPosition != r.position {
			if err := r.seekToPosition(r.position); err != nil {
				return Timecode{}, Timecode{}, nil, nil, err
			}
		}
		cp := r.cached
		return cp.vitc, cp.ltc, cp.video, cp.audio, nil
	}

	sysValue, total, err := r.readElement(SystemItemKey)
	if err != nil {
		return Timecode{}, Timecode{}, nil, nil, err
	}
	vitc, ltc, err := parseSystemItemValue(sysValue)
	if err != nil {
		return Timecode{}, Timecode{}, nil, nil, err
	}

	video, size, err := r.readElement(VideoItemKey)
	if err != nil {
		return Timecode{}, Timecode{}, nil, nil, err
	}
	total += size

	audio := make([][]byte, len(r.audioKeys))
	for i, k := range r.audioKeys {
		a, n, err := r.readElement(k)
		if err != nil {
			return Timecode{}, Timecode{}, nil, nil, err
		}
		audio[i] = a
		total += n
	}

	if total != r.cpSize {
		return Timecode{}, Timecode{}, nil, nil, fmt.Errorf("%w: content package size changed from %d to %d bytes",
			mxferrs.ErrEditUnitByteCount, r.cpSize, total)
	}

	r.cached = contentPackage{position: r.position, vitc: vitc, ltc: ltc, video: video, audio: audio}
	r.haveCached = true
	r.position++
	r.actualPosition = r.position

	return vitc, ltc, video, audio, nil
}

// SeekToPosition seeks directly to the content package at position.
func (r *Reader) SeekToPosition(position int64) error {
	return r.seekToPosition(position)
}

func (r *Reader) seekToPosition(position int64) error {
	if r.duration == 0 && position == 0 {
		return nil
	}
	if r.duration == 0 {
		return fmt.Errorf("%w: reader has zero duration", mxferrs.ErrSeekRange)
	}
	if position > r.duration {
		return fmt.Errorf("%w: position %d exceeds duration %d", mxferrs.ErrSeekRange, position, r.duration)
	}

	if err := r.stream.SeekAbsolute(r.startOfEssencePos + position*r.cpSize); err != nil {
		return err
	}
	r.actualPosition = position
	r.position = position

	return nil
}

// readSystemItemAt seeks to position and reads only its System Item,
// leaving the stream positioned right after it (not at the start of the
// next content package) — mirroring the original scan, which never reads
// the video/audio elements of a content package it is only checking the
// timecode of.
func (r *Reader) readSystemItemAt(position int64) (Timecode, Timecode, error) {
	if err := r.seekToPosition(position); err != nil {
		return Timecode{}, Timecode{}, err
	}

	value, _, err := r.readElement(SystemItemKey)
	if err != nil {
		return Timecode{}, Timecode{}, err
	}

	return parseSystemItemValue(value)
}

func parseSystemItemValue(value []byte) (Timecode, Timecode, error) {
	if len(value) != systemItemSize {
		return Timecode{}, Timecode{}, fmt.Errorf("%w: system item value is %d bytes, want %d",
			mxferrs.ErrBadSystemItem, len(value), systemItemSize)
	}

	vitcOffset := 2 + 2 + ulid.ArrayHeaderSize
	ltcOffset := vitcOffset + timecodeElementSize

	vitc := decode12M(value[vitcOffset : vitcOffset+timecodeElementSize])
	ltc := decode12M(value[ltcOffset : ltcOffset+timecodeElementSize])

	return vitc, ltc, nil
}

// SeekToTimecode scans forward from the current position looking for a
// content package whose VITC and LTC match (a zero Timecode matches
// anything). If the target timecode is incrementing by exactly one frame
// for more than cleanTimecodeThreshold consecutive content packages, it
// switches to extrapolation: jump directly to the estimated position by
// byte offset and confirm with a single read, falling back to the linear
// scan (permanently, for the rest of this call) if the jump misses.
//
// On success the stream is left positioned at the matching content
// package. On failure, or on any read error, the original position is
// restored.
func (r *Reader) SeekToTimecode(vitc, ltc Timecode) (bool, error) {
	if r.duration == 0 {
		return false, nil
	}

	originalPos := r.position
	trySeekExtrapolate := true
	cleanCount := 0

	var prevVITCFrames, prevLTCFrames int64

	var vitcFrames, ltcFrames int64
	if vitc.IsValid() {
		vitcFrames = frameCount25(vitc)
	}
	if ltc.IsValid() {
		ltcFrames = frameCount25(ltc)
	}

	for r.position < r.duration {
		currentVITC, currentLTC, err := r.readSystemItemAt(r.position)
		if err != nil {
			_ = r.seekToPosition(originalPos)
			return false, err
		}

		if (!vitc.IsValid() || currentVITC == vitc) && (!ltc.IsValid() || currentLTC == ltc) {
			if err := r.seekToPosition(r.position); err != nil {
				return false, err
			}
			return true, nil
		}

		nextPos := r.position + 1

		if trySeekExtrapolate {
			var vitcIsClean, ltcIsClean bool
			var currentVITCFrames, currentLTCFrames int64

			if vitc.IsValid() {
				currentVITCFrames = frameCount25(currentVITC)
				vitcIsClean = currentVITCFrames <= vitcFrames && prevVITCFrames+1 == currentVITCFrames
				prevVITCFrames = currentVITCFrames
			} else {
				vitcIsClean = true
			}

			if ltc.IsValid() {
				currentLTCFrames = frameCount25(currentLTC)
				ltcIsClean = currentLTCFrames <= ltcFrames && prevLTCFrames+1 == currentLTCFrames
				prevLTCFrames = currentLTCFrames
			} else {
				ltcIsClean = true
			}

			if vitcIsClean && ltcIsClean {
				cleanCount++
			} else {
				cleanCount = 0
			}

			if cleanCount > cleanTimecodeThreshold {
				var diff int64
				if vitc.IsValid() {
					diff = vitcFrames - currentVITCFrames
				} else {
					diff = ltcFrames - currentLTCFrames
				}

				r.log.Debug("seek_to_timecode extrapolating", zap.Int64("from", r.position), zap.Int64("diff", diff))

				jumpVITC, jumpLTC, jerr := r.readSystemItemAt(r.position + diff)
				if jerr == nil && (!vitc.IsValid() || jumpVITC == vitc) && (!ltc.IsValid() || jumpLTC == ltc) {
					if err := r.seekToPosition(r.position); err != nil {
						return false, err
					}
					return true, nil
				}

				// the jump missed (or failed outright) — don't try extrapolating again
				trySeekExtrapolate = false
			}
		}

		if err := r.seekToPosition(nextPos); err != nil {
			_ = r.seekToPosition(originalPos)
			return false, err
		}
	}

	if err := r.seekToPosition(originalPos); err != nil {
		return false, err
	}

	return false, nil
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
