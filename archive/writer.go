package archive

import (
	"fmt"

	"github.com/mxfgo/mxf"
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

// systemItemLocalTag and systemItemSize describe the System Item's value
// layout: a local-set-style (tag, length) header, an array header for the
// two-element TimecodeArray property, then the VITC and LTC elements
// themselves.
const (
	systemItemLocalTag = 0x0102
	systemItemSize     = 2 + 2 + ulid.ArrayHeaderSize + 2*timecodeElementSize // 28
)

// elementHeaderWidth is the fixed (key, length) overhead of every content
// package element: this package's writer always uses a 4-byte fixed length
// field (WriteFixedKL), never the variable-width BER encoding klv.WriteKL
// would otherwise choose, so every element's on-disk width is known before
// a single byte is written.
const elementHeaderWidth = 16 + 4

// writeState walks the content package's fixed element order: timecode,
// then video, then one element per audio track, back to timecode (spec
// §4.8).
type writeState int

func (s writeState) String() string {
	switch {
	case s == 0:
		return "timecode"
	case s == 1:
		return "video"
	default:
		return fmt.Sprintf("audio[%d]", s-2)
	}
}

// Writer builds one Archive file: a header partition carrying header
// metadata and an index table segment, followed by a content-package
// essence stream written in strict element order (WriteTimecode, then
// WriteVideoFrame, then WriteAudioFrame once per audio track), closed by
// Complete into a footer partition and a two-entry RIP. Calling a method
// out of turn is a programmer error and panics with a *mxferrs.StateError.
type Writer struct {
	stream         *klv.Stream
	audioKeys      []ulid.Key
	videoFrameSize int
	audioFrameSize int
	state          writeState
	duration       int64
	completed      bool

	sourceLocator string
	tapeName      string
	aspectRatio   ulid.Rational

	envGraph *envelopeGraph
	segment  *indextable.Segment

	headerPack      *partition.Pack
	headerOffset    int64
	headerMetaStart int64
	headerMetaEnd   int64
	indexEnd        int64

	log *zap.Logger
}

// WriterOption configures a Writer at construction.
type WriterOption = options.Option[*Writer]

// WithLogger attaches a structured logger; the default is zap.NewNop().
func WithLogger(log *zap.Logger) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.log = log })
}

// WithSourceLocator records the URL string the file SourcePackage's
// NetworkLocator carries, identifying where this essence's own file lives.
// The default is empty.
func WithSourceLocator(url string) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.sourceLocator = url })
}

// WithTapeName records the physical source tape's name on the tape
// SourcePackage. The default leaves the Name item unset.
func WithTapeName(name string) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.tapeName = name })
}

// WithAspectRatio overrides the picture aspect ratio the CDCIEssenceDescriptor
// carries; the default is 4:3.
func WithAspectRatio(ratio ulid.Rational) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.aspectRatio = ratio })
}

// NewWriter creates a Writer over stream for an Archive file carrying
// audioTracks audio elements (0..8) per content package, with fixed
// per-element byte widths videoFrameSize and audioFrameSize (uniform across
// every audio track). It immediately writes the header partition, the
// complete header metadata object graph (with every duration-bearing item
// at a 0 placeholder), and the index table segment — Complete later
// rewrites exactly these regions in place once the file's final duration
// is known (spec §8 "Header re-write").
func NewWriter(stream *klv.Stream, audioTracks, videoFrameSize, audioFrameSize int, opts ...WriterOption) (*Writer, error) {
	if audioTracks < 0 || audioTracks > maxAudioTracks {
		return nil, fmt.Errorf("%w: %d audio tracks requested, archive format allows 0..%d",
			mxferrs.ErrTrackIndexRange, audioTracks, maxAudioTracks)
	}
	if videoFrameSize <= 0 {
		return nil, fmt.Errorf("%w: videoFrameSize must be positive, got %d", mxferrs.ErrFrameRange, videoFrameSize)
	}
	if audioTracks > 0 && audioFrameSize <= 0 {
		return nil, fmt.Errorf("%w: audioFrameSize must be positive, got %d", mxferrs.ErrFrameRange, audioFrameSize)
	}

	w := &Writer{
		stream:         stream,
		audioKeys:      audioItemKeys(audioTracks),
		videoFrameSize: videoFrameSize,
		audioFrameSize: audioFrameSize,
		aspectRatio:    ulid.Rational{Numerator: 4, Denominator: 3},
		log:            zap.NewNop(),
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	registry, err := newRegistry()
	if err != nil {
		return nil, fmt.Errorf("building data model: %w", err)
	}

	envGraph, err := buildEnvelopeGraph(registry, graphInputs{
		audioTracks:   audioTracks,
		editRate:      editRate,
		aspectRatio:   w.aspectRatio,
		sourceLocator: w.sourceLocator,
		tapeName:      w.tapeName,
	})
	if err != nil {
		return nil, fmt.Errorf("building header metadata: %w", err)
	}
	w.envGraph = envGraph

	eubc := elementHeaderWidth + systemItemSize +
		elementHeaderWidth + videoFrameSize +
		len(w.audioKeys)*(elementHeaderWidth+audioFrameSize)

	w.segment = &indextable.Segment{
		InstanceUID:        newInstanceUID(),
		IndexEditRate:      editRate,
		IndexStartPosition: 0,
		IndexDuration:      0,
		EditUnitByteCount:  uint32(eubc), //nolint:gosec
		IndexSID:           indexSID,
		BodySID:            bodySID,
	}

	if err := w.writeHeaderEnvelope(); err != nil {
		return nil, fmt.Errorf("writing header envelope: %w", err)
	}

	return w, nil
}

// writeHeaderEnvelope writes the header partition pack, the header
// metadata object graph, and the index table segment, recording the
// offsets Complete needs to rewrite these regions in place.
func (w *Writer) writeHeaderEnvelope() error {
	offset, err := w.stream.Position()
	if err != nil {
		return err
	}
	w.headerOffset = offset

	w.headerPack = &partition.Pack{
		Status:             partition.StatusOpenIncomplete,
		Kind:               partition.KindHeader,
		KAGSize:            1,
		IndexSID:           indexSID,
		BodySID:            bodySID,
		OperationalPattern: OperationalPattern,
		EssenceContainers:  []ulid.Label{EssenceContainerLabel},
	}
	if err := writePartitionPack(w.stream, w.headerPack); err != nil {
		return err
	}

	headerMetaStart, err := w.stream.Position()
	if err != nil {
		return err
	}
	w.headerMetaStart = headerMetaStart

	if err := metadata.WriteSets(w.stream, w.envGraph.graph); err != nil {
		return err
	}

	headerMetaEnd, err := w.stream.Position()
	if err != nil {
		return err
	}
	w.headerMetaEnd = headerMetaEnd
	w.headerPack.HeaderByteCount = uint64(headerMetaEnd - headerMetaStart) //nolint:gosec

	if err := w.segment.WriteMonolithic(w.stream); err != nil {
		return err
	}

	indexEnd, err := w.stream.Position()
	if err != nil {
		return err
	}
	w.indexEnd = indexEnd
	w.headerPack.IndexByteCount = uint64(indexEnd - headerMetaEnd) //nolint:gosec

	return nil
}

// writePartitionPack writes a partition pack's KLV at the stream's current
// position.
func writePartitionPack(s *klv.Stream, p *partition.Pack) error {
	value := p.Bytes()
	if err := s.WriteKL(partition.Key(p.Status, p.Kind), uint64(len(value))); err != nil {
		return err
	}
	_, err := s.Write(value)

	return err
}

// Duration returns the number of complete content packages written so far.
func (w *Writer) Duration() int64 {
	return w.duration
}

// AudioTracks returns the number of audio elements each content package
// carries.
func (w *Writer) AudioTracks() int {
	return len(w.audioKeys)
}

func (w *Writer) requireState(op string, want writeState) {
	if w.completed {
		panic(mxferrs.NewStateError(op, want.String(), "completed"))
	}
	if w.state != want {
		panic(mxferrs.NewStateError(op, want.String(), w.state.String()))
	}
}

// WriteTimecode writes the content package's System Item: VITC then LTC,
// each SMPTE-12M encoded. Must be called first in each content package.
func (w *Writer) WriteTimecode(vitc, ltc Timecode) error {
	w.requireState("WriteTimecode", 0)

	value := make([]byte, 0, systemItemSize)
	value = append(value, byte(systemItemLocalTag>>8), byte(systemItemLocalTag&0xff))
	bodyLen := systemItemSize - 4
	value = append(value, byte(bodyLen>>8), byte(bodyLen)) //nolint:gosec
	value = append(value, ulid.NewArrayHeader(2, timecodeElementSize).Bytes()...)

	vitcBytes := encode12M(vitc)
	ltcBytes := encode12M(ltc)
	value = append(value, vitcBytes[:]...)
	value = append(value, ltcBytes[:]...)

	if err := w.stream.WriteFixedKL(SystemItemKey, 4, uint64(len(value))); err != nil {
		return fmt.Errorf("writing system item key/length: %w", err)
	}
	if _, err := w.stream.Write(value); err != nil {
		return fmt.Errorf("writing system item value: %w", err)
	}

	w.log.Debug("wrote system item", zap.Int64("duration", w.duration))

	w.state = 1
	return nil
}

// WriteVideoFrame writes the content package's Video Item. Must follow
// WriteTimecode. data must be exactly videoFrameSize bytes, matching the
// width NewWriter used to compute the index table segment's fixed edit
// unit byte count.
func (w *Writer) WriteVideoFrame(data []byte) error {
	w.requireState("WriteVideoFrame", 1)

	if len(data) != w.videoFrameSize {
		return fmt.Errorf("%w: video frame is %d bytes, want %d", mxferrs.ErrEditUnitByteCount, len(data), w.videoFrameSize)
	}

	if err := w.stream.WriteFixedKL(VideoItemKey, 4, uint64(len(data))); err != nil {
		return fmt.Errorf("writing video item key/length: %w", err)
	}
	if _, err := w.stream.Write(data); err != nil {
		return fmt.Errorf("writing video item value: %w", err)
	}

	if len(w.audioKeys) > 0 {
		w.state = 2
	} else {
		w.completePackage()
	}

	return nil
}

// WriteAudioFrame writes the next Audio Item in the content package, in
// track order. Must follow WriteVideoFrame or a prior WriteAudioFrame. data
// must be exactly audioFrameSize bytes.
func (w *Writer) WriteAudioFrame(data []byte) error {
	trackIndex := int(w.state) - 2
	if w.completed || trackIndex < 0 || trackIndex >= len(w.audioKeys) {
		panic(mxferrs.NewStateError("WriteAudioFrame", "audio[0.."+fmt.Sprint(len(w.audioKeys)-1)+"]", w.state.String()))
	}

	if len(data) != w.audioFrameSize {
		return fmt.Errorf("%w: audio frame %d is %d bytes, want %d", mxferrs.ErrEditUnitByteCount, trackIndex, len(data), w.audioFrameSize)
	}

	key := w.audioKeys[trackIndex]
	if err := w.stream.WriteFixedKL(key, 4, uint64(len(data))); err != nil {
		return fmt.Errorf("writing audio item %d key/length: %w", trackIndex, err)
	}
	if _, err := w.stream.Write(data); err != nil {
		return fmt.Errorf("writing audio item %d value: %w", trackIndex, err)
	}

	w.state++
	if int(w.state) > len(w.audioKeys)+1 {
		w.completePackage()
	}

	return nil
}

func (w *Writer) completePackage() {
	w.duration++
	w.state = 0
	w.log.Debug("content package complete", zap.Int64("duration", w.duration))
}

// Complete finalizes the file: rewrites the header metadata and index
// table segment in place now that the final content package count is
// known, writes the footer partition, and appends the two-entry RIP (one
// entry for the header partition, which carries this file's only essence
// body SID, and one for the footer). Must be called with a fully written
// content package (writeState 0) and exactly once.
func (w *Writer) Complete() error {
	w.requireState("Complete", 0)
	if w.duration == 0 {
		w.log.Debug("completing empty archive file")
	}

	footerOffset, err := w.stream.Position()
	if err != nil {
		return err
	}

	for _, s := range w.envGraph.durationBearingSets() {
		s.Set(datamodel.ItemStructuralComponentDuration, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(w.duration)}) //nolint:gosec
	}
	setContainerDuration(w.envGraph.cdciDescriptor, w.duration)
	w.segment.IndexDuration = w.duration

	if err := w.stream.SeekAbsolute(w.headerMetaStart); err != nil {
		return err
	}
	if err := metadata.WriteSets(w.stream, w.envGraph.graph); err != nil {
		return fmt.Errorf("rewriting header metadata: %w", err)
	}
	if err := w.padOrPanic("header metadata", w.headerMetaEnd); err != nil {
		return err
	}

	if err := w.segment.WriteMonolithic(w.stream); err != nil {
		return fmt.Errorf("rewriting index table segment: %w", err)
	}
	if err := w.padOrPanic("index table segment", w.indexEnd); err != nil {
		return err
	}

	if err := w.stream.SeekAbsolute(footerOffset); err != nil {
		return err
	}

	w.headerPack.Status = partition.StatusClosedComplete

	footerPack := &partition.Pack{
		Status:             partition.StatusClosedComplete,
		Kind:               partition.KindFooter,
		KAGSize:            1,
		OperationalPattern: OperationalPattern,
		EssenceContainers:  []ulid.Label{EssenceContainerLabel},
	}
	if err := writePartitionPack(w.stream, footerPack); err != nil {
		return err
	}

	fileEnd, err := w.stream.Position()
	if err != nil {
		return err
	}

	env := mxf.NewEnvelope()
	env.RecordPartition(w.headerPack, w.headerOffset, bodySID)
	env.RecordPartition(footerPack, footerOffset, 0)

	ripPack, err := env.Finalize()
	if err != nil {
		return fmt.Errorf("finalizing envelope: %w", err)
	}

	for i, pack := range env.Packs {
		if err := w.stream.SeekAbsolute(env.Offsets[i]); err != nil {
			return err
		}
		if err := writePartitionPack(w.stream, pack); err != nil {
			return err
		}
	}

	if err := w.stream.SeekAbsolute(fileEnd); err != nil {
		return err
	}
	if err := ripPack.WriteTo(w.stream); err != nil {
		return fmt.Errorf("writing RIP: %w", err)
	}

	w.completed = true
	w.log.Debug("archive file completed", zap.Int64("duration", w.duration))
	return nil
}

// padOrPanic is called immediately after re-writing a reserved region
// (header metadata, then the index table segment) at Complete time. Every
// duration-bearing item that changed is a fixed-width uint64/uint32 field,
// so the region's re-serialized length is provably identical to its
// originally reserved length (fixedItemsBytes renders the same 9 items
// regardless of their values, and local-set items never vary their own
// encoded width by value) — pad and panic exist only as the defensive
// backstop spec §8 calls for if that invariant is ever violated, not a path
// expected to run.
func (w *Writer) padOrPanic(region string, reservedEnd int64) error {
	pos, err := w.stream.Position()
	if err != nil {
		return err
	}

	switch {
	case pos < reservedEnd:
		return partition.WritePositionFiller(w.stream, reservedEnd)
	case pos > reservedEnd:
		panic(fmt.Sprintf("archive: re-written %s overflows its reserved region by %d bytes", region, pos-reservedEnd))
	default:
		return nil
	}
}
