package avidclip

import (
	"fmt"
	"os"

	"github.com/mxfgo/mxf"
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/indextable"
	"github.com/mxfgo/mxf/internal/options"
	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/partition"
	"github.com/mxfgo/mxf/rip"
	"github.com/mxfgo/mxf/ulid"
	"go.uber.org/zap"
)

// essenceKLLLen is the fixed BER length-field width reserved for a track's
// clip-wrapped essence element, wide enough to express any clip this
// package will realistically write; it lets Writer patch the real length in
// place once the last sample has been written without disturbing anything
// written after it.
const essenceKLLLen = 8

// writerState walks Writer's lifecycle: configuring (SetProjectName,
// SetTape, RegisterEssenceElement, ...) then prepared (WriteSamples) then
// a terminal state (completed or aborted).
type writerState int

const (
	stateConfiguring writerState = iota
	statePrepared
	stateDone
)

type comment struct {
	name  string
	value string
}

// trackState tracks one registered essence element's open file and
// in-progress write position.
type trackState struct {
	trackNumber uint32
	essenceType EssenceType
	params      EssenceParams
	filename    string
	sampleSize  int // 0 means variable bitrate

	handle ReadWriteSeekCloser
	stream *klv.Stream

	headerOffset int64
	bodyOffset   int64
	essenceStart int64 // absolute offset of the essence element's KLV key

	sampleCount  int64
	byteCount    int64
	indexEntries []indextable.IndexEntry

	descriptor *metadata.Set
}

// Writer produces one OP-Atom file per registered track, sharing one
// project configuration (format, names, tape origin, comments) across all
// of them. Calling its methods out of lifecycle order is a programmer error
// and panics with a *mxferrs.StateError, mirroring archive.Writer.
type Writer struct {
	format      ProjectFormat
	aspectRatio ulid.Rational
	dropFrame   bool
	useLegacy   bool
	opener      FileOpener

	projectName    string
	clipName       string
	tapeName       string
	tapeStartFrame int64
	comments       []comment

	registry *datamodel.Registry

	tracks []int
	track  map[int]*trackState

	state writerState
	log   *zap.Logger
}

// WriterOption configures a Writer at construction.
type WriterOption = options.Option[*Writer]

// WithLogger attaches a structured logger; the default is zap.NewNop().
func WithLogger(log *zap.Logger) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.log = log })
}

// NewWriter creates a Writer for a clip in the given project format.
// aspectRatio is the picture aspect ratio every video track's descriptor
// carries; dropFrame selects drop-frame timecode counting; useLegacy
// selects the source tool's older (non-OP-Atom-strict) essence container
// label set, kept here only as a recorded flag since this port targets a
// single, modern container label (see keys.go).
func NewWriter(format ProjectFormat, aspectRatio ulid.Rational, dropFrame, useLegacy bool, opener FileOpener, opts ...WriterOption) (*Writer, error) {
	registry, err := newRegistry()
	if err != nil {
		return nil, fmt.Errorf("building data model: %w", err)
	}

	w := &Writer{
		format:      format,
		aspectRatio: aspectRatio,
		dropFrame:   dropFrame,
		useLegacy:   useLegacy,
		opener:      opener,
		registry:    registry,
		track:       make(map[int]*trackState),
		log:         zap.NewNop(),
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Writer) requireState(op string, want writerState) {
	if w.state != want {
		panic(mxferrs.NewStateError(op, stateName(want), stateName(w.state)))
	}
}

func stateName(s writerState) string {
	switch s {
	case stateConfiguring:
		return "configuring"
	case statePrepared:
		return "prepared"
	default:
		return "done"
	}
}

// SetProjectName records the project name attached to every track's
// MaterialPackage as a "_PJ" TaggedValue attribute.
func (w *Writer) SetProjectName(name string) {
	w.requireState("SetProjectName", stateConfiguring)
	w.projectName = name
}

// SetClipName records the clip name, used both as the MaterialPackage's
// Name item and an Identification ProductName.
func (w *Writer) SetClipName(name string) {
	w.requireState("SetClipName", stateConfiguring)
	w.clipName = name
}

// SetTape records the physical source tape this clip was digitized from:
// its name and the starting timecode, expressed in frames from midnight,
// each registered track's file SourcePackage traces its origin back to.
func (w *Writer) SetTape(name string, startFrame int64) {
	w.requireState("SetTape", stateConfiguring)
	w.tapeName = name
	w.tapeStartFrame = startFrame
}

// AddUserComment attaches an arbitrary name/value TaggedValue attribute to
// every track's MaterialPackage.
func (w *Writer) AddUserComment(name, value string) {
	w.requireState("AddUserComment", stateConfiguring)
	w.comments = append(w.comments, comment{name: name, value: value})
}

// RegisterEssenceElement declares one track this clip will carry: its
// OP-Atom file, essence coding, and (for fixed-size essence) per-sample
// byte width. filename is opaque to Writer; it is passed through to opener
// at PrepareToWrite and recorded as the file's NetworkLocator.
func (w *Writer) RegisterEssenceElement(trackID int, trackNumber uint32, essenceType EssenceType, params EssenceParams, filename string) error {
	w.requireState("RegisterEssenceElement", stateConfiguring)

	if _, exists := w.track[trackID]; exists {
		return fmt.Errorf("%w: track %d already registered", mxferrs.ErrTrackIndexRange, trackID)
	}

	sampleSize := params.FrameSize
	if !essenceType.IsPicture() {
		sampleSize = int((params.QuantizationBits + 7) / 8)
	}

	w.track[trackID] = &trackState{
		trackNumber: trackNumber,
		essenceType: essenceType,
		params:      params,
		filename:    filename,
		sampleSize:  sampleSize,
	}
	w.tracks = append(w.tracks, trackID)

	return nil
}

// PrepareToWrite opens every registered track's file and writes its header
// partition (open, incomplete, carrying no header metadata of its own —
// the footer partition written by CompleteWrite is this format's
// authoritative, closed metadata copy) and body partition, followed by a
// placeholder-length clip-wrapped essence element key ready for
// WriteSamples to fill.
func (w *Writer) PrepareToWrite() error {
	w.requireState("PrepareToWrite", stateConfiguring)

	for _, trackID := range w.tracks {
		ts := w.track[trackID]

		handle, err := w.opener(trackID, ts.filename)
		if err != nil {
			return fmt.Errorf("opening track %d file %q: %w", trackID, ts.filename, err)
		}
		ts.handle = handle
		ts.stream = klv.NewStream(handle)

		if err := w.writeHeaderPartition(ts); err != nil {
			return err
		}
		if err := w.writeBodyPartitionAndEssenceHeader(ts); err != nil {
			return err
		}

		w.log.Debug("track prepared", zap.Int("trackID", trackID), zap.String("filename", ts.filename))
	}

	w.state = statePrepared
	return nil
}

func (w *Writer) writeHeaderPartition(ts *trackState) error {
	offset, err := ts.stream.Position()
	if err != nil {
		return err
	}
	ts.headerOffset = offset

	pack := &partition.Pack{
		Status:             partition.StatusOpenIncomplete,
		Kind:               partition.KindHeader,
		KAGSize:            1,
		IndexSID:           0,
		BodySID:            0,
		OperationalPattern: OperationalPattern,
		EssenceContainers:  []ulid.Label{EssenceContainerLabel},
	}

	return writePartitionPack(ts.stream, pack)
}

func (w *Writer) writeBodyPartitionAndEssenceHeader(ts *trackState) error {
	offset, err := ts.stream.Position()
	if err != nil {
		return err
	}
	ts.bodyOffset = offset

	pack := &partition.Pack{
		Status:             partition.StatusClosedComplete,
		Kind:               partition.KindBody,
		KAGSize:            1,
		IndexSID:           0,
		BodySID:            bodySID,
		OperationalPattern: OperationalPattern,
		EssenceContainers:  []ulid.Label{EssenceContainerLabel},
	}
	if err := writePartitionPack(ts.stream, pack); err != nil {
		return err
	}

	essenceStart, err := ts.stream.Position()
	if err != nil {
		return err
	}
	ts.essenceStart = essenceStart

	return ts.stream.WriteFixedKL(elementKeyFor(ts.essenceType), essenceKLLLen, 0)
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

// WriteSamples appends numSamples essence samples to trackID's file. Fixed-
// size tracks (audio, or picture essence registered with a nonzero
// EssenceParams.FrameSize) may batch several samples per call; variable-
// bitrate picture tracks (e.g. MJPEG) must call this once per sample so
// each frame's index entry can record its own stream offset.
func (w *Writer) WriteSamples(trackID int, numSamples int, data []byte, dataLen int) error {
	w.requireState("WriteSamples", statePrepared)

	ts, ok := w.track[trackID]
	if !ok {
		return fmt.Errorf("%w: track %d not registered", mxferrs.ErrTrackIndexRange, trackID)
	}

	if ts.sampleSize > 0 {
		if want := ts.sampleSize * numSamples; dataLen != want {
			return fmt.Errorf("%w: track %d expected %d bytes for %d samples, got %d",
				mxferrs.ErrEditUnitByteCount, trackID, want, numSamples, dataLen)
		}
	} else if numSamples != 1 {
		return fmt.Errorf("%w: track %d is variable bitrate, WriteSamples must be called once per sample", mxferrs.ErrFrameRange, trackID)
	}

	if _, err := ts.stream.Write(data[:dataLen]); err != nil {
		return fmt.Errorf("writing track %d samples: %w", trackID, err)
	}

	if ts.sampleSize == 0 {
		ts.indexEntries = append(ts.indexEntries, indextable.IndexEntry{StreamOffset: uint64(ts.byteCount)}) //nolint:gosec
	}

	ts.byteCount += int64(dataLen)
	ts.sampleCount += int64(numSamples)

	return nil
}

// buildDescriptor constructs the CDCI or Wave descriptor for ts given the
// project's settings. Descriptors are built here, at CompleteWrite, rather
// than at registration, since a Wave descriptor's container duration item
// isn't known until every sample has been written.
func (w *Writer) buildDescriptor(ts *trackState) *metadata.Set {
	if ts.essenceType.IsPicture() {
		return newCDCIDescriptor(newInstanceUID(), w.format, w.aspectRatio)
	}

	return newWaveDescriptor(newInstanceUID(), w.format, ts.params.QuantizationBits)
}

// CompleteWrite finalizes every registered track's file: patches the
// essence element's length, writes the authoritative header metadata and
// index table segment into a closed footer partition, and appends the RIP.
func (w *Writer) CompleteWrite() error {
	w.requireState("CompleteWrite", statePrepared)

	for _, trackID := range w.tracks {
		ts := w.track[trackID]
		if err := w.completeTrack(trackID, ts); err != nil {
			return err
		}
		if err := ts.handle.Close(); err != nil {
			return fmt.Errorf("closing track %d file: %w", trackID, err)
		}
	}

	w.state = stateDone
	return nil
}

func (w *Writer) completeTrack(trackID int, ts *trackState) error {
	if err := w.patchEssenceLength(ts); err != nil {
		return err
	}

	ts.descriptor = w.buildDescriptor(ts)

	if ts.sampleSize == 0 {
		// Avid readers expect one extra trailing index entry past the last
		// sample, marking the end-of-essence offset so the final sample's
		// length can be computed the same way as every other.
		ts.indexEntries = append(ts.indexEntries, indextable.IndexEntry{StreamOffset: uint64(ts.byteCount)}) //nolint:gosec
	}

	env := mxf.NewEnvelope()
	env.RecordPartition(&partition.Pack{
		Status: partition.StatusOpenIncomplete, Kind: partition.KindHeader, KAGSize: 1,
		OperationalPattern: OperationalPattern, EssenceContainers: []ulid.Label{EssenceContainerLabel},
	}, ts.headerOffset, 0)
	env.RecordPartition(&partition.Pack{
		Status: partition.StatusClosedComplete, Kind: partition.KindBody, KAGSize: 1, BodySID: bodySID,
		OperationalPattern: OperationalPattern, EssenceContainers: []ulid.Label{EssenceContainerLabel},
	}, ts.bodyOffset, bodySID)

	footerOffset, err := ts.stream.Position()
	if err != nil {
		return err
	}

	footerPack := &partition.Pack{
		Status:             partition.StatusClosedComplete,
		Kind:               partition.KindFooter,
		KAGSize:            1,
		IndexSID:           indexSID,
		OperationalPattern: OperationalPattern,
		EssenceContainers:  []ulid.Label{EssenceContainerLabel},
	}
	if err := writePartitionPack(ts.stream, footerPack); err != nil {
		return err
	}

	headerMetaStart, err := ts.stream.Position()
	if err != nil {
		return err
	}

	graph, err := w.buildTrackGraph(w.registry, graphInputs{
		trackID: trackID, trackNumber: ts.trackNumber, essenceType: ts.essenceType,
		params: ts.params, filename: ts.filename, duration: ts.sampleCount, descriptor: ts.descriptor,
	})
	if err != nil {
		return fmt.Errorf("building track %d header metadata: %w", trackID, err)
	}
	if err := metadata.WriteSets(ts.stream, graph); err != nil {
		return fmt.Errorf("writing track %d header metadata: %w", trackID, err)
	}

	indexStart, err := ts.stream.Position()
	if err != nil {
		return err
	}
	footerPack.HeaderByteCount = uint64(indexStart - headerMetaStart) //nolint:gosec

	segment := &indextable.Segment{
		InstanceUID:        newInstanceUID(),
		IndexEditRate:      w.format.EditRate(),
		IndexStartPosition: 0,
		IndexDuration:      ts.sampleCount,
		EditUnitByteCount:  uint32(ts.sampleSize), //nolint:gosec
		IndexSID:           indexSID,
		BodySID:            bodySID,
		IndexEntries:       ts.indexEntries,
	}
	if segment.IsVBR() {
		if err := segment.WriteStreaming(ts.stream); err != nil {
			return fmt.Errorf("writing track %d index segment: %w", trackID, err)
		}
	} else {
		if err := segment.WriteMonolithic(ts.stream); err != nil {
			return fmt.Errorf("writing track %d index segment: %w", trackID, err)
		}
	}

	fileEnd, err := ts.stream.Position()
	if err != nil {
		return err
	}
	footerPack.IndexByteCount = uint64(fileEnd - indexStart) //nolint:gosec

	if err := ts.stream.SeekAbsolute(footerOffset); err != nil {
		return err
	}
	if err := writePartitionPack(ts.stream, footerPack); err != nil {
		return err
	}

	env.RecordPartition(footerPack, footerOffset, 0)
	ripPack, err := env.Finalize()
	if err != nil {
		return fmt.Errorf("finalizing track %d envelope: %w", trackID, err)
	}

	for i, pack := range env.Packs {
		if err := ts.stream.SeekAbsolute(env.Offsets[i]); err != nil {
			return err
		}
		if err := writePartitionPack(ts.stream, pack); err != nil {
			return err
		}
	}

	if err := ts.stream.SeekAbsolute(fileEnd); err != nil {
		return err
	}
	if err := writeRIP(ts.stream, ripPack); err != nil {
		return fmt.Errorf("writing track %d RIP: %w", trackID, err)
	}

	w.log.Debug("track completed", zap.Int("trackID", trackID), zap.Int64("duration", ts.sampleCount))
	return nil
}

func writeRIP(s *klv.Stream, p *rip.Pack) error {
	return p.WriteTo(s)
}

// patchEssenceLength seeks back to trackID's essence element key and
// rewrites its length now that every sample has been written, then returns
// the stream to its prior position.
func (w *Writer) patchEssenceLength(ts *trackState) error {
	endPos, err := ts.stream.Position()
	if err != nil {
		return err
	}

	if err := ts.stream.SeekAbsolute(ts.essenceStart); err != nil {
		return err
	}
	if err := ts.stream.WriteFixedKL(elementKeyFor(ts.essenceType), essenceKLLLen, uint64(ts.byteCount)); err != nil {
		return err
	}

	return ts.stream.SeekAbsolute(endPos)
}

// AbortWrite releases every opened track file, optionally deleting it. This
// is the one place in this package that touches a concrete filesystem
// path, since OP-Atom's one-file-per-track layout means Writer owns actual
// file handles rather than the abstract streams archive.Writer works with.
func (w *Writer) AbortWrite(deleteFiles bool) error {
	if w.state == stateDone {
		panic(mxferrs.NewStateError("AbortWrite", "configuring or prepared", "done"))
	}

	var firstErr error
	for _, trackID := range w.tracks {
		ts := w.track[trackID]
		if ts.handle == nil {
			continue
		}

		if err := ts.handle.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if deleteFiles {
			if err := os.Remove(ts.filename); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	w.state = stateDone
	return firstErr
}
