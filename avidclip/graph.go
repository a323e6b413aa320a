package avidclip

import (
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/ulid"
)

// newRegistry builds and finalizes the data model one Avid clip file's
// header metadata is written against: the built-in SMPTE registry plus the
// MobAttributeList extension every package in this package's graphs uses.
func newRegistry() (*datamodel.Registry, error) {
	registry := datamodel.NewSMPTERegistry()
	if err := registerAvidExtension(registry); err != nil {
		return nil, err
	}
	if err := registry.Finalize(); err != nil {
		return nil, err
	}

	return registry, nil
}

// graphInputs carries the per-track values buildTrackGraph needs beyond
// what Writer already tracks on trackState, kept as a separate struct so
// the function signature stays readable.
type graphInputs struct {
	trackID     int
	trackNumber uint32
	essenceType EssenceType
	params      EssenceParams
	filename    string
	duration    int64
	descriptor  *metadata.Set
}

// buildTrackGraph assembles the header metadata object graph for one
// OP-Atom file: a MaterialPackage and a file SourcePackage, linked by a
// SourceClip, plus (if a tape was registered) a TapePackage the file
// SourcePackage in turn references. duration is the finished sample count,
// known only once CompleteWrite runs.
func (w *Writer) buildTrackGraph(registry *datamodel.Registry, in graphInputs) (*metadata.Graph, error) {
	g := metadata.NewGraph(registry)

	editRate := w.format.EditRate()

	ident := metadata.NewSet(datamodel.SetKeyIdentification, newInstanceUID())
	if w.clipName != "" {
		ident.Set(datamodel.ItemIdentificationProductName, newIndirectAttribute(w.clipName))
	}

	filePkg, fileTrackID, err := w.buildFilePackage(g, in)
	if err != nil {
		return nil, err
	}

	var originClip *metadata.Set
	if w.tapeName != "" {
		tapePkg, tapeTrackID := w.buildTapePackage(g, editRate, in.duration)
		originClip = newSourceClip(newInstanceUID(), tapePkg, tapeTrackID, w.tapeStartFrame, in.duration)
	} else {
		originClip = newTimecodeComponent(newInstanceUID(), 0, w.format.RoundedTimecodeBase(), w.dropFrame, in.duration)
	}

	fileSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	fileSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{originClip.InstanceUID}))

	fileTrack := newTrack(newInstanceUID(), fileTrackID, editRate, fileSeq.InstanceUID)

	filePkg.Set(datamodel.ItemPackageTracks, metadata.NewStrongRefBatch([]ulid.UUID{fileTrack.InstanceUID}))

	matPkg := metadata.NewSet(datamodel.SetKeyMaterialPackage, newInstanceUID())
	matPkg.Set(datamodel.ItemPackagePackageUID, metadata.NewUMIDValue(newPackageUMID()))
	if w.clipName != "" {
		matPkg.Set(datamodel.ItemPackageName, newIndirectAttribute(w.clipName))
	}

	matClip := newSourceClip(newInstanceUID(), filePkg, fileTrackID, 0, in.duration)
	matSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	matSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{matClip.InstanceUID}))
	matTrack := newTrack(newInstanceUID(), in.trackID, editRate, matSeq.InstanceUID)
	matPkg.Set(datamodel.ItemPackageTracks, metadata.NewStrongRefBatch([]ulid.UUID{matTrack.InstanceUID}))

	attributes := w.buildAttributes(matPkg)

	ecData := metadata.NewSet(datamodel.SetKeyEssenceContainerData, newInstanceUID())
	ecData.Set(datamodel.ItemEssenceContainerDataLinkedPackageUID, packageUMID(filePkg))
	ecData.Set(datamodel.ItemEssenceContainerDataIndexSID, metadata.NewUint(uint64(indexSID)))
	ecData.Set(datamodel.ItemEssenceContainerDataBodySID, metadata.NewUint(uint64(bodySID)))

	content := metadata.NewSet(datamodel.SetKeyContentStorage, newInstanceUID())
	content.Set(datamodel.ItemContentStoragePackages, metadata.NewStrongRefBatch([]ulid.UUID{matPkg.InstanceUID, filePkg.InstanceUID}))
	content.Set(datamodel.ItemContentStorageEssenceContainerData, metadata.NewStrongRefBatch([]ulid.UUID{ecData.InstanceUID}))

	preface := metadata.NewSet(datamodel.SetKeyPreface, newInstanceUID())
	preface.Set(datamodel.ItemPrefaceContentStorage, metadata.NewStrongRef(content.InstanceUID))
	preface.Set(datamodel.ItemPrefaceIdentifications, metadata.NewStrongRefArray([]ulid.UUID{ident.InstanceUID}))
	preface.Set(datamodel.ItemPrefaceOperationalPattern, metadata.NewLabel(OperationalPattern))

	toAttach := []*metadata.Set{
		ident, filePkg, fileSeq, fileTrack, originClip,
		matPkg, matClip, matSeq, matTrack, ecData, content,
	}
	toAttach = append(toAttach, attributes...)

	for _, s := range toAttach {
		if err := g.Attach(s); err != nil {
			return nil, err
		}
	}
	if err := g.SetRoot(preface); err != nil {
		return nil, err
	}

	return g, nil
}

// buildFilePackage builds the SourcePackage representing the essence file
// itself, attaching in.descriptor as its FileDescriptor, wrapped with a
// NetworkLocator naming the file. It attaches the package and its
// descriptor/locator directly (unlike the sets buildTrackGraph collects
// itself) since they form a self-contained subtree.
func (w *Writer) buildFilePackage(g *metadata.Graph, in graphInputs) (*metadata.Set, int, error) {
	const fileTrackID = 1

	locator := metadata.NewNetworkLocator(newInstanceUID(), in.filename)
	in.descriptor.Set(datamodel.ItemGenericDescriptorLocators, metadata.NewStrongRefArray([]ulid.UUID{locator.InstanceUID}))
	setContainerDuration(in.descriptor, in.duration)

	filePkg := metadata.NewSet(datamodel.SetKeySourcePackage, newInstanceUID())
	filePkg.Set(datamodel.ItemPackagePackageUID, metadata.NewUMIDValue(newPackageUMID()))
	filePkg.Set(datamodel.ItemSourcePackageDescriptor, metadata.NewStrongRef(in.descriptor.InstanceUID))

	if err := g.Attach(locator); err != nil {
		return nil, 0, err
	}
	if err := g.Attach(in.descriptor); err != nil {
		return nil, 0, err
	}

	return filePkg, fileTrackID, nil
}

// buildTapePackage builds the SourcePackage representing the physical
// source tape a clip was digitized from, attaching its own track, sequence,
// and timecode component and attaching every set it owns directly to g.
func (w *Writer) buildTapePackage(g *metadata.Graph, editRate ulid.Rational, duration int64) (*metadata.Set, int) {
	const tapeTrackID = 1

	tape := metadata.NewTapeDescriptor(newInstanceUID(), tapeFormatLabel(w.format), false)

	tapePkg := metadata.NewSet(datamodel.SetKeySourcePackage, newInstanceUID())
	tapePkg.Set(datamodel.ItemPackagePackageUID, metadata.NewUMIDValue(newPackageUMID()))
	tapePkg.Set(datamodel.ItemPackageName, newIndirectAttribute(w.tapeName))
	tapePkg.Set(datamodel.ItemSourcePackageDescriptor, metadata.NewStrongRef(tape.InstanceUID))

	tapeTC := newTimecodeComponent(newInstanceUID(), w.tapeStartFrame, w.format.RoundedTimecodeBase(), w.dropFrame, duration)
	tapeSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	tapeSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{tapeTC.InstanceUID}))
	tapeTrack := newTrack(newInstanceUID(), tapeTrackID, editRate, tapeSeq.InstanceUID)
	tapePkg.Set(datamodel.ItemPackageTracks, metadata.NewStrongRefBatch([]ulid.UUID{tapeTrack.InstanceUID}))

	_ = g.Attach(tape)
	_ = g.Attach(tapeTC)
	_ = g.Attach(tapeSeq)
	_ = g.Attach(tapeTrack)
	_ = g.Attach(tapePkg)

	return tapePkg, tapeTrackID
}

// buildAttributes builds the TaggedValue sets this clip carries (project
// name and any user comments) and attaches them to owner's MobAttributeList
// extension item, returning them for the caller to attach to the graph.
func (w *Writer) buildAttributes(owner *metadata.Set) []*metadata.Set {
	var sets []*metadata.Set
	var ids []ulid.UUID

	if w.projectName != "" {
		tv := newTaggedValue(newInstanceUID(), "_PJ", w.projectName)
		sets = append(sets, tv)
		ids = append(ids, tv.InstanceUID)
	}

	for _, c := range w.comments {
		tv := newTaggedValue(newInstanceUID(), c.name, c.value)
		sets = append(sets, tv)
		ids = append(ids, tv.InstanceUID)
	}

	if len(ids) > 0 {
		owner.Set(ItemPackageAttributes, metadata.NewStrongRefBatch(ids))
	}

	return sets
}

// packageUMID reads back the PackageUID item a package set was built with,
// for use as a SourceClip's or EssenceContainerData's linked-package
// reference. Panics if called on a set that didn't go through one of this
// package's own package builders, which always set it first.
func packageUMID(pkg *metadata.Set) metadata.Value {
	v, ok := pkg.Get(datamodel.ItemPackagePackageUID)
	if !ok {
		panic("avidclip: package set has no PackageUID")
	}

	return v
}

// newTrack builds a Track set with one Sequence reference.
func newTrack(instanceUID ulid.UUID, trackID int, editRate ulid.Rational, sequence ulid.UUID) *metadata.Set {
	s := metadata.NewSet(datamodel.SetKeyTrack, instanceUID)
	s.Set(datamodel.ItemTrackID, metadata.NewUint(uint64(trackID))) //nolint:gosec
	s.Set(datamodel.ItemTrackEditRate, metadata.NewRational(editRate))
	s.Set(datamodel.ItemTrackSequence, metadata.NewStrongRef(sequence))

	return s
}

// newSourceClip builds a SourceClip referencing trackID on target's package
// UID, starting at startPosition with the given duration.
func newSourceClip(instanceUID ulid.UUID, target *metadata.Set, trackID int, startPosition, duration int64) *metadata.Set {
	s := metadata.NewSet(datamodel.SetKeySourceClip, instanceUID)
	s.Set(datamodel.ItemStructuralComponentDuration, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(duration)}) //nolint:gosec
	s.Set(datamodel.ItemSourceClipSourcePackageID, packageUMID(target))
	s.Set(datamodel.ItemSourceClipSourceTrackID, metadata.NewUint(uint64(trackID))) //nolint:gosec
	s.Set(datamodel.ItemSourceClipStartPosition, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(startPosition)}) //nolint:gosec

	return s
}

// newTimecodeComponent builds a TimecodeComponent starting at startFrame.
func newTimecodeComponent(instanceUID ulid.UUID, startFrame int64, roundedBase uint16, dropFrame bool, duration int64) *metadata.Set {
	s := metadata.NewSet(datamodel.SetKeyTimecodeComponent, instanceUID)
	s.Set(datamodel.ItemStructuralComponentDuration, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(duration)}) //nolint:gosec
	s.Set(datamodel.ItemTimecodeComponentStartTimecode, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(startFrame)}) //nolint:gosec
	s.Set(datamodel.ItemTimecodeComponentRoundedTimecodeBase, metadata.Value{Type: datamodel.TypeUint16, Uint: uint64(roundedBase)})
	s.Set(datamodel.ItemTimecodeComponentDropFrame, metadata.NewBool(dropFrame))

	return s
}
