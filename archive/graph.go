package archive

import (
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/ulid"
)

// newRegistry builds and finalizes the data model an Archive file's header
// metadata is written against: the built-in SMPTE registry plus the
// NumAudioTracks extension every file's EssenceContainerData set carries.
func newRegistry() (*datamodel.Registry, error) {
	registry := datamodel.NewSMPTERegistry()
	if err := registerArchiveExtension(registry); err != nil {
		return nil, err
	}
	if err := registry.Finalize(); err != nil {
		return nil, err
	}

	return registry, nil
}

// graphInputs carries the values buildEnvelopeGraph needs to assemble a
// file's header metadata, kept separate from Writer so the graph can be
// built once, up front, with every duration-bearing item still at its
// placeholder value of 0.
type graphInputs struct {
	audioTracks   int
	editRate      ulid.Rational
	aspectRatio   ulid.Rational
	sourceLocator string
	tapeName      string
}

// envelopeGraph is the assembled header metadata object graph for one
// Archive file, plus direct pointers to the sets whose duration-bearing
// items Writer.Complete must mutate once the final content package count
// is known: MaterialPackage's timecode and video components, the file
// SourcePackage's origin clip, the tape SourcePackage's timecode
// component, and the CDCI descriptor's container duration.
type envelopeGraph struct {
	graph *metadata.Graph

	matTimecodeComponent  *metadata.Set
	matVideoClip          *metadata.Set
	fileOriginClip        *metadata.Set
	tapeTimecodeComponent *metadata.Set
	cdciDescriptor        *metadata.Set
}

// durationBearingSets returns every set envelopeGraph tracks whose duration
// item Writer.Complete must rewrite to the file's final content package
// count (spec §8 "Header re-write").
func (eg *envelopeGraph) durationBearingSets() []*metadata.Set {
	return []*metadata.Set{eg.matTimecodeComponent, eg.matVideoClip, eg.fileOriginClip, eg.tapeTimecodeComponent}
}

// buildEnvelopeGraph assembles the fixed 23-set header metadata tree every
// Archive file carries (headerMetadataSetCount): a Preface rooting one
// ContentStorage, which in turn holds a MaterialPackage (one timecode track
// plus one video track), a file SourcePackage (a CDCIEssenceDescriptor and
// a NetworkLocator under a MultipleDescriptor), and a tape SourcePackage
// (the physical source this file's file package was digitized from).
func buildEnvelopeGraph(registry *datamodel.Registry, in graphInputs) (*envelopeGraph, error) {
	g := metadata.NewGraph(registry)

	ident := metadata.NewSet(datamodel.SetKeyIdentification, newInstanceUID())

	locator := metadata.NewNetworkLocator(newInstanceUID(), in.sourceLocator)
	cdciDescriptor := newCDCIDescriptor(newInstanceUID(), in.editRate, in.aspectRatio)
	cdciDescriptor.Set(datamodel.ItemGenericDescriptorLocators, metadata.NewStrongRefArray([]ulid.UUID{locator.InstanceUID}))

	multiDescriptor := metadata.NewSet(datamodel.SetKeyMultipleDescriptor, newInstanceUID())
	multiDescriptor.Set(datamodel.ItemMultipleDescriptorSubDescriptors, metadata.NewStrongRefArray([]ulid.UUID{cdciDescriptor.InstanceUID}))
	multiDescriptor.Set(datamodel.ItemGenericDescriptorLocators, metadata.NewStrongRefArray([]ulid.UUID{locator.InstanceUID}))

	const fileVideoTrackID = 1

	filePkg := metadata.NewSet(datamodel.SetKeySourcePackage, newInstanceUID())
	filePkg.Set(datamodel.ItemPackagePackageUID, metadata.NewUMIDValue(newPackageUMID()))
	filePkg.Set(datamodel.ItemSourcePackageDescriptor, metadata.NewStrongRef(multiDescriptor.InstanceUID))

	tapePkg, tapeTrackID, tapeTimecodeComponent, tapeDescriptor, tapeTrack, tapeSeq := buildTapePackage(in)

	fileOriginClip := newSourceClip(newInstanceUID(), tapePkg, tapeTrackID, 0, 0)
	fileVideoSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	fileVideoSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{fileOriginClip.InstanceUID}))
	fileVideoTrack := newTrack(newInstanceUID(), fileVideoTrackID, in.editRate, fileVideoSeq.InstanceUID)
	filePkg.Set(datamodel.ItemPackageTracks, metadata.NewStrongRefBatch([]ulid.UUID{fileVideoTrack.InstanceUID}))

	const (
		matTimecodeTrackID = 1
		matVideoTrackID    = 2
	)

	matVideoClip := newSourceClip(newInstanceUID(), filePkg, fileVideoTrackID, 0, 0)
	matVideoSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	matVideoSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{matVideoClip.InstanceUID}))
	matVideoTrack := newTrack(newInstanceUID(), matVideoTrackID, in.editRate, matVideoSeq.InstanceUID)

	matTimecodeComponent := newTimecodeComponent(newInstanceUID(), 0, roundedTimecodeBase, false, 0)
	matTimecodeSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	matTimecodeSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{matTimecodeComponent.InstanceUID}))
	matTimecodeTrack := newTrack(newInstanceUID(), matTimecodeTrackID, in.editRate, matTimecodeSeq.InstanceUID)

	matPkg := metadata.NewSet(datamodel.SetKeyMaterialPackage, newInstanceUID())
	matPkg.Set(datamodel.ItemPackagePackageUID, metadata.NewUMIDValue(newPackageUMID()))
	matPkg.Set(datamodel.ItemPackageTracks, metadata.NewStrongRefBatch([]ulid.UUID{matTimecodeTrack.InstanceUID, matVideoTrack.InstanceUID}))

	ecData := metadata.NewSet(datamodel.SetKeyEssenceContainerData, newInstanceUID())
	ecData.Set(datamodel.ItemEssenceContainerDataLinkedPackageUID, packageUMID(filePkg))
	ecData.Set(datamodel.ItemEssenceContainerDataIndexSID, metadata.NewUint(uint64(indexSID)))
	ecData.Set(datamodel.ItemEssenceContainerDataBodySID, metadata.NewUint(uint64(bodySID)))
	ecData.Set(ItemNumAudioTracks, metadata.NewUint(uint64(in.audioTracks))) //nolint:gosec

	content := metadata.NewSet(datamodel.SetKeyContentStorage, newInstanceUID())
	content.Set(datamodel.ItemContentStoragePackages, metadata.NewStrongRefBatch([]ulid.UUID{matPkg.InstanceUID, filePkg.InstanceUID, tapePkg.InstanceUID}))
	content.Set(datamodel.ItemContentStorageEssenceContainerData, metadata.NewStrongRefBatch([]ulid.UUID{ecData.InstanceUID}))

	preface := metadata.NewSet(datamodel.SetKeyPreface, newInstanceUID())
	preface.Set(datamodel.ItemPrefaceContentStorage, metadata.NewStrongRef(content.InstanceUID))
	preface.Set(datamodel.ItemPrefaceIdentifications, metadata.NewStrongRefArray([]ulid.UUID{ident.InstanceUID}))
	preface.Set(datamodel.ItemPrefaceOperationalPattern, metadata.NewLabel(OperationalPattern))

	toAttach := []*metadata.Set{
		ident, content, ecData,
		matPkg, matTimecodeTrack, matTimecodeSeq, matTimecodeComponent, matVideoTrack, matVideoSeq, matVideoClip,
		filePkg, fileVideoTrack, fileVideoSeq, fileOriginClip,
		multiDescriptor, cdciDescriptor, locator,
		tapePkg, tapeTrack, tapeSeq, tapeTimecodeComponent, tapeDescriptor,
	}
	for _, s := range toAttach {
		if err := g.Attach(s); err != nil {
			return nil, err
		}
	}
	if err := g.SetRoot(preface); err != nil {
		return nil, err
	}

	return &envelopeGraph{
		graph:                 g,
		matTimecodeComponent:  matTimecodeComponent,
		matVideoClip:          matVideoClip,
		fileOriginClip:        fileOriginClip,
		tapeTimecodeComponent: tapeTimecodeComponent,
		cdciDescriptor:        cdciDescriptor,
	}, nil
}

// buildTapePackage builds the SourcePackage representing the physical
// source tape a file's essence was digitized from — always present
// (unlike avidclip's optional tape package), since every Archive file
// traces its video track back through a file SourcePackage to a tape
// SourcePackage (spec §8 scenario 1).
func buildTapePackage(in graphInputs) (pkg *metadata.Set, trackID int, timecodeComponent, descriptor, track, seq *metadata.Set) {
	const tapeTrackID = 1

	tape := metadata.NewTapeDescriptor(newInstanceUID(), archiveTapeFormatLabel, false)

	tapePkg := metadata.NewSet(datamodel.SetKeySourcePackage, newInstanceUID())
	tapePkg.Set(datamodel.ItemPackagePackageUID, metadata.NewUMIDValue(newPackageUMID()))
	if in.tapeName != "" {
		tapePkg.Set(datamodel.ItemPackageName, newIndirectAttribute(in.tapeName))
	}
	tapePkg.Set(datamodel.ItemSourcePackageDescriptor, metadata.NewStrongRef(tape.InstanceUID))

	tapeTC := newTimecodeComponent(newInstanceUID(), 0, roundedTimecodeBase, false, 0)
	tapeSeq := metadata.NewSet(datamodel.SetKeySequence, newInstanceUID())
	tapeSeq.Set(datamodel.ItemSequenceStructuralComponents, metadata.NewStrongRefArray([]ulid.UUID{tapeTC.InstanceUID}))
	tapeTrack := newTrack(newInstanceUID(), tapeTrackID, in.editRate, tapeSeq.InstanceUID)
	tapePkg.Set(datamodel.ItemPackageTracks, metadata.NewStrongRefBatch([]ulid.UUID{tapeTrack.InstanceUID}))

	return tapePkg, tapeTrackID, tapeTC, tape, tapeTrack, tapeSeq
}

// packageUMID reads back the PackageUID item a package set was built with.
// Panics if called on a set that didn't go through one of this package's
// own package builders, which always set it first.
func packageUMID(pkg *metadata.Set) metadata.Value {
	v, ok := pkg.Get(datamodel.ItemPackagePackageUID)
	if !ok {
		panic("archive: package set has no PackageUID")
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
