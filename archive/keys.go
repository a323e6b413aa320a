// Package archive implements the Archive MXF file format: a single-partition
// envelope (header partition, header metadata, index table segment,
// content-package essence, footer partition, RIP) wrapping a fixed-shape
// edit unit of System Item, Video Item, and N Audio Items written and read
// in strict order, SMPTE-12M timecode encoding, and timecode search with
// extrapolation (spec §4.7, §4.8).
package archive

import "github.com/mxfgo/mxf/ulid"

// OperationalPattern is the OP1a (single-package, frame-wrapped) label every
// partition pack in an Archive file declares: unlike avidclip's OP-Atom
// (one file per track), an Archive file carries its System/Video/Audio
// items interleaved in a single essence container under one partition.
var OperationalPattern = ulid.Label{
	0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x01, 0x00, 0x00,
}

// EssenceContainerLabel is the generic-container label every Archive file's
// System/Video/Audio item stream declares.
var EssenceContainerLabel = ulid.Label{
	0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
	0x0D, 0x01, 0x03, 0x01, 0x02, 0x0C, 0x02, 0x00,
}

// archiveTapeFormatLabel is the TapeDescriptor format label every Archive
// file's tape SourcePackage carries: the format this package digitizes from
// is fixed (25fps, SMPTE-12M timecode), unlike avidclip's PAL/NTSC choice.
var archiveTapeFormatLabel = ulid.Label{
	0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
	0x0D, 0x01, 0x04, 0x01, 0x02, 0x01, 0x01, 0x00,
}

// bodySID and indexSID are the fixed stream identifiers an Archive file
// uses: one essence stream (interleaved System/Video/Audio items) and one
// index stream, both carried under the single header partition.
const (
	bodySID  = 1
	indexSID = 2
)

// headerMetadataSetCount is the exact number of sets buildEnvelopeGraph attaches
// to the graph, independent of audio track count (audio tracks are counted
// by the NumAudioTracks extension item on EssenceContainerData, not by
// separate Track sets): Identification, ContentStorage,
// EssenceContainerData, MaterialPackage, its timecode Track/Sequence/
// TimecodeComponent, its video Track/Sequence/SourceClip, the file
// SourcePackage, its video Track/Sequence/SourceClip, the MultipleDescriptor,
// its CDCIEssenceDescriptor, its NetworkLocator, the tape SourcePackage, its
// Track/Sequence/TimecodeComponent, its TapeDescriptor, and Preface.
const headerMetadataSetCount = 23

// SystemItemKey identifies the System Item element, which carries the
// content package's VITC and LTC timecodes.
var SystemItemKey = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01,
	0x0D, 0x01, 0x03, 0x01, 0x14, 0x02, 0x01, 0x00,
}

// VideoItemKey identifies the (uncompressed, frame-wrapped) Video Item
// element.
var VideoItemKey = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01, 0x01,
	0x0D, 0x01, 0x03, 0x01, 0x15, 0x01, 0x02, 0x01,
}

// audioItemKeyTemplate is every octet of an Audio Item element key except
// the track-count octet (13) and the 1-based track-number octet (15),
// which audioItemKeys stamps per writer/reader instance.
var audioItemKeyTemplate = ulid.Key{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01, 0x01,
	0x0D, 0x01, 0x03, 0x01, 0x16, 0x00, 0x01, 0x00,
}

// maxAudioTracks is the format's ceiling on audio tracks per content
// package: the track-number octet is only ever 1..8.
const maxAudioTracks = 8

// audioItemKeys builds the trackCount Audio Item element keys for one
// content package. Each key's octet 13 carries trackCount and octet 15 the
// 1-based track number.
//
// This is computed fresh per Writer/Reader rather than mutated in a shared
// package-level table, so that two Writers open on different files with
// different track counts cannot stomp on each other's keys.
func audioItemKeys(trackCount int) []ulid.Key {
	keys := make([]ulid.Key, trackCount)
	for i := 0; i < trackCount; i++ {
		k := audioItemKeyTemplate
		k[13] = byte(trackCount) //nolint:gosec
		k[15] = byte(i + 1)      //nolint:gosec
		keys[i] = k
	}

	return keys
}
