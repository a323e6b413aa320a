// Package avidclip implements the Avid per-track clip writer: OP-Atom
// (clip-wrapped, Avid profile) files, one per registered track, each holding
// a header partition and header metadata, a body partition with a single
// clip-wrapped essence KLV, and a footer partition carrying the index table
// segment (spec §6 Avid clip writer).
package avidclip

import "github.com/mxfgo/mxf/ulid"

// OperationalPattern is the OP-Atom (clip-wrapped, single item) label every
// partition pack in an Avid clip file declares.
var OperationalPattern = ulid.Label{
	0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x10, 0x00, 0x00, 0x00,
}

// EssenceContainerLabel is the generic-container label every Avid essence
// type in this package uses, regardless of picture or sound codec — Avid
// readers require this exact container label rather than a per-codec one.
var EssenceContainerLabel = ulid.Label{
	0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
	0x0D, 0x01, 0x03, 0x01, 0x02, 0x0C, 0x01, 0x00,
}

// PictureElementKey and SoundElementKey identify the single clip-wrapped
// essence element an OP-Atom file carries. Because OP-Atom dedicates one
// file to one track, there is no per-track stamping the way archive's
// frame-wrapped Audio Item keys need: every picture file uses the same key,
// and likewise for sound.
var (
	PictureElementKey = ulid.Key{
		0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01, 0x01,
		0x0D, 0x01, 0x03, 0x01, 0x15, 0x01, 0x01, 0x01,
	}
	SoundElementKey = ulid.Key{
		0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01, 0x01,
		0x0D, 0x01, 0x03, 0x01, 0x16, 0x01, 0x01, 0x01,
	}
)

// palTapeFormatLabel and ntscTapeFormatLabel are the two physical-tape
// format labels a TapeDescriptor can carry, distinguishing a PAL from an
// NTSC source tape.
var (
	palTapeFormatLabel = ulid.Label{
		0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
		0x0D, 0x01, 0x04, 0x01, 0x02, 0x01, 0x01, 0x00,
	}
	ntscTapeFormatLabel = ulid.Label{
		0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01,
		0x0D, 0x01, 0x04, 0x01, 0x02, 0x01, 0x02, 0x00,
	}
)

// tapeFormatLabel returns the TapeDescriptor format label for f.
func tapeFormatLabel(f ProjectFormat) ulid.Label {
	if f == NTSC30IProject {
		return ntscTapeFormatLabel
	}

	return palTapeFormatLabel
}

// bodySID and indexSID are the fixed stream identifiers every Avid clip file
// uses: one essence stream and one index stream per file.
const (
	bodySID  = 1
	indexSID = 2
)

// elementKeyFor returns the clip-wrapped essence element key for t.
func elementKeyFor(t EssenceType) ulid.Key {
	if t.IsPicture() {
		return PictureElementKey
	}

	return SoundElementKey
}
