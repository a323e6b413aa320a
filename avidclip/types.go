package avidclip

import "github.com/mxfgo/mxf/ulid"

// ProjectFormat selects the project-wide edit rate and rounded timecode
// base, mirroring the two project formats the source tool supported.
type ProjectFormat int

const (
	PAL25IProject ProjectFormat = iota
	NTSC30IProject
)

// pal25IEditRate and ntsc30IEditRate are the two project edit rates; NTSC's
// is the standard 30000/1001 drop-frame-capable rate, not a flat 30.
var (
	pal25IEditRate  = ulid.Rational{Numerator: 25, Denominator: 1}
	ntsc30IEditRate = ulid.Rational{Numerator: 30000, Denominator: 1001}
)

// EditRate returns the project edit rate for f.
func (f ProjectFormat) EditRate() ulid.Rational {
	if f == NTSC30IProject {
		return ntsc30IEditRate
	}

	return pal25IEditRate
}

// RoundedTimecodeBase returns the integer frame rate timecode components are
// counted against (TimecodeComponent.RoundedTimecodeBase), 25 or 30
// regardless of NTSC's exact fractional rate.
func (f ProjectFormat) RoundedTimecodeBase() uint16 {
	if f == NTSC30IProject {
		return 30
	}

	return 25
}

// EssenceType names one of the essence coding kinds a track can carry. This
// is a representative subset of the source tool's larger codec table
// (MJPEG at six quality levels, several DV and DNxHD variants, two
// uncompressed shapes): one entry per essence family, enough to exercise
// both the CDCI and Wave descriptor paths and both the fixed and
// variable-bitrate index layouts.
type EssenceType int

const (
	MJPEG201 EssenceType = iota
	IECDV25
	DVBased50
	DNxHD1235
	UNCUYVY
	PCM
)

// IsPicture reports whether t is a video essence type (everything but PCM).
func (t EssenceType) IsPicture() bool {
	return t != PCM
}

// EssenceParams carries the one extra piece of information a track's
// descriptor needs beyond its essence type: a fixed video frame size in
// bytes (0 means variable, e.g. MJPEG) or an audio quantization bit depth.
// This mirrors the source tool's EssenceParams union, expressed as a Go
// struct since Go has no unions.
type EssenceParams struct {
	FrameSize        int
	QuantizationBits uint32
}

// FileOpener provides the output stream for one track's file, given its
// track ID and the filename the caller registered it under. OP-Atom is
// inherently one file per track, so Writer cannot take a single
// io.ReadWriteSeeker the way archive.Writer does; it asks the caller to open
// (or create) one stream per track instead, keeping this package itself free
// of any concrete filesystem dependency outside AbortWrite.
type FileOpener func(trackID int, filename string) (ReadWriteSeekCloser, error)

// ReadWriteSeekCloser is the stream shape FileOpener must provide: Writer
// only ever seeks back to patch the reserved header-metadata region and the
// partition packs, so it needs Seek in addition to the usual read/write/
// close trio.
type ReadWriteSeekCloser interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}
