// Package mxferrs defines the sentinel errors shared across the engine's
// packages. Callers use errors.Is against these sentinels rather than
// comparing strings; every non-State error kind wraps one of them via %w so
// that context (offsets, keys, counts) can be attached without losing the
// ability to classify the failure.
package mxferrs

import "errors"

// Format errors: a KLV key, length, or value contradicted the expected
// schema. Fatal to the current operation; callers may retry after reset.
var (
	ErrPartitionNotFound    = errors.New("mxf: partition pack not found")
	ErrUnexpectedKey        = errors.New("mxf: unexpected element key")
	ErrInvalidLength        = errors.New("mxf: invalid BER length encoding")
	ErrBadSystemItem        = errors.New("mxf: system item is not 28 bytes")
	ErrEditUnitByteCount    = errors.New("mxf: edit unit byte count mismatch")
	ErrEssenceLabelMismatch = errors.New("mxf: unexpected essence container label")
	ErrShortRead            = errors.New("mxf: short read decoding fixed-size value")
	ErrIndirectMarker       = errors.New("mxf: unrecognized indirect-value byte order marker")
	ErrFillerRegression     = errors.New("mxf: position filler target is behind current stream position")
	ErrPrimerEntryWidth     = errors.New("mxf: primer pack element width does not match a local tag plus key")
)

// Schema errors: the data model has no definition for a referenced set, or a
// required item is missing at serialization time.
var (
	ErrUnknownSet      = errors.New("mxf: set key not registered in data model")
	ErrUnknownItem     = errors.New("mxf: item key not registered in data model")
	ErrMissingItem     = errors.New("mxf: required item missing")
	ErrUnresolvedRef   = errors.New("mxf: strong or weak reference does not resolve")
	ErrDuplicateTag    = errors.New("mxf: local tag already assigned")
	ErrSetDefCollision = errors.New("mxf: set definition already registered")
	ErrSchemaCycle     = errors.New("mxf: cyclic set parent chain")
)

// Range errors: an index argument is out of bounds.
var (
	ErrTrackIndexRange = errors.New("mxf: audio track index out of range")
	ErrSeekRange       = errors.New("mxf: seek target beyond duration")
	ErrFrameRange      = errors.New("mxf: frame number out of range for timecode base")
)

// StateError reports a writer or reader method called in the wrong state,
// e.g. writeAudio before writeVideo. It is a programmer error, not a
// recoverable fault: callers are expected to let it propagate and fail the
// build or the test, not handle it with errors.Is.
type StateError struct {
	Op   string
	Want string
	Got  string
}

func (e *StateError) Error() string {
	if e.Want == "" {
		return "mxf: " + e.Op + " called in invalid state"
	}
	return "mxf: " + e.Op + ": expected state " + e.Want + ", got " + e.Got
}

// NewStateError builds a StateError for op, expecting the writer or reader to
// have been in state want but finding it in got.
func NewStateError(op, want, got string) *StateError {
	return &StateError{Op: op, Want: want, Got: got}
}
