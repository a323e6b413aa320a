package archive

import (
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/klvendian"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/ulid"
)

// pictureWidth and pictureHeight are the stored frame geometry every
// Archive file's video essence uses: standard-definition PAL, the only
// format this package's fixed 25fps timecode assumption supports.
const (
	pictureWidth  = 720
	pictureHeight = 576
)

// editRate is the fixed content-package rate every Track and
// IndexTableSegment in an Archive file carries, matching this package's
// fixed 25fps timecode arithmetic (timecode.go).
var editRate = ulid.Rational{Numerator: 25, Denominator: 1}

// roundedTimecodeBase is the nominal frame rate every TimecodeComponent in
// an Archive file's graph records.
const roundedTimecodeBase uint16 = 25

// newIndirectAttribute wraps value as an AAF indirect UTF-16 string, the
// shape a package's Name item carries.
func newIndirectAttribute(value string) metadata.Value {
	return metadata.NewIndirect(
		ulid.NewIndirectString(klvendian.GetBigEndianEngine(), metadata.UTF16TypeKey(), metadata.EncodeUTF16BE(value)),
	)
}

// newCDCIDescriptor builds the CDCIEssenceDescriptor set carried (wrapped
// in a MultipleDescriptor, alongside a NetworkLocator) by the file
// SourcePackage. containerDuration is filled in once the final content
// package count is known (Writer.Complete); it is 0 at construction time.
func newCDCIDescriptor(instanceUID ulid.UUID, editRate, aspectRatio ulid.Rational) *metadata.Set {
	s := metadata.NewSet(datamodel.SetKeyCDCIEssenceDescriptor, instanceUID)
	s.Set(datamodel.ItemFileDescriptorSampleRate, metadata.NewRational(editRate))
	s.Set(datamodel.ItemFileDescriptorEssenceContainer, metadata.NewLabel(EssenceContainerLabel))
	s.Set(datamodel.ItemCDCIStoredWidth, metadata.NewUint(pictureWidth))
	s.Set(datamodel.ItemCDCIStoredHeight, metadata.NewUint(pictureHeight))
	s.Set(datamodel.ItemCDCIComponentDepth, metadata.NewUint(8))
	s.Set(datamodel.ItemCDCIHorizontalSubsampling, metadata.NewUint(2))
	s.Set(datamodel.ItemCDCIFrameLayout, metadata.Value{Type: datamodel.TypeUint8, Uint: 1}) // separate fields (interlaced)
	s.Set(datamodel.ItemCDCIImageAspectRatio, metadata.NewRational(aspectRatio))
	setContainerDuration(s, 0)

	return s
}

// setContainerDuration records the number of content packages written so
// far on a FileDescriptor-derived set.
func setContainerDuration(descriptor *metadata.Set, duration int64) {
	descriptor.Set(datamodel.ItemFileDescriptorContainerDuration, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(duration)}) //nolint:gosec
}
