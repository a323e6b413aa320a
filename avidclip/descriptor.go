package avidclip

import (
	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/klvendian"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/ulid"
)

// pictureDims returns the stored width/height this package uses for the
// project format's standard-definition frame, a deliberately simplified
// stand-in for the source tool's per-codec table of exact image geometries
// (which additionally varies alignment offset and VBI size by codec).
func pictureDims(format ProjectFormat) (width, height uint32) {
	if format == NTSC30IProject {
		return 720, 480
	}

	return 720, 576
}

// newCDCIDescriptor builds a CDCIEssenceDescriptor set for a picture track.
// It is built when Writer.CompleteWrite assembles the header metadata, and
// the container duration item is set afterwards from the track's final
// sample count (setContainerDuration).
func newCDCIDescriptor(instanceUID ulid.UUID, format ProjectFormat, aspectRatio ulid.Rational) *metadata.Set {
	width, height := pictureDims(format)

	s := metadata.NewSet(datamodel.SetKeyCDCIEssenceDescriptor, instanceUID)
	s.Set(datamodel.ItemFileDescriptorSampleRate, metadata.NewRational(format.EditRate()))
	s.Set(datamodel.ItemFileDescriptorEssenceContainer, metadata.NewLabel(EssenceContainerLabel))
	s.Set(datamodel.ItemCDCIStoredWidth, metadata.NewUint(uint64(width)))
	s.Set(datamodel.ItemCDCIStoredHeight, metadata.NewUint(uint64(height)))
	s.Set(datamodel.ItemCDCIComponentDepth, metadata.NewUint(8))
	s.Set(datamodel.ItemCDCIHorizontalSubsampling, metadata.NewUint(2))
	s.Set(datamodel.ItemCDCIFrameLayout, metadata.Value{Type: datamodel.TypeUint8, Uint: 1}) // separate fields (interlaced)
	s.Set(datamodel.ItemCDCIImageAspectRatio, metadata.NewRational(aspectRatio))

	return s
}

// newWaveDescriptor builds a WaveAudioDescriptor set for a sound track.
// AvgBps is derived from sample rate × channel count × byte width rather
// than edit rate × block align, which drifts from the true average byte
// rate whenever the edit rate's denominator isn't 1.
func newWaveDescriptor(instanceUID ulid.UUID, format ProjectFormat, quantizationBits uint32) *metadata.Set {
	blockAlign := (quantizationBits + 7) / 8
	const channelCount = 1
	sampleRate := ulid.Rational{Numerator: 48000, Denominator: 1}

	s := metadata.NewSet(datamodel.SetKeyWaveAudioDescriptor, instanceUID)
	s.Set(datamodel.ItemFileDescriptorSampleRate, metadata.NewRational(format.EditRate()))
	s.Set(datamodel.ItemFileDescriptorEssenceContainer, metadata.NewLabel(EssenceContainerLabel))
	s.Set(datamodel.ItemWaveAudioSamplingRate, metadata.NewRational(sampleRate))
	s.Set(datamodel.ItemWaveChannelCount, metadata.NewUint(channelCount))
	s.Set(datamodel.ItemWaveQuantizationBits, metadata.NewUint(uint64(quantizationBits)))
	s.Set(datamodel.ItemWaveBlockAlign, metadata.Value{Type: datamodel.TypeUint16, Uint: uint64(blockAlign)})
	s.Set(datamodel.ItemWaveAvgBytesPerSecond, metadata.NewUint(uint64(sampleRate.Numerator)*channelCount*uint64(blockAlign)))

	return s
}

// setContainerDuration records the number of samples written on the track
// this descriptor belongs to. CDCI and Wave descriptors share the
// FileDescriptor base item for this.
func setContainerDuration(descriptor *metadata.Set, duration int64) {
	descriptor.Set(datamodel.ItemFileDescriptorContainerDuration, metadata.Value{Type: datamodel.TypeUint64, Uint: uint64(duration)}) //nolint:gosec
}

// newIndirectAttribute wraps value as an AAF indirect UTF-16 string, the
// shape every TaggedValue attribute's Value item carries.
func newIndirectAttribute(value string) metadata.Value {
	return metadata.NewIndirect(
		ulid.NewIndirectString(klvendian.GetBigEndianEngine(), metadata.UTF16TypeKey(), metadata.EncodeUTF16BE(value)),
	)
}

// newTaggedValue builds a TaggedValue set carrying one name/value attribute
// pair, used for project name, tape name, and arbitrary user comments.
func newTaggedValue(instanceUID ulid.UUID, name, value string) *metadata.Set {
	s := metadata.NewSet(datamodel.SetKeyTaggedValue, instanceUID)
	s.Set(datamodel.ItemTaggedValueName, newIndirectAttribute(name))
	s.Set(datamodel.ItemTaggedValueValue, newIndirectAttribute(value))

	return s
}
