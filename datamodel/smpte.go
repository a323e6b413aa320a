package datamodel

import "github.com/mxfgo/mxf/ulid"

// smpteSetPrefix is the shared 13-octet SMPTE metadata-set registry prefix;
// the 14th-16th octets distinguish each built-in set, mirroring how real
// SMPTE labels are organized into a category/group/version suffix.
var smpteSetPrefix = [13]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01,
	0x0D, 0x01, 0x01, 0x01, 0x01,
}

func setKey(suffix byte) ulid.Key {
	var k ulid.Key
	copy(k[:13], smpteSetPrefix[:])
	k[13] = suffix
	k[14] = 0x00
	k[15] = 0x00

	return k
}

func itemKey(setSuffix, itemSuffix byte) ulid.Key {
	var k ulid.Key
	copy(k[:13], smpteSetPrefix[:])
	k[13] = setSuffix
	k[14] = itemSuffix
	k[15] = 0x00

	return k
}

// Built-in set key suffixes, one per interchange object variant named in
// spec §3.
const (
	sufPreface               = 0x01
	sufIdentification        = 0x02
	sufContentStorage        = 0x03
	sufEssenceContainerData  = 0x04
	sufMaterialPackage       = 0x05
	sufSourcePackage         = 0x06
	sufTrack                 = 0x07
	sufSequence              = 0x08
	sufSourceClip            = 0x09
	sufTimecodeComponent     = 0x0A
	sufMultipleDescriptor    = 0x0B
	sufCDCIEssenceDescriptor = 0x0C
	sufWaveAudioDescriptor   = 0x0D
	sufNetworkLocator        = 0x0E
	sufTapeDescriptor        = 0x0F
	sufTaggedValue           = 0x10
	sufIndexTableSegment     = 0x11
	sufFiller                = 0x12
	sufGenericDescriptor     = 0x13
	sufFileDescriptor        = 0x14
)

// Well-known set keys, exported so application layers (archive, avidclip)
// can reference them directly when assembling header metadata.
var (
	SetKeyPreface               = setKey(sufPreface)
	SetKeyIdentification        = setKey(sufIdentification)
	SetKeyContentStorage        = setKey(sufContentStorage)
	SetKeyEssenceContainerData  = setKey(sufEssenceContainerData)
	SetKeyMaterialPackage       = setKey(sufMaterialPackage)
	SetKeySourcePackage         = setKey(sufSourcePackage)
	SetKeyTrack                 = setKey(sufTrack)
	SetKeySequence              = setKey(sufSequence)
	SetKeySourceClip            = setKey(sufSourceClip)
	SetKeyTimecodeComponent     = setKey(sufTimecodeComponent)
	SetKeyMultipleDescriptor    = setKey(sufMultipleDescriptor)
	SetKeyCDCIEssenceDescriptor = setKey(sufCDCIEssenceDescriptor)
	SetKeyWaveAudioDescriptor   = setKey(sufWaveAudioDescriptor)
	SetKeyNetworkLocator        = setKey(sufNetworkLocator)
	SetKeyTapeDescriptor        = setKey(sufTapeDescriptor)
	SetKeyTaggedValue           = setKey(sufTaggedValue)
	SetKeyIndexTableSegment     = setKey(sufIndexTableSegment)
	SetKeyFiller                = setKey(sufFiller)
	SetKeyGenericDescriptor     = setKey(sufGenericDescriptor)
	SetKeyFileDescriptor        = setKey(sufFileDescriptor)

	// SetKeyGenericPackage and SetKeyStructuralComponent are the two
	// abstract parent sets MaterialPackage/SourcePackage and
	// SourceClip/TimecodeComponent inherit from; they have no concrete
	// key suffix of their own in the built-in suffix table, so they are
	// built directly from the generic (0x00, n) item-key space instead.
	SetKeyGenericPackage      = itemKey(0x00, 0x00)
	SetKeyStructuralComponent = itemKey(0x00, 0x02)
)

// Well-known item keys used by the application layers to populate
// relationship items (strong/weak references, batches) between the sets
// above.
var (
	ItemInstanceUID = itemKey(0x00, 0x01)

	ItemPrefaceContentStorage  = itemKey(sufPreface, 0x02)
	ItemPrefaceIdentifications = itemKey(sufPreface, 0x03)
	ItemPrefaceDMSchemes       = itemKey(sufPreface, 0x04)
	ItemPrefaceOperationalPattern = itemKey(sufPreface, 0x05)

	ItemContentStoragePackages        = itemKey(sufContentStorage, 0x02)
	ItemContentStorageEssenceContainerData = itemKey(sufContentStorage, 0x03)

	ItemPackageTracks   = itemKey(0x00, 0x10)
	ItemPackagePackageUID = itemKey(0x00, 0x11)

	ItemTrackSequence = itemKey(sufTrack, 0x02)
	ItemTrackID       = itemKey(sufTrack, 0x03)
	ItemTrackEditRate = itemKey(sufTrack, 0x04)

	ItemSequenceStructuralComponents = itemKey(sufSequence, 0x02)

	ItemSourceClipSourcePackageID = itemKey(sufSourceClip, 0x02)
	ItemSourceClipSourceTrackID   = itemKey(sufSourceClip, 0x03)

	ItemMultipleDescriptorSubDescriptors = itemKey(sufMultipleDescriptor, 0x02)

	ItemSourcePackageDescriptor = itemKey(sufSourcePackage, 0x01)
	ItemGenericDescriptorLocators = itemKey(sufGenericDescriptor, 0x01)

	ItemNetworkLocatorURLString = itemKey(sufNetworkLocator, 0x01)

	ItemTapeDescriptorFormat     = itemKey(sufTapeDescriptor, 0x01)
	ItemTapeDescriptorColorFrame = itemKey(sufTapeDescriptor, 0x02)

	ItemFileDescriptorSampleRate       = itemKey(sufFileDescriptor, 0x01)
	ItemFileDescriptorContainerDuration = itemKey(sufFileDescriptor, 0x02)
	ItemFileDescriptorEssenceContainer = itemKey(sufFileDescriptor, 0x03)
	ItemFileDescriptorLinkedTrackID    = itemKey(sufFileDescriptor, 0x04)

	ItemCDCIComponentDepth        = itemKey(sufCDCIEssenceDescriptor, 0x01)
	ItemCDCIHorizontalSubsampling = itemKey(sufCDCIEssenceDescriptor, 0x02)
	ItemCDCIStoredWidth           = itemKey(sufCDCIEssenceDescriptor, 0x03)
	ItemCDCIStoredHeight          = itemKey(sufCDCIEssenceDescriptor, 0x04)
	ItemCDCIFrameLayout           = itemKey(sufCDCIEssenceDescriptor, 0x05)
	ItemCDCIImageAspectRatio      = itemKey(sufCDCIEssenceDescriptor, 0x06)

	ItemWaveAudioSamplingRate   = itemKey(sufWaveAudioDescriptor, 0x01)
	ItemWaveChannelCount        = itemKey(sufWaveAudioDescriptor, 0x02)
	ItemWaveQuantizationBits    = itemKey(sufWaveAudioDescriptor, 0x03)
	ItemWaveBlockAlign          = itemKey(sufWaveAudioDescriptor, 0x04)
	ItemWaveAvgBytesPerSecond   = itemKey(sufWaveAudioDescriptor, 0x05)

	ItemTimecodeComponentStartTimecode        = itemKey(sufTimecodeComponent, 0x01)
	ItemTimecodeComponentRoundedTimecodeBase  = itemKey(sufTimecodeComponent, 0x02)
	ItemTimecodeComponentDropFrame            = itemKey(sufTimecodeComponent, 0x03)

	ItemStructuralComponentDuration = itemKey(0x00, 0x03)

	ItemSourceClipStartPosition = itemKey(sufSourceClip, 0x04)

	ItemIdentificationCompanyName      = itemKey(sufIdentification, 0x01)
	ItemIdentificationProductName      = itemKey(sufIdentification, 0x02)
	ItemIdentificationProductUID       = itemKey(sufIdentification, 0x03)
	ItemIdentificationGenerationUID    = itemKey(sufIdentification, 0x04)

	ItemTaggedValueName  = itemKey(sufTaggedValue, 0x01)
	ItemTaggedValueValue = itemKey(sufTaggedValue, 0x02)

	ItemPackageName           = itemKey(0x00, 0x12)
	ItemPackageCreationDate   = itemKey(0x00, 0x13)
	ItemPackageModifiedDate   = itemKey(0x00, 0x14)

	ItemEssenceContainerDataLinkedPackageUID = itemKey(sufEssenceContainerData, 0x01)
	ItemEssenceContainerDataIndexSID         = itemKey(sufEssenceContainerData, 0x02)
	ItemEssenceContainerDataBodySID          = itemKey(sufEssenceContainerData, 0x03)
)

// NewSMPTERegistry builds a Registry seeded with the built-in set and item
// definitions a minimal Archive/Avid header metadata graph needs: Preface,
// Identification, ContentStorage, MaterialPackage, SourcePackage, Track,
// Sequence, SourceClip, TimecodeComponent, MultipleDescriptor,
// CDCIEssenceDescriptor, WaveAudioDescriptor, NetworkLocator,
// TapeDescriptor, TaggedValue, IndexTableSegment, and Filler. It is not
// finalized; callers may RegisterExtension additional definitions (e.g.
// Avid's MetaDictionary/Dictionary) before calling Finalize.
func NewSMPTERegistry() *Registry {
	r := NewRegistry()

	type setSpec struct {
		name string
		key  ulid.Key
	}
	sets := []setSpec{
		{"Preface", SetKeyPreface},
		{"Identification", SetKeyIdentification},
		{"ContentStorage", SetKeyContentStorage},
		{"EssenceContainerData", SetKeyEssenceContainerData},
		{"GenericPackage", SetKeyGenericPackage},
		{"MaterialPackage", SetKeyMaterialPackage},
		{"SourcePackage", SetKeySourcePackage},
		{"Track", SetKeyTrack},
		{"Sequence", SetKeySequence},
		{"StructuralComponent", SetKeyStructuralComponent},
		{"SourceClip", SetKeySourceClip},
		{"TimecodeComponent", SetKeyTimecodeComponent},
		{"GenericDescriptor", SetKeyGenericDescriptor},
		{"FileDescriptor", SetKeyFileDescriptor},
		{"MultipleDescriptor", SetKeyMultipleDescriptor},
		{"CDCIEssenceDescriptor", SetKeyCDCIEssenceDescriptor},
		{"WaveAudioDescriptor", SetKeyWaveAudioDescriptor},
		{"NetworkLocator", SetKeyNetworkLocator},
		{"TapeDescriptor", SetKeyTapeDescriptor},
		{"TaggedValue", SetKeyTaggedValue},
		{"IndexTableSegment", SetKeyIndexTableSegment},
		{"Filler", SetKeyFiller},
	}

	genericPackage := SetKeyGenericPackage
	structuralComponent := SetKeyStructuralComponent

	parents := map[ulid.Key]ulid.Key{
		SetKeyMaterialPackage:       genericPackage,
		SetKeySourcePackage:         genericPackage,
		SetKeySourceClip:            structuralComponent,
		SetKeyTimecodeComponent:     structuralComponent,
		SetKeyFileDescriptor:        SetKeyGenericDescriptor,
		SetKeyCDCIEssenceDescriptor: SetKeyFileDescriptor,
		SetKeyWaveAudioDescriptor:   SetKeyFileDescriptor,
		SetKeyMultipleDescriptor:    SetKeyGenericDescriptor,
	}

	for _, s := range sets {
		parent := parents[s.key]
		_ = r.RegisterSetDef(s.name, parent, s.key)
	}

	// Every set carries an instance UID (spec §3).
	for _, s := range sets {
		_ = r.RegisterItemDef("InstanceUID", s.key, ItemInstanceUID, 0x3C0A, TypeUUID, true)
	}

	_ = r.RegisterItemDef("ContentStorage", SetKeyPreface, ItemPrefaceContentStorage, 0x3B03, TypeStrongRef, true)
	_ = r.RegisterItemDef("Identifications", SetKeyPreface, ItemPrefaceIdentifications, 0x3B06, TypeStrongRefArray, true)
	_ = r.RegisterItemDef("DMSchemes", SetKeyPreface, ItemPrefaceDMSchemes, 0x3B09, TypeWeakRefBatch, false)
	_ = r.RegisterItemDef("OperationalPattern", SetKeyPreface, ItemPrefaceOperationalPattern, 0x3B0A, TypeLabel, true)

	_ = r.RegisterItemDef("Packages", SetKeyContentStorage, ItemContentStoragePackages, 0x1901, TypeStrongRefBatch, true)
	_ = r.RegisterItemDef("EssenceContainerData", SetKeyContentStorage, ItemContentStorageEssenceContainerData, 0x1902, TypeStrongRefBatch, false)

	_ = r.RegisterItemDef("PackageUID", genericPackage, ItemPackagePackageUID, 0x4401, TypeUMID, true)
	_ = r.RegisterItemDef("Tracks", genericPackage, ItemPackageTracks, 0x4403, TypeStrongRefBatch, true)

	_ = r.RegisterItemDef("Sequence", SetKeyTrack, ItemTrackSequence, 0x4803, TypeStrongRef, true)
	_ = r.RegisterItemDef("TrackID", SetKeyTrack, ItemTrackID, 0x4801, TypeUint32, true)
	_ = r.RegisterItemDef("EditRate", SetKeyTrack, ItemTrackEditRate, 0x4B01, TypeRational, true)

	_ = r.RegisterItemDef("StructuralComponents", SetKeySequence, ItemSequenceStructuralComponents, 0x1001, TypeStrongRefArray, true)

	_ = r.RegisterItemDef("SourcePackageID", SetKeySourceClip, ItemSourceClipSourcePackageID, 0x1101, TypeUMID, true)
	_ = r.RegisterItemDef("SourceTrackID", SetKeySourceClip, ItemSourceClipSourceTrackID, 0x1102, TypeUint32, true)

	_ = r.RegisterItemDef("SubDescriptors", SetKeyMultipleDescriptor, ItemMultipleDescriptorSubDescriptors, 0x3F01, TypeStrongRefArray, true)
	_ = r.RegisterItemDef("Descriptor", SetKeySourcePackage, ItemSourcePackageDescriptor, 0x4701, TypeStrongRef, true)
	_ = r.RegisterItemDef("Locators", SetKeyGenericDescriptor, ItemGenericDescriptorLocators, 0x2F01, TypeStrongRefArray, false)

	_ = r.RegisterItemDef("URLString", SetKeyNetworkLocator, ItemNetworkLocatorURLString, 0x4101, TypeIndirect, true)

	_ = r.RegisterItemDef("Format", SetKeyTapeDescriptor, ItemTapeDescriptorFormat, 0x4301, TypeLabel, true)
	_ = r.RegisterItemDef("ColorFrame", SetKeyTapeDescriptor, ItemTapeDescriptorColorFrame, 0x4302, TypeBool, false)

	_ = r.RegisterItemDef("SampleRate", SetKeyFileDescriptor, ItemFileDescriptorSampleRate, 0x3001, TypeRational, true)
	_ = r.RegisterItemDef("ContainerDuration", SetKeyFileDescriptor, ItemFileDescriptorContainerDuration, 0x3002, TypeUint64, false)
	_ = r.RegisterItemDef("EssenceContainer", SetKeyFileDescriptor, ItemFileDescriptorEssenceContainer, 0x3004, TypeLabel, true)
	_ = r.RegisterItemDef("LinkedTrackID", SetKeyFileDescriptor, ItemFileDescriptorLinkedTrackID, 0x3006, TypeUint32, false)

	_ = r.RegisterItemDef("ComponentDepth", SetKeyCDCIEssenceDescriptor, ItemCDCIComponentDepth, 0x3301, TypeUint32, true)
	_ = r.RegisterItemDef("HorizontalSubsampling", SetKeyCDCIEssenceDescriptor, ItemCDCIHorizontalSubsampling, 0x3302, TypeUint32, true)
	_ = r.RegisterItemDef("StoredWidth", SetKeyCDCIEssenceDescriptor, ItemCDCIStoredWidth, 0x3203, TypeUint32, true)
	_ = r.RegisterItemDef("StoredHeight", SetKeyCDCIEssenceDescriptor, ItemCDCIStoredHeight, 0x3202, TypeUint32, true)
	_ = r.RegisterItemDef("FrameLayout", SetKeyCDCIEssenceDescriptor, ItemCDCIFrameLayout, 0x320C, TypeUint8, true)
	_ = r.RegisterItemDef("ImageAspectRatio", SetKeyCDCIEssenceDescriptor, ItemCDCIImageAspectRatio, 0x320E, TypeRational, true)

	_ = r.RegisterItemDef("AudioSamplingRate", SetKeyWaveAudioDescriptor, ItemWaveAudioSamplingRate, 0x3D03, TypeRational, true)
	_ = r.RegisterItemDef("ChannelCount", SetKeyWaveAudioDescriptor, ItemWaveChannelCount, 0x3D07, TypeUint32, true)
	_ = r.RegisterItemDef("QuantizationBits", SetKeyWaveAudioDescriptor, ItemWaveQuantizationBits, 0x3D01, TypeUint32, true)
	_ = r.RegisterItemDef("BlockAlign", SetKeyWaveAudioDescriptor, ItemWaveBlockAlign, 0x3D0A, TypeUint16, true)
	_ = r.RegisterItemDef("AvgBytesPerSecond", SetKeyWaveAudioDescriptor, ItemWaveAvgBytesPerSecond, 0x3D09, TypeUint32, true)

	_ = r.RegisterItemDef("Duration", structuralComponent, ItemStructuralComponentDuration, 0x0202, TypeUint64, false)
	_ = r.RegisterItemDef("StartPosition", SetKeySourceClip, ItemSourceClipStartPosition, 0x1201, TypeUint64, true)

	_ = r.RegisterItemDef("StartTimecode", SetKeyTimecodeComponent, ItemTimecodeComponentStartTimecode, 0x1501, TypeUint64, true)
	_ = r.RegisterItemDef("RoundedTimecodeBase", SetKeyTimecodeComponent, ItemTimecodeComponentRoundedTimecodeBase, 0x1502, TypeUint16, true)
	_ = r.RegisterItemDef("DropFrame", SetKeyTimecodeComponent, ItemTimecodeComponentDropFrame, 0x1503, TypeBool, true)

	_ = r.RegisterItemDef("CompanyName", SetKeyIdentification, ItemIdentificationCompanyName, 0x3C01, TypeIndirect, false)
	_ = r.RegisterItemDef("ProductName", SetKeyIdentification, ItemIdentificationProductName, 0x3C02, TypeIndirect, false)
	_ = r.RegisterItemDef("ProductUID", SetKeyIdentification, ItemIdentificationProductUID, 0x3C04, TypeUUID, false)
	_ = r.RegisterItemDef("GenerationUID", SetKeyIdentification, ItemIdentificationGenerationUID, 0x3C09, TypeUUID, false)

	_ = r.RegisterItemDef("Name", SetKeyTaggedValue, ItemTaggedValueName, 0x0506, TypeIndirect, true)
	_ = r.RegisterItemDef("Value", SetKeyTaggedValue, ItemTaggedValueValue, 0x0507, TypeIndirect, true)

	_ = r.RegisterItemDef("Name", genericPackage, ItemPackageName, 0x4402, TypeIndirect, false)
	_ = r.RegisterItemDef("CreationDate", genericPackage, ItemPackageCreationDate, 0x4405, TypeTimestamp, false)
	_ = r.RegisterItemDef("ModifiedDate", genericPackage, ItemPackageModifiedDate, 0x4404, TypeTimestamp, false)

	_ = r.RegisterItemDef("LinkedPackageUID", SetKeyEssenceContainerData, ItemEssenceContainerDataLinkedPackageUID, 0x2701, TypeUMID, true)
	_ = r.RegisterItemDef("IndexSID", SetKeyEssenceContainerData, ItemEssenceContainerDataIndexSID, 0x3F06, TypeUint32, true)
	_ = r.RegisterItemDef("BodySID", SetKeyEssenceContainerData, ItemEssenceContainerDataBodySID, 0x3F07, TypeUint32, true)

	return r
}
