package archive

import "github.com/mxfgo/mxf/datamodel"

// ItemNumAudioTracks is a local extension item recording how many Audio
// Items each content package in this file's essence container carries.
// The header metadata object graph has no native place for this count — a
// file's MaterialPackage and SourcePackages only ever describe one video
// essence track plus timecode, never the raw audio element stream — so a
// reader that wants to open the file without being told the track count up
// front needs it recorded somewhere. EssenceContainerData already exists as
// this file's one piece of per-essence-container bookkeeping, so this item
// is attached there.
var ItemNumAudioTracks = [16]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x09,
	0x06, 0x01, 0x01, 0x04, 0x07, 0x01, 0x00, 0x00,
}

// registerArchiveExtension layers the NumAudioTracks item onto registry,
// mirroring how avidclip's MobAttributeList extension is loaded before a
// file's data model is finalized.
func registerArchiveExtension(registry *datamodel.Registry) error {
	return registry.RegisterExtension("Archive", nil, []datamodel.ItemDef{
		{
			Name:       "NumAudioTracks",
			SetKey:     datamodel.SetKeyEssenceContainerData,
			ItemKey:    ItemNumAudioTracks,
			LocalTag:   0,
			Type:       datamodel.TypeUint32,
			IsRequired: false,
		},
	})
}
