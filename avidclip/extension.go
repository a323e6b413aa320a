package avidclip

import "github.com/mxfgo/mxf/datamodel"

// ItemPackageAttributes is the strong-ref-batch item key pointing at a
// package's attached TaggedValue attribute sets: Avid's "mob attributes"
// (project name, tape name, and arbitrary user comments). It lives outside
// the built-in SMPTE suffix table because it is an Avid-specific extension,
// not a core interchange item.
var ItemPackageAttributes = [16]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x09,
	0x06, 0x01, 0x01, 0x04, 0x06, 0x01, 0x00, 0x00,
}

// registerAvidExtension layers the Avid-specific package-attributes item
// onto registry, mirroring how the source tool's MetaDictionary/Dictionary
// extension definitions are loaded before a file's data model is finalized.
func registerAvidExtension(registry *datamodel.Registry) error {
	return registry.RegisterExtension("Avid", nil, []datamodel.ItemDef{
		{
			Name:       "MobAttributeList",
			SetKey:     datamodel.SetKeyGenericPackage,
			ItemKey:    ItemPackageAttributes,
			LocalTag:   0,
			Type:       datamodel.TypeStrongRefBatch,
			IsRequired: false,
		},
	})
}
