package datamodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSMPTERegistry_FinalizesAndResolvesInheritance(t *testing.T) {
	r := NewSMPTERegistry()
	require.NoError(t, r.Finalize())

	require.True(t, r.IsKnownSet(SetKeyMaterialPackage))
	require.True(t, r.IsKnownSet(SetKeyCDCIEssenceDescriptor))

	items, err := r.ItemsFor(SetKeyMaterialPackage)
	require.NoError(t, err)

	var hasInstanceUID, hasTracks, hasPackageUID bool
	for _, item := range items {
		switch item.Name {
		case "InstanceUID":
			hasInstanceUID = true
		case "Tracks":
			hasTracks = true
		case "PackageUID":
			hasPackageUID = true
		}
	}
	require.True(t, hasInstanceUID)
	require.True(t, hasTracks, "MaterialPackage should inherit Tracks from GenericPackage")
	require.True(t, hasPackageUID, "MaterialPackage should inherit PackageUID from GenericPackage")
}

func TestNewSMPTERegistry_CDCIInheritsFromFileDescriptor(t *testing.T) {
	r := NewSMPTERegistry()
	require.NoError(t, r.Finalize())

	items, err := r.ItemsFor(SetKeyCDCIEssenceDescriptor)
	require.NoError(t, err)
	require.NotEmpty(t, items)
}
