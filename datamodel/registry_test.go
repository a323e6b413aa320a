package datamodel

import (
	"errors"
	"testing"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

func key(b byte) ulid.Key {
	var k ulid.Key
	k[15] = b

	return k
}

func TestRegistry_RegisterAndFinalize_InheritedItems(t *testing.T) {
	r := NewRegistry()

	parentSet := key(1)
	childSet := key(2)

	require.NoError(t, r.RegisterSetDef("Parent", ulid.Key{}, parentSet))
	require.NoError(t, r.RegisterSetDef("Child", parentSet, childSet))

	require.NoError(t, r.RegisterItemDef("InheritedItem", parentSet, key(10), 0x8000, TypeUint32, true))
	require.NoError(t, r.RegisterItemDef("OwnItem", childSet, key(11), 0x8001, TypeUint32, false))

	require.NoError(t, r.Finalize())

	items, err := r.ItemsFor(childSet)
	require.NoError(t, err)
	require.Len(t, items, 2)

	required, err := r.RequiredItems(childSet)
	require.NoError(t, err)
	require.Len(t, required, 1)
	require.Equal(t, "InheritedItem", required[0].Name)
}

func TestRegistry_DuplicateSetDef(t *testing.T) {
	r := NewRegistry()
	k := key(1)

	require.NoError(t, r.RegisterSetDef("A", ulid.Key{}, k))
	err := r.RegisterSetDef("A again", ulid.Key{}, k)
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrSetDefCollision))
}

func TestRegistry_IsKnownSet(t *testing.T) {
	r := NewRegistry()
	k := key(5)
	require.False(t, r.IsKnownSet(k))

	require.NoError(t, r.RegisterSetDef("Known", ulid.Key{}, k))
	require.True(t, r.IsKnownSet(k))
}

func TestRegistry_ItemDefFor_Unknown(t *testing.T) {
	r := NewRegistry()
	k := key(1)
	require.NoError(t, r.RegisterSetDef("A", ulid.Key{}, k))
	require.NoError(t, r.Finalize())

	_, err := r.ItemDefFor(k, key(99))
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrUnknownItem))
}

func TestRegistry_RegisterExtension(t *testing.T) {
	r := NewRegistry()

	extSet := key(50)
	extItem := key(51)
	err := r.RegisterExtension("D3",
		[]SetDef{{Name: "D3Set", Key: extSet}},
		[]ItemDef{{Name: "D3Item", SetKey: extSet, ItemKey: extItem, Type: TypeUint8}},
	)
	require.NoError(t, err)
	require.True(t, r.IsKnownSet(extSet))

	require.NoError(t, r.Finalize())
	items, err := r.ItemsFor(extSet)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestRegistry_CyclicParentChain(t *testing.T) {
	r := NewRegistry()

	a := key(1)
	b := key(2)
	require.NoError(t, r.RegisterSetDef("A", b, a))
	require.NoError(t, r.RegisterSetDef("B", a, b))

	err := r.Finalize()
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrSchemaCycle))
}
