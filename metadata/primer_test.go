package metadata

import (
	"testing"

	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

func TestTagTable_AssignReusesRegisteredTag(t *testing.T) {
	table := NewTagTable()

	var itemKey ulid.Key
	itemKey[0] = 0x11

	tag, err := table.Assign(itemKey, 0x3C0A)
	require.NoError(t, err)
	require.Equal(t, uint16(0x3C0A), tag)

	again, err := table.Assign(itemKey, 0x3C0A)
	require.NoError(t, err)
	require.Equal(t, tag, again)
}

func TestTagTable_AssignNonStandardStartsAt0x8000(t *testing.T) {
	table := NewTagTable()

	var a, b ulid.Key
	a[0], b[0] = 1, 2

	tagA, err := table.Assign(a, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x8000), tagA)

	tagB, err := table.Assign(b, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x8001), tagB)
}

func TestTagTable_AssignDetectsCollision(t *testing.T) {
	table := NewTagTable()

	var a, b ulid.Key
	a[0], b[0] = 1, 2

	_, err := table.Assign(a, 0x3C0A)
	require.NoError(t, err)

	_, err = table.Assign(b, 0x3C0A)
	require.Error(t, err)
}

func TestPrimerPack_RoundTrip(t *testing.T) {
	table := NewTagTable()

	var a, b ulid.Key
	a[0], b[0] = 1, 2

	tagA, err := table.Assign(a, 0x3C0A)
	require.NoError(t, err)
	tagB, err := table.Assign(b, 0)
	require.NoError(t, err)

	data := table.Bytes()

	parsed, err := ParsePrimerPack(data)
	require.NoError(t, err)

	gotA, ok := parsed.Lookup(tagA)
	require.True(t, ok)
	require.Equal(t, a, gotA)

	gotB, ok := parsed.Lookup(tagB)
	require.True(t, ok)
	require.Equal(t, b, gotB)
}

func TestParsePrimerPack_RejectsWrongElementWidth(t *testing.T) {
	header := ulid.NewArrayHeader(1, 4)
	data := header.Bytes()
	data = append(data, 0, 0, 0, 0)

	_, err := ParsePrimerPack(data)
	require.Error(t, err)
}
