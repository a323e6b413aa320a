package partition

import (
	"testing"

	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

func TestKeyDecodeKey_RoundTrip(t *testing.T) {
	key := Key(StatusClosedComplete, KindFooter)

	status, kind, err := DecodeKey(key)
	require.NoError(t, err)
	require.Equal(t, StatusClosedComplete, status)
	require.Equal(t, KindFooter, kind)
}

func TestDecodeKey_NotAPartitionKey(t *testing.T) {
	var notPartition ulid.Key
	_, _, err := DecodeKey(notPartition)
	require.Error(t, err)
}

func TestPack_BytesParse_RoundTrip(t *testing.T) {
	var op ulid.Label
	op[0] = 0x06

	p := &Pack{
		Status:              StatusClosedComplete,
		Kind:                KindHeader,
		MajorVersion:        1,
		MinorVersion:        2,
		KAGSize:             512,
		ThisPartition:       0,
		PreviousPartition:   0,
		FooterPartition:     99999,
		HeaderByteCount:     1234,
		IndexByteCount:      0,
		IndexSID:            0,
		BodyOffset:          0,
		BodySID:             1,
		OperationalPattern:  op,
		EssenceContainers:   []ulid.Label{op, op},
	}

	encoded := p.Bytes()
	got, err := Parse(p.Status, p.Kind, encoded)
	require.NoError(t, err)
	require.Equal(t, p.MajorVersion, got.MajorVersion)
	require.Equal(t, p.MinorVersion, got.MinorVersion)
	require.Equal(t, p.KAGSize, got.KAGSize)
	require.Equal(t, p.FooterPartition, got.FooterPartition)
	require.Equal(t, p.HeaderByteCount, got.HeaderByteCount)
	require.Equal(t, p.OperationalPattern, got.OperationalPattern)
	require.Equal(t, p.EssenceContainers, got.EssenceContainers)
}

func TestPack_Parse_ShortData(t *testing.T) {
	_, err := Parse(StatusClosedComplete, KindHeader, []byte{1, 2, 3})
	require.Error(t, err)
}
