package klv

import (
	"errors"
	"testing"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBERLength_ShortForm(t *testing.T) {
	for _, length := range []uint64{0, 1, 42, 127} {
		encoded := encodeBERLength(nil, length)
		require.Len(t, encoded, 1)

		got, consumed, err := decodeBERLength(encoded)
		require.NoError(t, err)
		require.Equal(t, length, got)
		require.Equal(t, 1, consumed)
	}
}

func TestEncodeDecodeBERLength_LongForm(t *testing.T) {
	cases := []uint64{128, 255, 256, 65535, 1 << 24, 1 << 32}

	for _, length := range cases {
		encoded := encodeBERLength(nil, length)
		require.True(t, encoded[0]&0x80 != 0)

		got, consumed, err := decodeBERLength(encoded)
		require.NoError(t, err)
		require.Equal(t, length, got)
		require.Equal(t, len(encoded), consumed)
	}
}

func TestEncodeFixedBERLength_LLen1(t *testing.T) {
	encoded, err := encodeFixedBERLength(nil, 100, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{100}, encoded)

	_, err = encodeFixedBERLength(nil, 200, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrInvalidLength))
}

func TestEncodeFixedBERLength_LLenN(t *testing.T) {
	encoded, err := encodeFixedBERLength(nil, 5, 4)
	require.NoError(t, err)
	require.Len(t, encoded, 4)
	require.Equal(t, byte(0x80|3), encoded[0])

	got, consumed, err := decodeBERLength(encoded)
	require.NoError(t, err)
	require.Equal(t, uint64(5), got)
	require.Equal(t, 4, consumed)
}

func TestEncodeFixedBERLength_InvalidLLen(t *testing.T) {
	_, err := encodeFixedBERLength(nil, 1, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrInvalidLength))
}

func TestDecodeBERLength_ShortData(t *testing.T) {
	_, _, err := decodeBERLength([]byte{0x84, 0x01})
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrShortRead))
}

func TestDecodeBERLength_Empty(t *testing.T) {
	_, _, err := decodeBERLength(nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrInvalidLength))
}

func TestDecodeBERLength_IndefiniteForm(t *testing.T) {
	_, _, err := decodeBERLength([]byte{0x80})
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrInvalidLength))
}
