package ulid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayHeader_RoundTrip(t *testing.T) {
	h := NewArrayHeader(12, 16)

	got, err := ParseArrayHeader(h.Bytes())
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, 192, got.TotalValueLength())
}

func TestArrayHeader_WriteToSlice(t *testing.T) {
	h := NewArrayHeader(3, 4)
	buf := make([]byte, 16)
	next := h.WriteToSlice(buf, 4)
	require.Equal(t, 4+ArrayHeaderSize, next)

	got, err := ParseArrayHeader(buf[4 : 4+ArrayHeaderSize])
	require.NoError(t, err)
	require.Equal(t, h, got)
}
