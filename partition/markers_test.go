package partition

import (
	"testing"

	"github.com/mxfgo/mxf/klv"
	"github.com/stretchr/testify/require"
)

func TestMarkers_HeaderAndIndexSpans(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	var markers Markers
	require.NoError(t, markers.MarkHeaderStart(s))

	_, err := s.Write(make([]byte, 100))
	require.NoError(t, err)
	require.NoError(t, markers.MarkHeaderEnd(s))

	require.NoError(t, markers.MarkIndexStart(s))
	_, err = s.Write(make([]byte, 40))
	require.NoError(t, err)
	require.NoError(t, markers.MarkIndexEnd(s))

	require.Equal(t, uint64(100), markers.HeaderByteCount())
	require.Equal(t, uint64(40), markers.IndexByteCount())

	p := &Pack{}
	markers.ApplyTo(p)
	require.Equal(t, uint64(100), p.HeaderByteCount)
	require.Equal(t, uint64(40), p.IndexByteCount)
}
