package rip

import (
	"io"
	"testing"

	"github.com/mxfgo/mxf/klv"
	"github.com/stretchr/testify/require"
)

type memStream struct {
	buf []byte
	pos int64
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	}
	m.pos = target

	return m.pos, nil
}

func TestFromPartitions_MismatchedLengths(t *testing.T) {
	_, err := FromPartitions([]uint32{1, 2}, []int64{0})
	require.Error(t, err)
}

func TestPack_WriteTo_ThenReadFromEnd(t *testing.T) {
	pack, err := FromPartitions([]uint32{0, 1, 1}, []int64{0, 1024, 4096})
	require.NoError(t, err)

	m := &memStream{}
	s := klv.NewStream(m)
	require.NoError(t, pack.WriteTo(s))

	fileSize := int64(len(m.buf))

	parsed, err := ReadFromEnd(s, fileSize)
	require.NoError(t, err)
	require.Equal(t, pack.Entries, parsed.Entries)
}

func TestParse_RejectsMisalignedLength(t *testing.T) {
	_, err := Parse(make([]byte, 5))
	require.Error(t, err)
}
