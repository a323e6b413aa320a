package metadata

import (
	"io"
	"testing"

	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

// memStream is a minimal growable in-memory io.ReadWriteSeeker used to drive
// klv.Stream in tests without depending on a real file.
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

func newTestGraph(t *testing.T) (*Graph, *Set, *Set) {
	t.Helper()

	registry := datamodel.NewSMPTERegistry()
	require.NoError(t, registry.Finalize())

	g := NewGraph(registry)

	var prefaceUID, identUID ulid.UUID
	prefaceUID[0] = 0xAA
	identUID[0] = 0xBB

	preface := NewSet(datamodel.SetKeyPreface, prefaceUID)
	preface.Set(datamodel.ItemPrefaceIdentifications, NewStrongRefArray([]ulid.UUID{identUID}))
	preface.Set(datamodel.ItemPrefaceOperationalPattern, NewLabel(ulid.Label{0x06, 0x0E}))

	ident := NewSet(datamodel.SetKeyIdentification, identUID)

	require.NoError(t, g.SetRoot(preface))
	require.NoError(t, g.Attach(ident))

	return g, preface, ident
}

func TestWriteSets_ThenReadSets_RoundTrip(t *testing.T) {
	g, preface, ident := newTestGraph(t)

	m := &memStream{}
	s := klv.NewStream(m)

	require.NoError(t, WriteSets(s, g))

	require.NoError(t, s.SeekAbsolute(0))

	registry := datamodel.NewSMPTERegistry()
	require.NoError(t, registry.Finalize())
	g2 := NewGraph(registry)

	_, err := ReadSets(s, g2, 2)
	require.NoError(t, err)

	require.NotNil(t, g2.Root())
	require.Equal(t, preface.InstanceUID, g2.Root().InstanceUID)

	gotIdent, ok := g2.Resolve(ident.InstanceUID)
	require.True(t, ok)
	require.Equal(t, datamodel.SetKeyIdentification, gotIdent.Key)

	idsValue, ok := g2.Root().Get(datamodel.ItemPrefaceIdentifications)
	require.True(t, ok)
	require.Equal(t, []ulid.UUID{ident.InstanceUID}, idsValue.RefArray)
}

func TestWriteSets_PreservesOpaqueSet(t *testing.T) {
	registry := datamodel.NewSMPTERegistry()
	require.NoError(t, registry.Finalize())
	g := NewGraph(registry)

	var prefaceUID ulid.UUID
	prefaceUID[0] = 1
	preface := NewSet(datamodel.SetKeyPreface, prefaceUID)
	preface.Set(datamodel.ItemPrefaceOperationalPattern, NewLabel(ulid.Label{}))
	require.NoError(t, g.SetRoot(preface))

	var unknownKey ulid.Key
	unknownKey[0] = 0xFF
	opaque := &Set{Key: unknownKey, Opaque: []byte{1, 2, 3, 4}}
	require.NoError(t, g.Attach(opaque))

	m := &memStream{}
	s := klv.NewStream(m)
	require.NoError(t, WriteSets(s, g))
	require.NoError(t, s.SeekAbsolute(0))

	registry2 := datamodel.NewSMPTERegistry()
	require.NoError(t, registry2.Finalize())
	g2 := NewGraph(registry2)

	_, err := ReadSets(s, g2, 2)
	require.NoError(t, err)

	got, ok := g2.Resolve(opaque.InstanceUID)
	require.True(t, ok)
	require.True(t, got.IsOpaque())
	require.Equal(t, []byte{1, 2, 3, 4}, got.Opaque)
}
