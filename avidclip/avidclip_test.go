package avidclip

import (
	"io"
	"testing"

	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/klv"
	"github.com/mxfgo/mxf/metadata"
	"github.com/mxfgo/mxf/partition"
	"github.com/mxfgo/mxf/rip"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

// memFile is a minimal growable in-memory ReadWriteSeekCloser, backing each
// track's file in these tests without touching a real filesystem.
type memFile struct {
	buf []byte
	pos int64
}

func (m *memFile) Read(p []byte) (int, error) {
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

func (m *memFile) Write(p []byte) (int, error) {
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

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
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

func (m *memFile) Close() error { return nil }

// TestWriter_ThreeTrackClip exercises a three-track Avid clip: one MJPEG201
// picture track (50 fixed-size samples) and two 16-bit PCM tracks (50
// batches of 1920 samples each, i.e. one audio frame per video frame at
// 48kHz/25fps), then inspects all three resulting OP-Atom files.
func TestWriter_ThreeTrackClip(t *testing.T) {
	const (
		videoSamples     = 50
		videoFrameBytes  = 288000
		audioFramesPer   = 50
		audioSamplesLoop = 1920
	)

	files := map[int]*memFile{}
	opener := func(trackID int, filename string) (ReadWriteSeekCloser, error) {
		f := &memFile{}
		files[trackID] = f
		return f, nil
	}

	w, err := NewWriter(PAL25IProject, ulid.Rational{Numerator: 4, Denominator: 3}, false, false, opener)
	require.NoError(t, err)

	require.NoError(t, w.RegisterEssenceElement(1, 1, MJPEG201, EssenceParams{FrameSize: videoFrameBytes}, "video.mxf"))
	require.NoError(t, w.RegisterEssenceElement(2, 1, PCM, EssenceParams{QuantizationBits: 16}, "audio1.mxf"))
	require.NoError(t, w.RegisterEssenceElement(3, 1, PCM, EssenceParams{QuantizationBits: 16}, "audio2.mxf"))

	require.NoError(t, w.PrepareToWrite())

	videoFrame := make([]byte, videoFrameBytes)
	audioFrame := make([]byte, audioSamplesLoop*2)
	for i := 0; i < videoSamples; i++ {
		require.NoError(t, w.WriteSamples(1, 1, videoFrame, len(videoFrame)))
	}
	for i := 0; i < audioFramesPer; i++ {
		require.NoError(t, w.WriteSamples(2, audioSamplesLoop, audioFrame, len(audioFrame)))
		require.NoError(t, w.WriteSamples(3, audioSamplesLoop, audioFrame, len(audioFrame)))
	}

	require.NoError(t, w.CompleteWrite())

	require.Len(t, files, 3)

	checkTrack(t, files[1].buf, videoSamples, videoSamples*videoFrameBytes, datamodel.SetKeyCDCIEssenceDescriptor)
	checkTrack(t, files[2].buf, audioFramesPer*audioSamplesLoop, audioFramesPer*audioSamplesLoop*2, datamodel.SetKeyWaveAudioDescriptor)
	checkTrack(t, files[3].buf, audioFramesPer*audioSamplesLoop, audioFramesPer*audioSamplesLoop*2, datamodel.SetKeyWaveAudioDescriptor)
}

// checkTrack parses one OP-Atom file end to end: header partition (open,
// incomplete), body partition with the essence element sized exactly
// wantEssenceBytes, footer partition with header metadata whose descriptor
// (descKey) reports wantDuration, and a trailing RIP with 3 entries.
func checkTrack(t *testing.T, buf []byte, wantDuration int64, wantEssenceBytes int, descKey ulid.Key) {
	t.Helper()

	m := &memFile{buf: buf}
	s := klv.NewStream(m)

	key, length, err := s.ReadKL()
	require.NoError(t, err)
	status, kind, err := partition.DecodeKey(key)
	require.NoError(t, err)
	require.Equal(t, partition.StatusOpenIncomplete, status)
	require.Equal(t, partition.KindHeader, kind)
	require.NoError(t, s.Skip(int64(length)))

	key, length, err = s.ReadKL()
	require.NoError(t, err)
	status, kind, err = partition.DecodeKey(key)
	require.NoError(t, err)
	require.Equal(t, partition.StatusClosedComplete, status)
	require.Equal(t, partition.KindBody, kind)
	require.NoError(t, s.Skip(int64(length)))

	essenceKey, essenceLen, err := s.ReadKL()
	require.NoError(t, err)
	require.Contains(t, []ulid.Key{PictureElementKey, SoundElementKey}, essenceKey)
	require.EqualValues(t, wantEssenceBytes, essenceLen)
	require.NoError(t, s.Skip(int64(essenceLen)))

	key, _, err = s.ReadKL()
	require.NoError(t, err)
	status, kind, err = partition.DecodeKey(key)
	require.NoError(t, err)
	require.Equal(t, partition.StatusClosedComplete, status)
	require.Equal(t, partition.KindFooter, kind)

	footerValue := make([]byte, 2+2+4+8+8+8+8+8+4+8+4+ulid.LabelSize)
	_, err = io.ReadFull(s, footerValue)
	require.NoError(t, err)

	registry, err := newRegistry()
	require.NoError(t, err)
	g := metadata.NewGraph(registry)

	require.NoError(t, s.Skip(int64(ulid.ArrayHeaderSize+ulid.LabelSize)))

	_, err = metadata.ReadSets(s, g, 14)
	require.NoError(t, err)
	require.NotNil(t, g.Root())

	var descriptor *metadata.Set
	for _, set := range g.BreadthFirstOrder() {
		if set.Key == descKey {
			descriptor = set
			break
		}
	}
	require.NotNilf(t, descriptor, "descriptor set %s not found among attached sets", descKey)

	duration, ok := metadata.TypedGetUint(descriptor, datamodel.ItemFileDescriptorContainerDuration)
	require.True(t, ok)
	require.EqualValues(t, wantDuration, duration)

	ripPack, err := rip.ReadFromEnd(s, int64(len(buf)))
	require.NoError(t, err)
	require.Len(t, ripPack.Entries, 3)
}
