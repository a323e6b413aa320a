package archive

import (
	"io"
	"testing"

	"github.com/mxfgo/mxf/klv"
	"github.com/stretchr/testify/require"
)

// countingStream wraps a memStream and counts Read calls, used to bound how
// much the clean-timecode-then-extrapolate seek actually reads.
type countingStream struct {
	m     *memStream
	reads int
}

func (c *countingStream) Read(p []byte) (int, error) {
	c.reads++
	return c.m.Read(p)
}

func (c *countingStream) Write(p []byte) (int, error) {
	return c.m.Write(p)
}

func (c *countingStream) Seek(offset int64, whence int) (int64, error) {
	return c.m.Seek(offset, whence)
}

func writeContentPackages(t *testing.T, w *Writer, count int, startVITC Timecode, videoSize, audioSize int) {
	t.Helper()

	vitc := startVITC
	for i := 0; i < count; i++ {
		require.NoError(t, w.WriteTimecode(vitc, Timecode{}))
		require.NoError(t, w.WriteVideoFrame(make([]byte, videoSize)))
		for track := 0; track < w.AudioTracks(); track++ {
			require.NoError(t, w.WriteAudioFrame(make([]byte, audioSize)))
		}
		vitc = NextTimecode(vitc)
	}
}

// TestReader_RoundTrip_25Frames4Audio is scenario 2: write 25 content
// packages with 4 audio tracks and zeroed essence, complete the file, and
// read it all back from byte zero — the reader must recover the duration
// and audio track count on its own from the file's header metadata and
// index table segment.
func TestReader_RoundTrip_25Frames4Audio(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	w, err := NewWriter(s, 4, 32, 8)
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		require.NoError(t, w.WriteTimecode(Timecode{Hour: 10, Frame: i}, Timecode{Hour: 10, Frame: i}))
		require.NoError(t, w.WriteVideoFrame(make([]byte, 32)))
		for track := 0; track < 4; track++ {
			require.NoError(t, w.WriteAudioFrame(make([]byte, 8)))
		}
	}
	require.Equal(t, int64(25), w.Duration())
	require.NoError(t, w.Complete())

	readStream := klv.NewStream(&memStream{buf: m.buf})
	r, err := NewReader(readStream)
	require.NoError(t, err)
	require.Equal(t, int64(25), r.Duration())
	require.Equal(t, 4, len(r.audioKeys))

	for i := 0; i < 25; i++ {
		vitc, ltc, video, audio, err := r.ReadContentPackage()
		require.NoError(t, err)
		require.Equal(t, Timecode{Hour: 10, Frame: i}, vitc)
		require.Equal(t, Timecode{Hour: 10, Frame: i}, ltc)
		require.Len(t, video, 32)
		require.Len(t, audio, 4)
	}

	_, _, _, _, err = r.ReadContentPackage()
	require.ErrorIs(t, err, io.EOF)
}

// TestReader_SeekToTimecode_Clean is scenario 3: VITC increments by one
// frame for 100 content packages starting at 10:02:05:10; seeking to
// 10:02:05:20 (position 10) must succeed within a small, bounded number of
// reads and land exactly on that position.
func TestReader_SeekToTimecode_Clean(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	w, err := NewWriter(s, 0, 16, 0)
	require.NoError(t, err)
	writeContentPackages(t, w, 100, Timecode{Hour: 10, Min: 2, Sec: 5, Frame: 10}, 16, 0)
	require.NoError(t, w.Complete())

	cs := &countingStream{m: &memStream{buf: m.buf}}
	readStream := klv.NewStream(cs)
	r, err := NewReader(readStream)
	require.NoError(t, err)

	cs.reads = 0 // only count reads performed by the seek itself
	found, err := r.SeekToTimecode(Timecode{Hour: 10, Min: 2, Sec: 5, Frame: 20}, Timecode{})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(10), r.Position())

	// each system item read performs at most 4 underlying Read calls
	// (key, first length byte, remaining long-form length bytes, value);
	// bound the total by the 12-item threshold+jump read budget.
	require.LessOrEqual(t, cs.reads, 12*4)
}

// TestReader_SeekToTimecode_Miss is scenario 4: the same file, seeking to a
// timecode that never occurs returns false and restores the original
// position.
func TestReader_SeekToTimecode_Miss(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	w, err := NewWriter(s, 0, 16, 0)
	require.NoError(t, err)
	writeContentPackages(t, w, 100, Timecode{Hour: 10, Min: 2, Sec: 5, Frame: 10}, 16, 0)
	require.NoError(t, w.Complete())

	readStream := klv.NewStream(&memStream{buf: m.buf})
	r, err := NewReader(readStream)
	require.NoError(t, err)

	originalPos := r.Position()
	found, err := r.SeekToTimecode(Timecode{Hour: 11}, Timecode{})
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, originalPos, r.Position())
}

func TestReader_MinimalContentPackage_NoAudio(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	w, err := NewWriter(s, 0, 8, 0)
	require.NoError(t, err)
	require.NoError(t, w.WriteTimecode(Timecode{Hour: 1}, Timecode{Hour: 1}))
	require.NoError(t, w.WriteVideoFrame(make([]byte, 8)))
	require.NoError(t, w.Complete())

	readStream := klv.NewStream(&memStream{buf: m.buf})
	r, err := NewReader(readStream)
	require.NoError(t, err)

	vitc, ltc, video, audio, err := r.ReadContentPackage()
	require.NoError(t, err)
	require.Equal(t, Timecode{Hour: 1}, vitc)
	require.Equal(t, Timecode{Hour: 1}, ltc)
	require.Len(t, video, 8)
	require.Empty(t, audio)
}

// TestReader_RoundTrip_EmptyFile covers a file with zero content packages:
// the reader must still parse the header envelope successfully and report
// zero duration without attempting to read a first content package.
func TestReader_RoundTrip_EmptyFile(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	w, err := NewWriter(s, 2, 16, 4)
	require.NoError(t, err)
	require.NoError(t, w.Complete())

	readStream := klv.NewStream(&memStream{buf: m.buf})
	r, err := NewReader(readStream)
	require.NoError(t, err)
	require.Equal(t, int64(0), r.Duration())
	require.True(t, r.IsEOF())

	_, _, _, _, err = r.ReadContentPackage()
	require.ErrorIs(t, err, io.EOF)
}

// TestNewReader_RejectsNonHeaderPartition makes sure a stream that doesn't
// begin with a header partition is rejected rather than silently
// misparsed as one.
func TestNewReader_RejectsNonHeaderPartition(t *testing.T) {
	m := &memStream{}
	s := klv.NewStream(m)

	_, err := s.Write([]byte{0, 1, 2, 3})
	require.NoError(t, err)

	readStream := klv.NewStream(&memStream{buf: m.buf})
	_, err = NewReader(readStream)
	require.Error(t, err)
}
