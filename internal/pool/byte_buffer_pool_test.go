package pool

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	require.NotNil(t, bb.B)
	assert.Equal(t, 0, len(bb.B))
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_Bytes(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)
	bb.B = append(bb.B, []byte("hello")...)

	got := bb.Bytes()
	assert.Equal(t, []byte("hello"), got)
	assert.True(t, &bb.B[0] == &got[0])
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)
	bb.B = append(bb.B, []byte("some data")...)
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, len(bb.B))
	assert.Equal(t, originalCap, cap(bb.B))
}

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)

	bb.MustWrite([]byte("hello"))
	assert.Equal(t, []byte("hello"), bb.B)

	bb.MustWrite([]byte(" world"))
	assert.Equal(t, []byte("hello world"), bb.B)
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), bb.B)
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)
	bb.B = append(bb.B, []byte("test data")...)

	var buf bytes.Buffer
	n, err := bb.WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, "test data", buf.String())
}

func TestByteBuffer_WriteTo_ErrorPropagation(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)
	bb.B = append(bb.B, []byte("test")...)

	ew := &errorWriter{err: io.ErrShortWrite}
	n, err := bb.WriteTo(ew)

	assert.Error(t, err)
	assert.Equal(t, io.ErrShortWrite, err)
	assert.Equal(t, int64(0), n)
}

func TestByteBuffer_Grow_SufficientCapacity(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)
	originalCap := cap(bb.B)

	bb.Grow(100)

	assert.Equal(t, originalCap, cap(bb.B))
}

func TestByteBuffer_Grow_PreservesData(t *testing.T) {
	bb := NewByteBuffer(SetBufferDefaultSize)
	testData := []byte("important data that must be preserved")
	bb.B = append(bb.B, testData...)

	bb.Grow(SetBufferDefaultSize * 2)

	assert.Equal(t, testData, bb.B)
}

func TestGetSetBuffer(t *testing.T) {
	bb := GetSetBuffer()

	require.NotNil(t, bb)
	assert.Equal(t, 0, len(bb.B))
	assert.GreaterOrEqual(t, cap(bb.B), SetBufferDefaultSize)
}

func TestPutSetBuffer_NilBuffer(t *testing.T) {
	assert.NotPanics(t, func() {
		PutSetBuffer(nil)
	})
}

func TestGetPut_SetBufferReuse(t *testing.T) {
	bb1 := GetSetBuffer()
	bb1.MustWrite([]byte("test data"))
	PutSetBuffer(bb1)

	bb2 := GetSetBuffer()
	assert.Equal(t, 0, len(bb2.B), "buffer from pool should be reset")
}

func TestByteBufferPool_MaxThreshold_Discard(t *testing.T) {
	pool := NewByteBufferPool(1024, 4096)

	bb := pool.Get()
	bb.Grow(10000)
	assert.Greater(t, cap(bb.B), 4096)

	pool.Put(bb)

	bb2 := pool.Get()
	assert.LessOrEqual(t, cap(bb2.B), 4096*2)
}

func TestGetPartitionBuffer(t *testing.T) {
	bb := GetPartitionBuffer()

	require.NotNil(t, bb)
	assert.Equal(t, 0, len(bb.B))
	assert.GreaterOrEqual(t, cap(bb.B), PartitionBufferDefaultSize)

	PutPartitionBuffer(bb)
}

func TestDefaultPools_Independence(t *testing.T) {
	setBuf := GetSetBuffer()
	partitionBuf := GetPartitionBuffer()

	assert.NotEqual(t, cap(setBuf.B), cap(partitionBuf.B))

	PutSetBuffer(setBuf)
	PutPartitionBuffer(partitionBuf)
}

func TestPool_ConcurrentAccess(t *testing.T) {
	const numGoroutines = 50
	const numIterations = 200

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				bb := GetSetBuffer()
				bb.MustWrite([]byte("data"))
				assert.Equal(t, 4, bb.Len())
				PutSetBuffer(bb)
			}
		}()
	}

	wg.Wait()
}

type errorWriter struct {
	err error
}

func (ew *errorWriter) Write(p []byte) (n int, err error) {
	return 0, ew.err
}
