package pool

import (
	"io"
	"sync"
)

// Default and max-retained sizes for the two buffer pools used while
// serializing header metadata. SetBuffer-sized buffers hold one local set at
// a time; PartitionBuffer-sized buffers hold an entire header-metadata
// partition (primer pack plus every local set) while it is assembled before
// being written to the underlying stream.
const (
	SetBufferDefaultSize       = 1024 * 4         // 4KiB, enough for most local sets
	SetBufferMaxThreshold      = 1024 * 64        // 64KiB
	PartitionBufferDefaultSize = 1024 * 64        // 64KiB
	PartitionBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a growable byte buffer intended for pooled reuse.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite writes data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.Grow(len(data))
	bb.B = append(bb.B, data...)
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
// If the buffer has sufficient capacity, Grow does nothing.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := SetBufferDefaultSize
	if cap(bb.B) > 4*SetBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.MustWrite(data)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers. The pool can be
// configured with a maximum size threshold to avoid retaining overly large
// buffers that could lead to memory bloat (a header metadata graph with an
// unusually large MultipleDescriptor, for instance, should not inflate every
// future Get() from the pool).
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	setPool       = NewByteBufferPool(SetBufferDefaultSize, SetBufferMaxThreshold)
	partitionPool = NewByteBufferPool(PartitionBufferDefaultSize, PartitionBufferMaxThreshold)
)

// GetSetBuffer retrieves a ByteBuffer from the default local-set pool.
func GetSetBuffer() *ByteBuffer {
	return setPool.Get()
}

// PutSetBuffer returns a ByteBuffer to the default local-set pool.
func PutSetBuffer(bb *ByteBuffer) {
	setPool.Put(bb)
}

// GetPartitionBuffer retrieves a ByteBuffer from the default header-metadata-partition pool.
func GetPartitionBuffer() *ByteBuffer {
	return partitionPool.Get()
}

// PutPartitionBuffer returns a ByteBuffer to the default header-metadata-partition pool.
func PutPartitionBuffer(bb *ByteBuffer) {
	partitionPool.Put(bb)
}
