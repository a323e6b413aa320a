package pool

import "sync"

// Slice pools for efficient reuse of typed slices used while assembling
// index-table entries: an edit unit's slice-offset array (spec §4.6) and a
// delta-entry array are both built incrementally and discarded once encoded.
var (
	uint32SlicePool = sync.Pool{
		New: func() any { return &[]uint32{} },
	}
	uint64SlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
)

// GetUint32Slice retrieves and resizes a uint32 slice from the pool.
//
// The returned slice has length equal to size. The caller must call the
// returned cleanup function (typically via defer) to return the slice.
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint32SlicePool.Put(ptr) }
}

// GetUint64Slice retrieves and resizes a uint64 slice from the pool.
//
// The returned slice has length equal to size. The caller must call the
// returned cleanup function (typically via defer) to return the slice.
func GetUint64Slice(size int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint64SlicePool.Put(ptr) }
}
