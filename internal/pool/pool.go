// Package pool provides reusable copy buffers.
//
// Hashing local files and downloaded payloads streams every byte through a
// copy buffer; reusing them keeps a large tree walk from churning the heap.
package pool

import (
	"sync"
)

// CopyBufferSize is the default buffer size (64KB).
const CopyBufferSize = 64 * 1024

// BufferPool manages reusable byte buffers of a single size.
type BufferPool struct {
	size int
	pool *sync.Pool
}

// NewBufferPool creates a pool of buffers of the given size.
// A non-positive size selects CopyBufferSize.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		size = CopyBufferSize
	}
	return &BufferPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get returns a full-length buffer from the pool.
// The caller is responsible for calling Put to return the buffer to the pool.
func (bp *BufferPool) Get() *[]byte {
	bufPtr := bp.pool.Get().(*[]byte) //nolint:forcetypeassert // pool only holds *[]byte
	*bufPtr = (*bufPtr)[:bp.size]
	return bufPtr
}

// Put returns a buffer to the pool. Buffers of a foreign capacity are dropped.
func (bp *BufferPool) Put(bufPtr *[]byte) {
	if bufPtr == nil || cap(*bufPtr) != bp.size {
		return
	}
	bp.pool.Put(bufPtr)
}

// Size returns the buffer size handed out by this pool.
func (bp *BufferPool) Size() int {
	return bp.size
}
