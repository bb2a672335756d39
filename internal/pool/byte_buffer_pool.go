// Package pool provides pooled byte buffers for the WKB writer and the
// packed-blob encoder, so encoding a value does not allocate a fresh
// buffer per call.
package pool

import (
	"io"
	"sync"
)

// Pool sizing: a single WKB value is typically well under 16KiB, while
// a packed blob aggregates many values.
const (
	WKBBufferDefaultSize     = 1024 * 16       // 16KiB
	WKBBufferMaxThreshold    = 1024 * 128      // 128KiB
	PackedBufferDefaultSize  = 1024 * 1024     // 1MiB
	PackedBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer is a reusable byte slice wrapper. Encoders append to B
// directly and hand the grown backing array back through the pool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer, retaining the allocated memory for reuse.
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

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Small buffers grow by a full default size; larger ones
// by a quarter of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := WKBBufferDefaultSize
	if cap(bb.B) > 4*WKBBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool pools ByteBuffers with an upper capacity threshold so
// an occasional oversized buffer does not pin memory forever.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of the given
// initial capacity and discarding returned buffers above maxThreshold.
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
	wkbDefaultPool    = NewByteBufferPool(WKBBufferDefaultSize, WKBBufferMaxThreshold)
	packedDefaultPool = NewByteBufferPool(PackedBufferDefaultSize, PackedBufferMaxThreshold)
)

// GetWKBBuffer retrieves a buffer sized for one WKB value.
func GetWKBBuffer() *ByteBuffer {
	return wkbDefaultPool.Get()
}

// PutWKBBuffer returns a single-value buffer to its pool.
func PutWKBBuffer(bb *ByteBuffer) {
	wkbDefaultPool.Put(bb)
}

// GetPackedBuffer retrieves a buffer sized for a packed blob payload.
func GetPackedBuffer() *ByteBuffer {
	return packedDefaultPool.Get()
}

// PutPackedBuffer returns a packed-blob buffer to its pool.
func PutPackedBuffer(bb *ByteBuffer) {
	packedDefaultPool.Put(bb)
}
