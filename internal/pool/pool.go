package pool

import "sync"

const (
	// DefaultBufSize is 64KB, matching the typical TCP window size.
	DefaultBufSize = 64 * 1024

	// maxRetainedSize bounds how large a buffer may grow and still be
	// returned to the pool. Oversized buffers are dropped for the GC so
	// one huge frame does not pin memory for the process lifetime.
	maxRetainedSize = 1 << 20
)

// Buffer is a pooled, appendable byte buffer. A Buffer belongs to one
// borrower between Get and Release; it must not be used after Release.
type Buffer struct {
	b    []byte
	pool *BufferPool
}

// Bytes returns the buffer's current contents. The slice is only valid
// until the next Append or Release.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Append appends p to the buffer, growing it as needed.
func (b *Buffer) Append(p []byte) {
	b.b = append(b.b, p...)
}

// Set replaces the buffer's contents with p. p must be an append-style
// extension of Bytes(); ownership of its backing array transfers to the
// buffer so growth stays pooled.
func (b *Buffer) Set(p []byte) {
	b.b = p
}

// Reset truncates the buffer to zero length, keeping capacity.
func (b *Buffer) Reset() {
	b.b = b.b[:0]
}

// Extend grows the buffer by n bytes and returns the newly added region
// for the caller to read into. The region's contents are unspecified.
func (b *Buffer) Extend(n int) []byte {
	l := len(b.b)
	if cap(b.b)-l < n {
		grown := make([]byte, l, l+n)
		copy(grown, b.b)
		b.b = grown
	}
	b.b = b.b[:l+n]
	return b.b[l:]
}

// Truncate shortens the buffer to length n. It panics if n exceeds the
// current length.
func (b *Buffer) Truncate(n int) {
	b.b = b.b[:n]
}

// Release clears the buffer and returns it to its pool. The Buffer must
// not be used afterwards.
func (b *Buffer) Release() {
	b.pool.put(b)
}

// BufferPool manages reusable byte buffers backed by sync.Pool, reducing
// GC pressure from per-request buffer churn on busy connections.
type BufferPool struct {
	buffers sync.Pool
}

// NewBufferPool creates a new buffer pool.
func NewBufferPool() *BufferPool {
	p := &BufferPool{}
	p.buffers.New = func() any {
		return &Buffer{b: make([]byte, 0, DefaultBufSize), pool: p}
	}
	return p
}

// Get acquires an empty buffer from the pool.
func (p *BufferPool) Get() *Buffer {
	return p.buffers.Get().(*Buffer)
}

func (p *BufferPool) put(b *Buffer) {
	if cap(b.b) > maxRetainedSize {
		return
	}
	b.b = b.b[:0]
	p.buffers.Put(b)
}
