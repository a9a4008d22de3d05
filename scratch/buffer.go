package scratch

import (
	"errors"
	"io"
	"sync/atomic"
)

// ErrReleased is returned by writes to a buffer after Release.
var ErrReleased = errors.New("scratch: buffer released")

// Buffer is a growable byte sequence with separate read and write cursors.
// It is owned by a single goroutine for the duration of one conversion.
type Buffer struct {
	pool     *Pool
	data     []byte
	r        int
	released atomic.Bool
}

// Wrap returns an unpooled buffer whose readable content is b.
func Wrap(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Write appends p at the write cursor.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.released.Load() {
		return 0, ErrReleased
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	if b.released.Load() {
		return ErrReleased
	}
	b.data = append(b.data, c)
	return nil
}

// Read copies unread bytes into p, returning io.EOF once drained.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.r >= len(b.data) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[b.r:])
	b.r += n
	return n, nil
}

// ReadByte reads a single byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.r >= len(b.data) {
		return 0, io.EOF
	}
	c := b.data[b.r]
	b.r++
	return c, nil
}

// Readable returns the number of unread bytes.
func (b *Buffer) Readable() int {
	return len(b.data) - b.r
}

// Bytes returns the unread bytes. The slice aliases the buffer and is only
// valid until the next write or Release.
func (b *Buffer) Bytes() []byte {
	return b.data[b.r:]
}

// Len returns the total number of bytes written.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset discards content and rewinds both cursors.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.r = 0
}

// Release returns the backing storage to the pool. Only the first call has
// an effect; it reports whether this call released the buffer.
func (b *Buffer) Release() bool {
	if !b.released.CompareAndSwap(false, true) {
		return false
	}
	data := b.data
	b.data, b.r = nil, 0
	if b.pool != nil {
		b.pool.put(data)
	}
	return true
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b.released.Load()
}
