// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package buffer provides a growable FIFO byte buffer used for
// per-connection socket I/O. Bytes are appended after the write offset and
// consumed from the read offset; the readable region is the span between the
// two. The buffer compacts or grows only when a reservation (made directly
// with Reserve, or by Append) does not fit, so steady-state traffic whose
// frames fit the current capacity never allocates.
package buffer

import "errors"

// ErrUnderflow is returned by Consume when asked to consume more bytes than
// are readable.
var ErrUnderflow = errors.New("buffer: consume beyond readable region")

// Buffer is a contiguous byte region with a read offset and a write offset.
// The readable region is [r, w); the writable region is [w, cap). A Buffer
// must not be copied after first use.
type Buffer struct {
	data []byte // len(data) == capacity
	r    int
	w    int
}

// New returns a Buffer with the given initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of readable bytes.
func (b *Buffer) Len() int {
	return b.w - b.r
}

// Cap returns the buffer's current capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Readable returns the readable region. The slice is valid until the next
// Reserve, Append or Consume.
func (b *Buffer) Readable() []byte {
	return b.data[b.r:b.w]
}

// Writable returns the writable region. Callers that fill it directly must
// follow up with Commit.
func (b *Buffer) Writable() []byte {
	return b.data[b.w:]
}

// Reserve guarantees at least n bytes of contiguous writable space. If the
// free space exists but is fragmented by consumed bytes at the front, the
// readable region is slid to offset zero instead of growing.
func (b *Buffer) Reserve(n int) {
	if len(b.data)-b.w >= n {
		return
	}
	readable := b.w - b.r
	if len(b.data)-readable >= n {
		copy(b.data, b.data[b.r:b.w])
		b.r = 0
		b.w = readable
		return
	}
	grown := make([]byte, len(b.data)+n)
	copy(grown, b.data[b.r:b.w])
	b.data = grown
	b.r = 0
	b.w = readable
}

// Append copies p into the buffer after the write offset, reserving space
// first.
func (b *Buffer) Append(p []byte) {
	b.Reserve(len(p))
	copy(b.data[b.w:], p)
	b.w += len(p)
}

// Commit advances the write offset by n after a caller has filled the
// writable region directly (e.g. by a socket read).
func (b *Buffer) Commit(n int) {
	b.w += n
}

// Consume advances the read offset by n. When the buffer fully drains both
// offsets reset to zero so the whole capacity becomes writable again.
func (b *Buffer) Consume(n int) error {
	if n > b.w-b.r {
		return ErrUnderflow
	}
	b.r += n
	if b.r == b.w {
		b.r = 0
		b.w = 0
	}
	return nil
}
