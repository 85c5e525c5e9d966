// Package jtarena provides parse-scoped bulk allocation for json-tree.
//
// An Arena hands out byte storage for string payloads and scratch buffers;
// a Slab hands out typed nodes (values, map entries). Neither supports
// releasing an individual allocation: the whole region is dropped at once
// with Reset, which is how a failed parse discards a half-built tree without
// walking it.
//
// Storage never moves once issued. Growing a buffer is only supported for
// the most recently issued allocation (ResizeTail), which extends it in
// place while it is still the tail of the current chunk and copies
// otherwise. This mirrors how the parser's string reader grows its scratch
// buffer in a loop without fragmenting the region.
//
// An Arena is not safe for concurrent use; parallel parses must use one
// arena each.
package jtarena

import "github.com/lattice-substrate/json-tree/jterr"

// DefaultChunkSize is the allocation granularity of the backing region.
const DefaultChunkSize = 64 * 1024

// Arena is a chunked bump allocator for byte slices.
type Arena struct {
	chunks [][]byte
	cur    []byte
	off    int
	used   int
	limit  int

	// Most recent allocation, for the tail-resize contract.
	lastOff int
	lastLen int
}

// New creates an arena with the given initial chunk capacity in bytes.
// A non-positive capacity selects DefaultChunkSize.
func New(initial int) *Arena {
	return NewWithLimit(initial, 0)
}

// NewWithLimit creates an arena that fails allocations with an
// ALLOC_FAILURE error once more than limit bytes have been issued.
// A limit of 0 means unlimited.
func NewWithLimit(initial, limit int) *Arena {
	if initial <= 0 {
		initial = DefaultChunkSize
	}
	buf := make([]byte, initial)
	return &Arena{
		chunks:  [][]byte{buf},
		cur:     buf,
		limit:   limit,
		lastOff: -1,
	}
}

// Alloc reserves n bytes and returns a slice backed by the arena. The slice
// contents are zeroed. n may be zero.
//
// The returned slice is valid until Reset; it is never reclaimed
// individually.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		panic("jtarena: negative allocation size")
	}
	if err := a.charge(n); err != nil {
		return nil, err
	}
	buf := a.bump(n)
	a.lastOff = a.off - n
	a.lastLen = n
	return buf, nil
}

// ResizeTail grows or shrinks the most recently issued allocation to n
// bytes, preserving its contents up to min(len(buf), n). It extends in
// place when buf is still at the arena's high-water mark and the current
// chunk has room; otherwise it copies into fresh storage.
//
// Calling ResizeTail with anything other than the slice returned by the
// most recent Alloc or ResizeTail is a programming-contract violation and
// panics.
func (a *Arena) ResizeTail(buf []byte, n int) ([]byte, error) {
	if n < 0 {
		panic("jtarena: negative allocation size")
	}
	if !a.isTail(buf) {
		panic("jtarena: ResizeTail on non-tail allocation")
	}

	if n <= a.lastLen {
		// Shrink in place, returning the excess to the region.
		a.used -= a.lastLen - n
		a.off = a.lastOff + n
		a.lastLen = n
		return a.cur[a.lastOff:a.off:a.off], nil
	}

	grow := n - a.lastLen
	if err := a.charge(grow); err != nil {
		return nil, err
	}

	if a.lastOff+n <= len(a.cur) {
		// Still at the high-water mark with room: extend in place.
		a.off = a.lastOff + n
		a.lastLen = n
		return a.cur[a.lastOff:a.off:a.off], nil
	}

	// The current chunk is too small: copy into fresh storage. The old
	// tail is abandoned in place and reclaimed with the region at Reset.
	fresh := a.bump(n)
	copy(fresh, buf)
	a.lastOff = a.off - n
	a.lastLen = n
	return fresh, nil
}

// Reset releases every allocation at once. All previously issued slices
// become stale and must not be used. The first chunk's storage is retained
// for reuse.
func (a *Arena) Reset() {
	a.chunks = a.chunks[:1]
	a.cur = a.chunks[0]
	a.off = 0
	a.used = 0
	a.lastOff = -1
	a.lastLen = 0
}

// Used returns the number of bytes currently issued.
func (a *Arena) Used() int { return a.used }

// charge enforces the byte limit before storage is handed out.
func (a *Arena) charge(n int) *jterr.Error {
	if a.limit > 0 && a.used+n > a.limit {
		return jterr.New(jterr.AllocFailure, -1,
			"arena limit exceeded")
	}
	a.used += n
	return nil
}

// bump reserves n bytes from the current chunk, opening a new chunk when
// the current one is full. Chunks already issued never move.
func (a *Arena) bump(n int) []byte {
	if a.off+n > len(a.cur) {
		size := DefaultChunkSize
		if len(a.cur) > size {
			size = len(a.cur)
		}
		if n > size {
			size = n
		}
		chunk := make([]byte, size)
		a.chunks = append(a.chunks, chunk)
		a.cur = chunk
		a.off = 0
	}
	start := a.off
	a.off += n
	clear(a.cur[start:a.off])
	return a.cur[start:a.off:a.off]
}

// isTail reports whether buf is the most recently issued allocation.
func (a *Arena) isTail(buf []byte) bool {
	if a.lastOff < 0 || len(buf) != a.lastLen {
		return false
	}
	if a.lastLen == 0 {
		// A zero-length tail has no storage to compare; trust the length.
		return true
	}
	return &buf[0] == &a.cur[a.lastOff]
}
