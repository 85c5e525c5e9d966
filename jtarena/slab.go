package jtarena

// DefaultSlabChunk is the number of nodes per slab chunk.
const DefaultSlabChunk = 256

// Slab is a chunked bump allocator for typed nodes. It exists because Go
// pointers may not live inside an Arena's byte storage; tree nodes and map
// entries come from typed chunks instead. Like the Arena, a Slab releases
// everything at once: pointers returned by New stay valid until Reset.
//
// Chunks never grow in place, so issued pointers never move.
type Slab[T any] struct {
	full [][]T
	cur  []T
	n    int
}

// NewSlab creates a slab holding chunkCap nodes per chunk. A non-positive
// capacity selects DefaultSlabChunk.
func NewSlab[T any](chunkCap int) *Slab[T] {
	if chunkCap <= 0 {
		chunkCap = DefaultSlabChunk
	}
	return &Slab[T]{cur: make([]T, 0, chunkCap)}
}

// New returns a pointer to a zeroed node in the slab.
func (s *Slab[T]) New() *T {
	if len(s.cur) == cap(s.cur) {
		s.full = append(s.full, s.cur)
		s.cur = make([]T, 0, cap(s.cur))
	}
	var zero T
	s.cur = append(s.cur, zero)
	s.n++
	return &s.cur[len(s.cur)-1]
}

// Len returns the number of nodes issued since the last Reset.
func (s *Slab[T]) Len() int { return s.n }

// Reset releases all nodes at once, keeping the current chunk's storage.
// Previously returned pointers become stale.
func (s *Slab[T]) Reset() {
	s.full = nil
	s.cur = s.cur[:0]
	s.n = 0
}
