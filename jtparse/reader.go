package jtparse

import (
	"bufio"
	"io"
)

// reader is a buffered byte-at-a-time view of a seekable stream with
// single-byte pushback, the lookahead discipline every production relies
// on. It tracks the logical offset of the next unread byte so failures can
// name an exact position.
//
// Seekability is only exercised on the error path: contextWindow rewinds
// the underlying stream to re-read the bytes around a failure. After that
// the buffered view is out of sync, which is fine because the parse is
// already being abandoned.
type reader struct {
	src io.ReadSeeker
	br  *bufio.Reader
	off int64
}

func newReader(src io.ReadSeeker) *reader {
	return &reader{src: src, br: bufio.NewReader(src)}
}

// readByte returns the next byte. At end of stream it returns io.EOF.
func (r *reader) readByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, err
	}
	r.off++
	return b, nil
}

// unreadByte pushes back the byte most recently read. Only one byte of
// pushback is available, matching the grammar's one-character lookahead.
func (r *reader) unreadByte() {
	if err := r.br.UnreadByte(); err != nil {
		panic("jtparse: unreadByte without preceding readByte")
	}
	r.off--
}

// offset returns the logical offset of the next unread byte.
func (r *reader) offset() int64 { return r.off }

// contextWindow re-reads up to ErrorContextLen bytes surrounding off (half
// before, half after, clamped at the stream boundaries) for diagnostics.
// Best effort: any failure yields no window rather than masking the parse
// error.
func (r *reader) contextWindow(off int64) ([]byte, int64) {
	start := off - ErrorContextLen/2
	if start < 0 {
		start = 0
	}
	if _, err := r.src.Seek(start, io.SeekStart); err != nil {
		return nil, 0
	}
	window := make([]byte, ErrorContextLen)
	n, err := io.ReadFull(r.src, window)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, 0
	}
	if n == 0 {
		return nil, 0
	}
	return window[:n], start
}
