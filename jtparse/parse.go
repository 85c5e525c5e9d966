// Package jtparse parses JSON text from a seekable byte stream into a
// jtvalue tree using recursive descent with one-character lookahead.
//
// This parser deliberately accepts a superset/subset of RFC 8259 JSON:
//
//   - Backslash escapes are not decoded. The backslash and the byte after it
//     are copied into the string payload verbatim. An escaped quote still
//     does not terminate the string.
//   - Numbers are scanned permissively: any digit-led token shaped like a
//     floating-point literal is accepted, including leading zeros. A leading
//     minus sign is never reached (value dispatch only enters the number
//     production on an ASCII digit). A cleanly scanned token whose value
//     exceeds the float64 range is still a number: overflow clamps to the
//     largest finite value, underflow rounds toward zero.
//   - Array elements may be separated by whitespace alone; commas are
//     skipped as separators wherever they appear. A trailing comma before a
//     closing brace or bracket is accepted.
//
// Every failure is a *jterr.Error carrying the byte offset and a captured
// window of the surrounding input; see jterr.Error.RenderContext. Failures
// are terminal: there is no resynchronization, and the caller discards the
// parse's arena as one unit instead of unwinding a half-built tree.
package jtparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/lattice-substrate/json-tree/jtarena"
	"github.com/lattice-substrate/json-tree/jterr"
	"github.com/lattice-substrate/json-tree/jtvalue"
)

const (
	// DefaultMaxDepth is the maximum nesting depth for objects and arrays.
	DefaultMaxDepth = 1000

	// ErrorContextLen is the size of the diagnostic window captured around
	// a failure offset: half before, half after, clamped at the stream
	// boundaries.
	ErrorContextLen = 60
)

// Options controls parser behavior.
type Options struct {
	MaxDepth   int // 0 means DefaultMaxDepth
	ArenaLimit int // arena byte limit; 0 means unlimited
}

func (o *Options) maxDepth() int {
	if o != nil && o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o *Options) arenaLimit() int {
	if o != nil && o.ArenaLimit > 0 {
		return o.ArenaLimit
	}
	return 0
}

// Parser owns the arena and node slabs backing the trees it produces.
// Values returned by Parse stay valid until Reset; Reset releases every
// tree from this parser at once.
//
// A Parser is not safe for concurrent use; parallel parses must use one
// Parser each.
type Parser struct {
	maxDepth int
	arena    *jtarena.Arena
	values   *jtarena.Slab[jtvalue.Value]
	entries  *jtarena.Slab[jtvalue.Entry]
	consumed int64
}

// NewParser creates a parser with its own arena. opts may be nil.
func NewParser(opts *Options) *Parser {
	return &Parser{
		maxDepth: opts.maxDepth(),
		arena:    jtarena.NewWithLimit(0, opts.arenaLimit()),
		values:   jtarena.NewSlab[jtvalue.Value](0),
		entries:  jtarena.NewSlab[jtvalue.Entry](0),
	}
}

// Parse consumes exactly one JSON value production from src and returns its
// tree. The stream is left positioned after the value; trailing content is
// the caller's concern. On failure the returned error is a *jterr.Error and
// any partially built nodes remain in the arena until Reset.
func (p *Parser) Parse(src io.ReadSeeker) (*jtvalue.Value, error) {
	u := &run{p: p, r: newReader(src)}
	v, perr := u.parseValue()
	p.consumed = u.r.offset()
	if perr != nil {
		return nil, perr
	}
	return v, nil
}

// Reset releases every tree produced by this parser at once. All values
// returned by earlier Parse calls become stale.
func (p *Parser) Reset() {
	p.arena.Reset()
	p.values.Reset()
	p.entries.Reset()
	p.consumed = 0
}

// ArenaBytes returns the bytes currently issued by the parser's arena.
func (p *Parser) ArenaBytes() int { return p.arena.Used() }

// Nodes returns the number of value nodes allocated since the last Reset.
func (p *Parser) Nodes() int { return p.values.Len() }

// BytesConsumed returns the stream offset reached by the last Parse call.
func (p *Parser) BytesConsumed() int64 { return p.consumed }

// Parse parses one JSON value from src with default options and a fresh
// arena owned by the discarded parser (the garbage collector releases it
// with the tree).
func Parse(src io.ReadSeeker) (*jtvalue.Value, error) {
	return NewParser(nil).Parse(src)
}

// ParseWithOptions is like Parse but accepts configuration options.
func ParseWithOptions(src io.ReadSeeker, opts *Options) (*jtvalue.Value, error) {
	return NewParser(opts).Parse(src)
}

// ParseBytes parses one JSON value from an in-memory buffer.
func ParseBytes(data []byte) (*jtvalue.Value, error) {
	return Parse(bytes.NewReader(data))
}

// ParseBytesWithOptions is like ParseBytes but accepts options.
func ParseBytesWithOptions(data []byte, opts *Options) (*jtvalue.Value, error) {
	return ParseWithOptions(bytes.NewReader(data), opts)
}

// run is the state of one Parse call: the stream view and the recursion
// depth. Everything else lives on the Parser.
type run struct {
	p     *Parser
	r     *reader
	depth int
}

func (u *run) pushDepth() *jterr.Error {
	u.depth++
	if u.depth > u.p.maxDepth {
		return u.fail(jterr.BoundExceeded, u.r.offset(),
			fmt.Sprintf("nesting depth %d exceeds maximum %d", u.depth, u.p.maxDepth))
	}
	return nil
}

func (u *run) popDepth() { u.depth-- }

// fail builds a classified error and captures the context window around off.
func (u *run) fail(class jterr.FailureClass, off int64, msg string) *jterr.Error {
	e := jterr.New(class, off, msg)
	e.Window, e.WindowStart = u.r.contextWindow(off)
	return e
}

// readErr classifies a read failure: end of stream where the grammar
// required more bytes is EARLY_EOF, anything else is an I/O fault.
func (u *run) readErr(err error, msg string) *jterr.Error {
	if errors.Is(err, io.EOF) {
		return u.fail(jterr.EarlyEOF, u.r.offset(), msg)
	}
	e := jterr.Wrap(jterr.InternalIO, u.r.offset(), msg, err)
	e.Window, e.WindowStart = u.r.contextWindow(e.Offset)
	return e
}

// arenaFail attaches the current stream position to an arena error.
func (u *run) arenaFail(err error) *jterr.Error {
	var je *jterr.Error
	if !errors.As(err, &je) {
		je = jterr.Wrap(jterr.AllocFailure, -1, "arena failure", err)
	}
	je.Offset = u.r.offset()
	je.Window, je.WindowStart = u.r.contextWindow(je.Offset)
	return je
}

// parseValue consumes one value production: skip whitespace, read one byte
// to discriminate, push it back where the sub-production re-reads its
// leading byte.
func (u *run) parseValue() (*jtvalue.Value, *jterr.Error) {
	if err := u.skipWhitespace(); err != nil {
		return nil, err
	}
	c, err := u.r.readByte()
	if err != nil {
		return nil, u.readErr(err, "unexpected EOF at value start")
	}

	v := u.p.values.New()
	switch {
	case c == '{':
		obj, perr := u.parseObject()
		if perr != nil {
			return nil, perr
		}
		v.Kind = jtvalue.KindObject
		v.Obj = obj

	case c == '"':
		s, perr := u.parseString()
		if perr != nil {
			return nil, perr
		}
		v.Kind = jtvalue.KindString
		v.Str = s

	case c == '[':
		elems, perr := u.parseArray()
		if perr != nil {
			return nil, perr
		}
		v.Kind = jtvalue.KindArray
		v.Elems = elems

	case c == 't' || c == 'f':
		u.r.unreadByte()
		b, perr := u.parseBoolean()
		if perr != nil {
			return nil, perr
		}
		v.Kind = jtvalue.KindBool
		v.Bool = b

	case c == 'n':
		u.r.unreadByte()
		if perr := u.parseNull(); perr != nil {
			return nil, perr
		}
		v.Kind = jtvalue.KindNull

	case c >= '0' && c <= '9':
		u.r.unreadByte()
		f, perr := u.parseNumber()
		if perr != nil {
			return nil, perr
		}
		v.Kind = jtvalue.KindNumber
		v.Num = f

	default:
		u.r.unreadByte()
		return nil, u.fail(jterr.UnexpectedChar, u.r.offset(),
			fmt.Sprintf("unexpected symbol %q at value start", string(c)))
	}
	return v, nil
}

// skipWhitespace discards whitespace. End of stream during the skip is an
// EARLY_EOF failure: every call site grammatically requires another byte.
func (u *run) skipWhitespace() *jterr.Error {
	for {
		c, err := u.r.readByte()
		if err != nil {
			return u.readErr(err, "unexpected EOF")
		}
		switch c {
		case ' ', '\t', '\n', '\v', '\f', '\r':
		default:
			u.r.unreadByte()
			return nil
		}
	}
}

// parseObject consumes the remainder of an object production; the opening
// brace has already been read. Entries go into a fresh map as each
// key:value pair completes; a duplicate key aborts the parse with the map's
// first entry intact.
func (u *run) parseObject() (*jtvalue.Object, *jterr.Error) {
	if err := u.pushDepth(); err != nil {
		return nil, err
	}
	defer u.popDepth()

	obj := jtvalue.NewObject(u.p.entries)
	for {
		if err := u.skipWhitespace(); err != nil {
			return nil, err
		}
		keyStart := u.r.offset()
		c, err := u.r.readByte()
		if err != nil {
			return nil, u.readErr(err, "unexpected EOF in object")
		}

		var key []byte
		switch c {
		case '}':
			return obj, nil
		case '"':
			var perr *jterr.Error
			key, perr = u.parseString()
			if perr != nil {
				return nil, perr
			}
		default:
			u.r.unreadByte()
			return nil, u.fail(jterr.UnexpectedChar, keyStart, `expected '"'`)
		}

		if err := u.skipWhitespace(); err != nil {
			return nil, err
		}
		c, err = u.r.readByte()
		if err != nil {
			return nil, u.readErr(err, "unexpected EOF in object")
		}
		if c != ':' {
			u.r.unreadByte()
			return nil, u.fail(jterr.UnexpectedChar, u.r.offset(), "expected ':'")
		}

		val, perr := u.parseValue()
		if perr != nil {
			return nil, perr
		}

		if ierr := obj.Insert(key, val); ierr != nil {
			var je *jterr.Error
			if !errors.As(ierr, &je) {
				je = jterr.Wrap(jterr.DuplicateKey, -1, "insert failed", ierr)
			}
			je.Offset = keyStart
			je.Window, je.WindowStart = u.r.contextWindow(keyStart)
			return nil, je
		}

		if err := u.skipWhitespace(); err != nil {
			return nil, err
		}
		c, err = u.r.readByte()
		if err != nil {
			return nil, u.readErr(err, "unexpected EOF in object")
		}
		switch c {
		case ',':
		case '}':
			return obj, nil
		default:
			u.r.unreadByte()
			return nil, u.fail(jterr.UnexpectedChar, u.r.offset(), "expected ',' or '}'")
		}
	}
}

// parseArray consumes the remainder of an array production; the opening
// bracket has already been read. ']' ends the array (covering the empty
// case), ',' is skipped as a separator, anything else is pushed back and
// parsed as an element.
func (u *run) parseArray() ([]*jtvalue.Value, *jterr.Error) {
	if err := u.pushDepth(); err != nil {
		return nil, err
	}
	defer u.popDepth()

	var elems []*jtvalue.Value
	for {
		if err := u.skipWhitespace(); err != nil {
			return nil, err
		}
		c, err := u.r.readByte()
		if err != nil {
			return nil, u.readErr(err, "unexpected EOF in array")
		}
		switch c {
		case ']':
			return elems, nil
		case ',':
		default:
			u.r.unreadByte()
			v, perr := u.parseValue()
			if perr != nil {
				return nil, perr
			}
			elems = append(elems, v)
		}
	}
}

// parseString copies bytes into an arena buffer until an unescaped '"'
// terminates it. The buffer starts at 16 bytes, doubles via tail resize
// while reading, and shrinks to the exact length at the end. A backslash
// marks the next byte as escaped; both bytes are copied verbatim.
func (u *run) parseString() ([]byte, *jterr.Error) {
	buf, aerr := u.p.arena.Alloc(16)
	if aerr != nil {
		return nil, u.arenaFail(aerr)
	}

	i := 0
	escaped := false
	for {
		if i+1 >= len(buf) {
			grown, aerr := u.p.arena.ResizeTail(buf, 2*len(buf))
			if aerr != nil {
				return nil, u.arenaFail(aerr)
			}
			buf = grown
		}

		c, err := u.r.readByte()
		if err != nil {
			return nil, u.readErr(err, "unexpected EOF in string")
		}

		if escaped {
			escaped = false
			buf[i] = c
			i++
			continue
		}

		switch c {
		case '\\':
			escaped = true
			buf[i] = c
			i++
		case '"':
			out, aerr := u.p.arena.ResizeTail(buf, i)
			if aerr != nil {
				return nil, u.arenaFail(aerr)
			}
			return out, nil
		default:
			buf[i] = c
			i++
		}
	}
}

// parseBoolean reads exactly 4 bytes and compares against "true", reading a
// 5th only when the first 4 look like "fals". Matching "true" leaves the
// stream positioned immediately after the 4th byte.
func (u *run) parseBoolean() (bool, *jterr.Error) {
	start := u.r.offset()

	var buf [4]byte
	for i := range buf {
		c, err := u.r.readByte()
		if err != nil {
			return false, u.readErr(err, "unexpected EOF in literal")
		}
		buf[i] = c
	}

	switch string(buf[:]) {
	case "true":
		return true, nil
	case "fals":
		c, err := u.r.readByte()
		if err != nil {
			return false, u.readErr(err, "unexpected EOF in literal")
		}
		if c == 'e' {
			return false, nil
		}
	}
	return false, u.fail(jterr.UnexpectedChar, start, "unexpected symbol in literal")
}

// parseNull reads exactly 4 bytes and requires "null".
func (u *run) parseNull() *jterr.Error {
	start := u.r.offset()

	var buf [4]byte
	for i := range buf {
		c, err := u.r.readByte()
		if err != nil {
			return u.readErr(err, "unexpected EOF in literal")
		}
		buf[i] = c
	}
	if string(buf[:]) != "null" {
		return u.fail(jterr.UnexpectedChar, start, "unexpected symbol in literal")
	}
	return nil
}

// parseNumber consumes a maximal digit-led floating-point-shaped token and
// converts it with strconv.ParseFloat. The scan is permissive (leading
// zeros pass, "1." is one point zero) and follows the maximal-valid-prefix
// rule: a byte that cannot extend the token is pushed back for the caller's
// production to judge. Once an exponent marker is consumed, at least one
// digit must follow.
func (u *run) parseNumber() (float64, *jterr.Error) {
	start := u.r.offset()
	tok := make([]byte, 0, 24)

	tok, eof, ferr := u.scanDigits(tok)
	if ferr != nil {
		return 0, ferr
	}

	if !eof {
		c, err := u.r.readByte()
		switch {
		case errors.Is(err, io.EOF):
			eof = true
		case err != nil:
			return 0, u.readErr(err, "read failure in number")
		case c == '.':
			tok = append(tok, c)
			tok, eof, ferr = u.scanDigits(tok)
			if ferr != nil {
				return 0, ferr
			}
		default:
			u.r.unreadByte()
		}
	}

	if !eof {
		c, err := u.r.readByte()
		switch {
		case errors.Is(err, io.EOF):
		case err != nil:
			return 0, u.readErr(err, "read failure in number")
		case c == 'e' || c == 'E':
			tok = append(tok, c)
			c, err = u.r.readByte()
			if err != nil {
				return 0, u.readErr(err, "unexpected EOF in number exponent")
			}
			if c == '+' || c == '-' {
				tok = append(tok, c)
				c, err = u.r.readByte()
				if err != nil {
					return 0, u.readErr(err, "unexpected EOF in number exponent")
				}
			}
			if c < '0' || c > '9' {
				u.r.unreadByte()
				return 0, u.fail(jterr.UnexpectedChar, u.r.offset(),
					"expected digit in number exponent")
			}
			tok = append(tok, c)
			tok, _, ferr = u.scanDigits(tok)
			if ferr != nil {
				return 0, ferr
			}
		default:
			u.r.unreadByte()
		}
	}

	f, err := strconv.ParseFloat(string(tok), 64)
	if err != nil {
		// The token scanned cleanly, so a range error is not a syntax
		// failure: clamp overflow to the largest finite value and keep
		// whatever ParseFloat rounded an underflow to.
		if !errors.Is(err, strconv.ErrRange) {
			return 0, u.fail(jterr.UnexpectedChar, start,
				fmt.Sprintf("invalid number %q", tok))
		}
		if math.IsInf(f, 1) {
			f = math.MaxFloat64
		}
	}
	return f, nil
}

// scanDigits appends a run of ASCII digits to tok, pushing back the first
// non-digit. It reports whether the stream ended during the run; a non-EOF
// read failure is returned as an error.
func (u *run) scanDigits(tok []byte) ([]byte, bool, *jterr.Error) {
	for {
		c, err := u.r.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return tok, true, nil
			}
			return tok, false, u.readErr(err, "read failure in number")
		}
		if c < '0' || c > '9' {
			u.r.unreadByte()
			return tok, false, nil
		}
		tok = append(tok, c)
	}
}
