// Package jtvalue defines the parsed JSON value tree: a tagged union of the
// six JSON kinds, with objects represented by a fixed-bucket chained hash
// map. String payloads are length-bearing byte slices owned by the parse's
// arena; the package never copies or frees them.
package jtvalue

// Kind identifies the active variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a parsed JSON value. Kind determines which payload field is
// meaningful; the others hold their zero value and must not be read.
type Value struct {
	Kind Kind

	Str   []byte   // KindString: raw bytes, escape sequences preserved verbatim
	Num   float64  // KindNumber
	Bool  bool     // KindBool
	Elems []*Value // KindArray: ordered elements
	Obj   *Object  // KindObject
}

// Equal reports structural equivalence of two value trees: order-sensitive
// for array elements, order-insensitive for object members.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num == b.Num
	case KindString:
		return string(a.Str) == string(b.Str)
	case KindArray:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.Obj.Len() != b.Obj.Len() {
			return false
		}
		equal := true
		a.Obj.Walk(func(key []byte, av *Value) {
			bv, ok := b.Obj.Lookup(key)
			if !ok || !Equal(av, bv) {
				equal = false
			}
		})
		return equal
	default:
		return false
	}
}
