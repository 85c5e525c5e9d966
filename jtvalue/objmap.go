package jtvalue

import (
	"bytes"

	"github.com/lattice-substrate/json-tree/jtarena"
	"github.com/lattice-substrate/json-tree/jterr"
)

// BucketCount is the fixed number of hash buckets in an Object. It is set
// at construction and never grows; collisions extend the bucket chain.
const BucketCount = 32

// Entry is one key/value pair in an Object's bucket chain.
type Entry struct {
	Key []byte
	Val *Value

	next *Entry
}

// Object is a JSON object: a separate-chaining hash map from byte-string
// keys to values. New entries are prepended at the bucket head, so each
// chain holds its entries in LIFO insertion order. Keys are unique; a
// duplicate insert fails without mutating the map.
//
// Destruction is the arena's concern: dropping the parse's arena (or letting
// the garbage collector take the tree) releases the map and every value
// reachable through it. There is no per-entry teardown.
type Object struct {
	buckets [BucketCount]*Entry
	entries *jtarena.Slab[Entry]
	n       int
}

// NewObject creates an empty object whose entries are allocated from the
// given slab. A nil slab falls back to per-entry heap allocation, which is
// convenient for hand-built trees in tests.
func NewObject(entries *jtarena.Slab[Entry]) *Object {
	return &Object{entries: entries}
}

// Hash returns the bucket index for key: the djb2 string hash (seed 5381,
// hash*33 + byte per byte) reduced modulo BucketCount.
func Hash(key []byte) int {
	h := uint64(5381)
	for _, c := range key {
		h = ((h << 5) + h) + uint64(c)
	}
	return int(h % BucketCount)
}

// Lookup walks the bucket chain for key and returns the value mapped to it.
func (o *Object) Lookup(key []byte) (*Value, bool) {
	for e := o.buckets[Hash(key)]; e != nil; e = e.next {
		if bytes.Equal(e.Key, key) {
			return e.Val, true
		}
	}
	return nil, false
}

// Insert maps key to val. If the key already exists the map is left
// untouched and a DUPLICATE_KEY error is returned.
//
// A nil key or nil value is a programming-contract violation and panics:
// the parser never legitimately produces either.
func (o *Object) Insert(key []byte, val *Value) error {
	if key == nil {
		panic("jtvalue: Insert with nil key")
	}
	if val == nil {
		panic("jtvalue: Insert with nil value")
	}

	i := Hash(key)
	for e := o.buckets[i]; e != nil; e = e.next {
		if bytes.Equal(e.Key, key) {
			return jterr.New(jterr.DuplicateKey, -1,
				"duplicate object key "+string(key))
		}
	}

	e := o.newEntry()
	e.Key = key
	e.Val = val
	e.next = o.buckets[i]
	o.buckets[i] = e
	o.n++
	return nil
}

// Len returns the number of entries in the object.
func (o *Object) Len() int { return o.n }

// Walk visits every entry in bucket order, LIFO within each bucket. The
// visit order is an implementation detail; callers needing a stable order
// must sort.
func (o *Object) Walk(fn func(key []byte, val *Value)) {
	for i := range o.buckets {
		for e := o.buckets[i]; e != nil; e = e.next {
			fn(e.Key, e.Val)
		}
	}
}

func (o *Object) newEntry() *Entry {
	if o.entries == nil {
		return new(Entry)
	}
	return o.entries.New()
}
