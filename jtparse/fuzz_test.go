package jtparse_test

import (
	"testing"

	"github.com/lattice-substrate/json-tree/jtparse"
	"github.com/lattice-substrate/json-tree/jtprint"
	"github.com/lattice-substrate/json-tree/jtvalue"
)

// FuzzParsePrintRoundTrip: parse → print → reparse must yield a structurally
// equivalent tree for every input the parser accepts.
func FuzzParsePrintRoundTrip(f *testing.F) {
	seeds := [][]byte{
		[]byte(`null`),
		[]byte(`true`),
		[]byte(`0`),
		[]byte(`{}`),
		[]byte(`[]`),
		[]byte(`{"a":1,"z":[3,2,1]}`),
		[]byte(`"a\"b"`),
		[]byte(`[1.5, "x", {"k": null}, false]`),
		[]byte(`{"nested":{"deep":[[["leaf"]]]}}`),
		[]byte(`1e21`),
		[]byte(`1e999`),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in []byte) {
		if len(in) > 1<<20 {
			return
		}

		v, err := jtparse.ParseBytes(in)
		if err != nil {
			return
		}

		out, err := jtprint.Sprint(v, 2)
		if err != nil {
			t.Fatalf("print parsed value: %v", err)
		}

		v2, err := jtparse.ParseBytes([]byte(out))
		if err != nil {
			t.Fatalf("reparse printed output %q: %v", out, err)
		}
		if !jtvalue.Equal(v, v2) {
			t.Fatalf("round trip changed the tree:\ninput: %q\nprinted: %q", in, out)
		}
	})
}

// FuzzParseNoPanic: arbitrary bytes must produce a value or a classified
// error, never a panic, including under a tight depth bound.
func FuzzParseNoPanic(f *testing.F) {
	seeds := [][]byte{
		[]byte(`{"a"`),
		[]byte(`[[[[`),
		[]byte(`tru`),
		[]byte(`"\`),
		[]byte{0x00, 0xff, '{'},
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in []byte) {
		if len(in) > 1<<20 {
			return
		}
		jtparse.ParseBytesWithOptions(in, &jtparse.Options{MaxDepth: 64})
	})
}
