package jtprint_test

import (
	"bytes"
	"testing"

	"github.com/lattice-substrate/json-tree/jtprint"
	"github.com/lattice-substrate/json-tree/jtvalue"
)

func num(f float64) *jtvalue.Value {
	return &jtvalue.Value{Kind: jtvalue.KindNumber, Num: f}
}

func str(s string) *jtvalue.Value {
	return &jtvalue.Value{Kind: jtvalue.KindString, Str: []byte(s)}
}

func boolean(b bool) *jtvalue.Value {
	return &jtvalue.Value{Kind: jtvalue.KindBool, Bool: b}
}

func array(elems ...*jtvalue.Value) *jtvalue.Value {
	return &jtvalue.Value{Kind: jtvalue.KindArray, Elems: elems}
}

func object(t *testing.T, pairs ...any) *jtvalue.Value {
	t.Helper()
	obj := jtvalue.NewObject(nil)
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i].(string)
		val := pairs[i+1].(*jtvalue.Value)
		if err := obj.Insert([]byte(key), val); err != nil {
			t.Fatalf("insert %q: %v", key, err)
		}
	}
	return &jtvalue.Value{Kind: jtvalue.KindObject, Obj: obj}
}

func mustSprint(t *testing.T, v *jtvalue.Value, indent int) string {
	t.Helper()
	out, err := jtprint.Sprint(v, indent)
	if err != nil {
		t.Fatalf("Sprint: %v", err)
	}
	return out
}

func TestPrintScalars(t *testing.T) {
	cases := []struct {
		v    *jtvalue.Value
		want string
	}{
		{&jtvalue.Value{Kind: jtvalue.KindNull}, "null"},
		{boolean(true), "true"},
		{boolean(false), "false"},
		{num(0), "0"},
		{num(42), "42"},
		{num(3.25), "3.25"},
		{num(1e21), "1e+21"},
		{str(""), `""`},
		{str("hello"), `"hello"`},
	}
	for _, c := range cases {
		if got := mustSprint(t, c.v, 2); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

// String payloads are stored with their escape bytes intact, and those bytes
// must come back out unmodified.
func TestPrintStringVerbatim(t *testing.T) {
	raw := `a\"b\nA`
	got := mustSprint(t, str(raw), 2)
	want := `"` + raw + `"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintEmptyContainers(t *testing.T) {
	if got := mustSprint(t, array(), 2); got != "[]" {
		t.Errorf("empty array: got %q", got)
	}
	if got := mustSprint(t, object(t), 2); got != "{}" {
		t.Errorf("empty object: got %q", got)
	}
}

func TestPrintArrayIndented(t *testing.T) {
	got := mustSprint(t, array(num(1), num(2), num(3)), 2)
	want := "[\n  1,\n  2,\n  3\n]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintNested(t *testing.T) {
	v := object(t,
		"a", num(1),
		"b", array(boolean(true), &jtvalue.Value{Kind: jtvalue.KindNull}),
	)
	got := mustSprint(t, v, 2)
	want := "{\n" +
		"  \"a\": 1,\n" +
		"  \"b\": [\n" +
		"    true,\n" +
		"    null\n" +
		"  ]\n" +
		"}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintIndentWidth(t *testing.T) {
	v := array(num(1))
	if got := mustSprint(t, v, 4); got != "[\n    1\n]" {
		t.Errorf("indent 4: got %q", got)
	}
	if got := mustSprint(t, v, 0); got != "[\n1\n]" {
		t.Errorf("indent 0: got %q", got)
	}
}

func TestFprintWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := jtprint.Fprint(&buf, num(7), 2); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	if buf.String() != "7" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPrintUnknownKindFails(t *testing.T) {
	_, err := jtprint.Sprint(&jtvalue.Value{Kind: jtvalue.Kind(99)}, 2)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
