// Package jtprint renders a jtvalue tree as indented text. It walks the
// tree read-only: string payloads are emitted verbatim between quotes
// (escape bytes were preserved by the parser, so what went in comes back
// out), numbers in shortest round-trip form, and each nesting level is
// indented a fixed amount more than its parent.
//
// Object members print in the map's bucket order, which is deterministic
// for a given input but not the insertion order.
package jtprint

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lattice-substrate/json-tree/jtvalue"
)

// DefaultIndent is the per-level indent width used by the CLI.
const DefaultIndent = 2

// Fprint writes the indented rendering of v to w, followed by no trailing
// newline (that is the caller's concern). indentAmount is the number of
// spaces each nesting level adds.
func Fprint(w io.Writer, v *jtvalue.Value, indentAmount int) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, amount: indentAmount}
	if err := p.value(v, 0); err != nil {
		return err
	}
	return bw.Flush()
}

// Sprint returns the indented rendering of v as a string.
func Sprint(v *jtvalue.Value, indentAmount int) (string, error) {
	var sb strings.Builder
	if err := Fprint(&sb, v, indentAmount); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type printer struct {
	w      *bufio.Writer
	amount int
}

func (p *printer) value(v *jtvalue.Value, level int) error {
	switch v.Kind {
	case jtvalue.KindNull:
		_, err := p.w.WriteString("null")
		return err
	case jtvalue.KindBool:
		if v.Bool {
			_, err := p.w.WriteString("true")
			return err
		}
		_, err := p.w.WriteString("false")
		return err
	case jtvalue.KindNumber:
		_, err := p.w.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
		return err
	case jtvalue.KindString:
		return p.str(v.Str)
	case jtvalue.KindArray:
		return p.array(v.Elems, level)
	case jtvalue.KindObject:
		return p.object(v.Obj, level)
	default:
		return fmt.Errorf("jtprint: unknown value kind %d", v.Kind)
	}
}

func (p *printer) str(raw []byte) error {
	if err := p.w.WriteByte('"'); err != nil {
		return err
	}
	if _, err := p.w.Write(raw); err != nil {
		return err
	}
	return p.w.WriteByte('"')
}

func (p *printer) array(elems []*jtvalue.Value, level int) error {
	if err := p.w.WriteByte('['); err != nil {
		return err
	}
	if len(elems) == 0 {
		return p.w.WriteByte(']')
	}
	for i, e := range elems {
		if i > 0 {
			if err := p.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := p.newlineIndent(level + 1); err != nil {
			return err
		}
		if err := p.value(e, level+1); err != nil {
			return err
		}
	}
	if err := p.newlineIndent(level); err != nil {
		return err
	}
	return p.w.WriteByte(']')
}

func (p *printer) object(obj *jtvalue.Object, level int) error {
	if err := p.w.WriteByte('{'); err != nil {
		return err
	}
	if obj == nil || obj.Len() == 0 {
		return p.w.WriteByte('}')
	}

	first := true
	var werr error
	obj.Walk(func(key []byte, val *jtvalue.Value) {
		if werr != nil {
			return
		}
		if !first {
			if werr = p.w.WriteByte(','); werr != nil {
				return
			}
		}
		first = false
		if werr = p.newlineIndent(level + 1); werr != nil {
			return
		}
		if werr = p.str(key); werr != nil {
			return
		}
		if _, werr = p.w.WriteString(": "); werr != nil {
			return
		}
		werr = p.value(val, level+1)
	})
	if werr != nil {
		return werr
	}

	if err := p.newlineIndent(level); err != nil {
		return err
	}
	return p.w.WriteByte('}')
}

func (p *printer) newlineIndent(level int) error {
	if err := p.w.WriteByte('\n'); err != nil {
		return err
	}
	for i := 0; i < level*p.amount; i++ {
		if err := p.w.WriteByte(' '); err != nil {
			return err
		}
	}
	return nil
}
