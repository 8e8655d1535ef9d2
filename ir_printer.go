package lacc

import (
	"fmt"
	"strings"
)

// Reachable returns the blocks reachable from the fragment's body
// entry, in depth first order.  Orphan blocks left behind by returns
// and breaks are not included.
func (d *Decl) Reachable() []*Block {
	var (
		out  []*Block
		seen = map[*Block]bool{}
		walk func(b *Block)
	)
	walk = func(b *Block) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		out = append(out, b)
		walk(b.Jump[0])
		walk(b.Jump[1])
	}
	walk(d.Body)
	return out
}

// PrettyString renders the fragment as a readable IR listing, one
// operation per line.
func (d *Decl) PrettyString() string {
	var s strings.Builder
	if d.Fun != nil {
		fmt.Fprintf(&s, "%s:\n", d.Fun.Name)
	}
	if len(d.Head.Code) > 0 {
		fmt.Fprintf(&s, "%s:\n", d.Head.Label)
		for _, op := range d.Head.Code {
			writeOp(&s, op)
		}
	}
	if d.Fun == nil {
		return s.String()
	}
	for _, b := range d.Reachable() {
		fmt.Fprintf(&s, "%s:\n", b.Label)
		for _, op := range b.Code {
			writeOp(&s, op)
		}
		switch {
		case b.Jump[1] != nil:
			fmt.Fprintf(&s, "\tcbr %s, %s, %s\n", b.Expr, b.Jump[1].Label, b.Jump[0].Label)
		case b.Jump[0] != nil:
			fmt.Fprintf(&s, "\tjmp %s\n", b.Jump[0].Label)
		}
	}
	return s.String()
}

func writeOp(s *strings.Builder, op Instruction) {
	switch ii := op.(type) {
	case IAssign:
		fmt.Fprintf(s, "\t%s = %s\n", ii.Dst, ii.Src)
	case IBinOp:
		fmt.Fprintf(s, "\t%s = %s %s %s\n", ii.Dst, ii.A, ii.Op, ii.B)
	case IAddr:
		fmt.Fprintf(s, "\t%s = &%s\n", ii.Dst, ii.Src)
	case IDeref:
		fmt.Fprintf(s, "\t%s = load %s\n", ii.Dst, ii.Src)
	case ICast:
		fmt.Fprintf(s, "\t%s = (%s) %s\n", ii.Dst, ii.Type, ii.Src)
	case IParam:
		fmt.Fprintf(s, "\tparam %s\n", ii.Src)
	case ICall:
		if ii.HasDst {
			fmt.Fprintf(s, "\t%s = call %s\n", ii.Dst, ii.Fn)
		} else {
			fmt.Fprintf(s, "\tcall %s\n", ii.Fn)
		}
	case IReturn:
		if ii.HasValue {
			fmt.Fprintf(s, "\tret %s\n", ii.Src)
		} else {
			fmt.Fprintf(s, "\tret\n")
		}
	default:
		fmt.Fprintf(s, "\t%s\n", op.Name())
	}
}
