package opt

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/tinyl/compiler/ir"
	"github.com/slowlang/tinyl/compiler/set"
)

type (
	// need is the set of registers and variables
	// read by some later critical instruction.
	// It only grows.
	//
	// Registers are numbered densely in order of first mention,
	// so the set is bounded by code length, not by register values.
	need struct {
		r2i map[ir.Reg]int
		i2r []ir.Reg

		regs set.Bits[int]
		vars set.Bits[ir.Var]
	}
)

var ErrNoInstructions = errors.New("no instructions")

// Optimize removes instructions not contributing to READ or WRITE.
func Optimize(ctx context.Context, code *ir.Code) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "opt: optimize", "instrs", code.Len())
	defer tr.Finish("err", &err)

	if code.Len() == 0 {
		return ErrNoInstructions
	}

	Mark(ctx, code)

	removed := Prune(ctx, code)

	tr.Printw("optimized", "removed", removed, "left", code.Len())

	return nil
}

// Mark sets Critical on each instruction that must be kept.
// Registers are assigned once, so a single backward walk
// after seeding is enough.
func Mark(ctx context.Context, code *ir.Code) {
	tr := tlog.SpanFromContext(ctx)

	n := newNeed(code.Len())

	for id := code.Tail(); id != ir.Nil; id = code.Prev(id) {
		x := code.At(id)

		x.Critical = false

		switch x.Op {
		case ir.OpWrite:
			x.Critical = true
			n.add(x.Args[0])
		case ir.OpRead:
			x.Critical = true
		default:
			continue
		}

		tr.V("opt_seed").Printw("seed", "id", id, "instr", x)
	}

	for id := code.Tail(); id != ir.Nil; id = code.Prev(id) {
		x := code.At(id)

		switch x.Op {
		case ir.OpLoadI:
			if n.has(x.Args[0]) {
				x.Critical = true
				n.add(x.Args[0])
			}
		case ir.OpLoad:
			if n.has(x.Args[0]) {
				x.Critical = true
				n.add(x.Args[0])
				n.add(x.Args[1])
			}
		default:
			if n.hasAny(x.Args[:]) {
				x.Critical = true

				for _, a := range x.Args {
					n.add(a)
				}
			}
		}

		tr.V("opt_walk").Printw("walk bwd", "id", id, "instr", x, "need", n)
	}
}

// Prune unlinks instructions not marked Critical.
func Prune(ctx context.Context, code *ir.Code) (removed int) {
	tr := tlog.SpanFromContext(ctx)

	for id := code.Head(); id != ir.Nil; {
		next := code.Next(id)

		if x := code.At(id); !x.Critical {
			tr.V("opt_prune").Printw("remove", "id", id, "instr", x)

			code.Remove(id)
			removed++
		}

		id = next
	}

	return removed
}

func newNeed(size int) *need {
	return &need{
		r2i:  make(map[ir.Reg]int, size),
		regs: set.MakeBits(0),
		vars: set.MakeBits(ir.FirstVar),
	}
}

func (n *need) add(a ir.Operand) {
	switch a.Kind {
	case ir.KindReg:
		r := a.Reg()

		i, ok := n.r2i[r]
		if !ok {
			i = len(n.i2r)
			n.r2i[r] = i
			n.i2r = append(n.i2r, r)
		}

		n.regs.Set(i)
	case ir.KindVar:
		n.vars.Set(a.Var())
	}
}

func (n *need) has(a ir.Operand) bool {
	switch a.Kind {
	case ir.KindReg:
		i, ok := n.r2i[a.Reg()]

		return ok && n.regs.IsSet(i)
	case ir.KindVar:
		return n.vars.IsSet(a.Var())
	default:
		return false
	}
}

func (n *need) hasAny(as []ir.Operand) bool {
	for _, a := range as {
		if n.has(a) {
			return true
		}
	}

	return false
}

func (n *need) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)

	b = e.AppendString(b, "regs")
	b = e.AppendTag(b, tlwire.Array, -1)

	n.regs.Range(func(i int) bool {
		b = e.AppendInt(b, int(n.i2r[i]))
		return true
	})

	b = e.AppendBreak(b)

	b = e.AppendKeyValue(b, "vars", n.vars)

	return b
}
